package main

import (
	"fmt"

	"github.com/trustline-app/trustline/config"
)

// formatAmount renders a minor-unit amount as dollars, e.g. 1234 as
// "$12.34" and -50 as "-$0.50".
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s$%d.%02d", sign, minor/config.MinorUnits, minor%config.MinorUnits)
}
