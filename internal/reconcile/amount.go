package reconcile

import (
	"strconv"
	"strings"
)

// SanitizeAmount parses free-form currency text ("5", "5.5", "$12.34")
// into an integer minor-unit amount. The pipeline:
//
//  1. Strip every rune that is not a digit or a decimal point.
//  2. Pad the fractional part to exactly two digits ("5" -> "5.00",
//     "5.5" -> "5.50"); fractional parts longer than two digits are
//     truncated, never rounded.
//  3. Drop the decimal point.
//
// More than one decimal point is rejected. Input with no digits at all
// sanitizes to 0, which the caller's amount-must-be-positive check
// rejects. Range validation (> 0, < config.MaxAmount) is the caller's
// responsibility.
func SanitizeAmount(raw string) (int64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	whole, frac, _ := strings.Cut(b.String(), ".")
	if strings.Contains(frac, ".") {
		return 0, &ValidationError{Msg: "Amount must have at most one decimal point"}
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return 0, nil
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &ValidationError{Msg: "Amount is too large"}
	}
	return amount, nil
}
