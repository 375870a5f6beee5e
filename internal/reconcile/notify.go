package reconcile

import "github.com/trustline-app/trustline/internal/log"

// Notifier receives user-facing outcome messages. Every failure path in
// this package produces exactly one DisplayError call, phrased in domain
// terms; raw transport errors never reach it. Implementations are
// fire-and-forget: no return value is consumed.
type Notifier interface {
	DisplayError(message string)
	DisplaySuccess(message string)
}

// LogNotifier routes notifications to the structured log. Used by the CLI
// and as a default when no presentation layer is attached.
type LogNotifier struct{}

// DisplayError logs the message at error level.
func (LogNotifier) DisplayError(message string) {
	log.Reconcile.Error().Msg(message)
}

// DisplaySuccess logs the message at info level.
func (LogNotifier) DisplaySuccess(message string) {
	log.Reconcile.Info().Msg(message)
}
