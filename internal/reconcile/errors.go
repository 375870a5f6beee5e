package reconcile

import "fmt"

// The error taxonomy mirrors how failures surface to the user:
//
//   - ValidationError: malformed or out-of-range input, detected before
//     any network call.
//   - ConflictError: an outstanding pending transaction already blocks
//     the operation, detected before submission.
//   - LedgerError: a remote call failed; the raw cause is wrapped and
//     never shown to the user directly.
//
// A failed nickname lookup is not an error at all: it is absorbed into a
// deterministic fallback value.

// ValidationError reports rejected user input in domain terms.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ConflictError reports an operation blocked by an outstanding pending
// transaction.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// LedgerError wraps a failed remote ledger call.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
