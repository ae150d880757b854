// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package boost

// ErrorKind is a constant error. Packages declare their own with
// const ErrSomething = boost.ErrorKind("something").
type ErrorKind string

func (e ErrorKind) Error() string {
	return string(e)
}

// Kinds of the custom errors the protocol contracts revert with. Decoded
// reverts match these with errors.Is.
const (
	ErrInsufficientFunds = ErrorKind("insufficient funds")
	ErrUnauthorized      = ErrorKind("unauthorized")
	ErrReentrancy        = ErrorKind("reentrancy")
	ErrInvalidInstance   = ErrorKind("invalid instance")
	ErrClaimFailed       = ErrorKind("claim failed")
	ErrReplayed          = ErrorKind("replayed")
	ErrNotClaimable      = ErrorKind("not claimable")
	ErrLengthMismatch    = ErrorKind("length mismatch")
	ErrNotRegistered     = ErrorKind("not registered")
	ErrAlreadyRegistered = ErrorKind("already registered")

	// ErrReverted is a revert with no recognized custom error.
	ErrReverted = ErrorKind("execution reverted")
)

// Error is a kind of error with context, printed as "kind: detail".
type Error struct {
	kind   error
	detail string
}

// NewError adds the detail to err. The result still matches err with
// errors.Is.
func NewError(err error, detail string) Error {
	return Error{kind: err, detail: detail}
}

func (e Error) Error() string {
	if e.detail == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.detail
}

func (e Error) Unwrap() error {
	return e.kind
}

// Detail is the context without the kind.
func (e Error) Detail() string {
	return e.detail
}
