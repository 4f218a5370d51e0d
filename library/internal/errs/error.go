package errs

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation")
	ErrAuth       = errors.New("unauthenticated")
)

var (
	ErrBookNotFound      = kind(ErrNotFound, "Book not found")
	ErrBorrowingNotFound = kind(ErrConflict, "Borrowing not found or already returned")
	ErrUserNotFound      = kind(ErrNotFound, "User not found")

	ErrBookNotAvailable = kind(ErrConflict, "Book is not available")
	ErrAlreadyBorrowed  = kind(ErrConflict, "Book is already borrowed by this user")
	ErrISBNExists       = kind(ErrConflict, "ISBN already exists")
	ErrUserExists       = kind(ErrConflict, "User already exists")

	ErrInvalidStatus      = kind(ErrValidation, "status must be one of [RETURNED LOST]")
	ErrReturnBeforeBorrow = kind(ErrValidation, "returnedAt is before borrowedAt")
	ErrInvalidQuantity    = kind(ErrValidation, "quantity must be at least 1")
	ErrNegativeCopies     = kind(ErrValidation, "addCopies must not be negative")

	ErrInvalidCredentials = kind(ErrAuth, "Invalid Email and Password")
	ErrWrongPassword      = kind(ErrValidation, "Invalid Password and Email")
)

type kindError struct {
	kind error
	msg  string
}

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Message returns the client facing text of a domain error, ignoring any wrap context.
func Message(err error) (string, bool) {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg, true
	}
	return "", false
}
