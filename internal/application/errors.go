package application

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail   = errors.New("invalid email")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserInactive   = errors.New("user inactive")
)

// fault is a business error with a caller-facing message.
// It unwraps to one of the sentinel errors above.
type fault struct {
	kind error
	msg  string
}

func (f *fault) Error() string { return f.msg }
func (f *fault) Unwrap() error { return f.kind }

func newFault(kind error, format string, args ...any) error {
	return &fault{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func duplicateEmail(email string) error {
	return newFault(ErrDuplicateEmail, "User with email %s already exists", email)
}

func invalidEmail(email string) error {
	return newFault(ErrInvalidEmail, "Invalid email format: %s", email)
}

func userNotFound(id string) error {
	return newFault(ErrUserNotFound, "User not found with id: %s", id)
}

func userInactive() error {
	return newFault(ErrUserInactive, "Cannot update inactive user")
}
