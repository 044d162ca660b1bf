package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFullName    = errors.New("full name must contain at least one word")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserWriteFailed    = errors.New("failed to store user")
	ErrProfileWriteFailed = errors.New("failed to store profile")
)

// ProfileWriteError reports a registration whose user row was committed but
// whose profile document was not. The user is not rolled back.
type ProfileWriteError struct {
	UserID int64
	Err    error
}

func (e *ProfileWriteError) Error() string {
	return fmt.Sprintf("user %d created without profile: %v", e.UserID, e.Err)
}

func (e *ProfileWriteError) Is(target error) bool { return target == ErrProfileWriteFailed }
func (e *ProfileWriteError) Unwrap() error        { return e.Err }
