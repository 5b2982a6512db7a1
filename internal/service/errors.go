package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. The handler layer maps
// these onto HTTP status codes; callers match with errors.Is.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrAccountDeleted       = errors.New("account no longer exists")
	ErrAccountDeactivated   = errors.New("account is deactivated")
	ErrForbidden            = errors.New("permission denied")
	ErrSelfEdit             = errors.New("cannot modify own staff record")
	ErrNotFound             = errors.New("resource not found")
	ErrValidation           = errors.New("invalid request")
	ErrConflict             = errors.New("resource conflict")
	ErrNoChallenge          = errors.New("no verification code pending")
	ErrOtpExpired           = errors.New("verification code expired")
	ErrOtpAttemptsExhausted = errors.New("verification attempts exhausted")
	ErrUpstream             = errors.New("upstream dependency failed")
)

// OtpInvalidError reports a wrong code along with how many attempts remain
// before the challenge is destroyed.
type OtpInvalidError struct {
	Remaining int
}

func (e *OtpInvalidError) Error() string {
	return fmt.Sprintf("incorrect verification code, %d attempts remaining", e.Remaining)
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
