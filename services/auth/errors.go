package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidMFACode covers wrong, expired, reused and missing second factors.
	ErrInvalidMFACode = errors.New("invalid MFA code")
	// ErrExpired is internal: a stored OTP was found past its expiry.
	ErrExpired = errors.New("one-time code expired")
	// ErrDeliveryFailure means a code was issued but could not be emailed; it has been withdrawn.
	ErrDeliveryFailure = errors.New("failed to deliver one-time code")

	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAdminRegistration   = errors.New("admin account cannot be registered")
	ErrAdminUnsupported    = errors.New("operation not available for the admin account")
	ErrNoPendingEnrollment = errors.New("MFA setup not initiated")
	ErrMFANotEnabled       = errors.New("MFA is not enabled")
	ErrInvalidResetToken   = errors.New("invalid or expired token")
)

// WeakPasswordError explains why a new password was rejected.
type WeakPasswordError struct {
	Reason string
}

func (e WeakPasswordError) Error() string {
	return e.Reason
}
