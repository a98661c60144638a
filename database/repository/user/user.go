package userRepo

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// safeProjection hides every secret-bearing field. It is the default for
// all reads that are not explicitly auth reads.
var safeProjection = bson.M{
	"password_hash":       0,
	"mfa_secret":          0,
	"mfa_temp_secret":     0,
	"mfa_backup_codes":    0,
	"mfa_otp_hash":        0,
	"mfa_otp_expires":     0,
	"reset_token":         0,
	"reset_token_expires": 0,
	"tokens_valid_after":  0,
}
