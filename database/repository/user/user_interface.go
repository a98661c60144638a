package userRepo

import (
	"context"
	"time"

	"bhutantours/models"
)

// UserRepository defines methods for user data access.
// Lookups return (nil, nil) when no document matches.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by ID without secret fields.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by email without secret fields.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetAuthByEmail retrieves a user by email including password hash, MFA
	// secrets, login code and backup codes.
	GetAuthByEmail(ctx context.Context, email string) (*models.User, error)
	// GetAuthByID is GetAuthByEmail keyed by ID.
	GetAuthByID(ctx context.Context, id string) (*models.User, error)
	// GetAll retrieves all users without secret fields.
	GetAll(ctx context.Context) ([]models.User, error)

	// UpdatePassword stores a new hash and revokes refresh tokens issued before validAfter.
	UpdatePassword(ctx context.Context, id, passwordHash string, validAfter time.Time) error

	// SetLoginOTP overwrites the live login code.
	SetLoginOTP(ctx context.Context, id, hash string, expires time.Time) error
	// DeleteLoginOTPIfMatch removes the login code only if it still has the
	// given hash. It reports whether this call removed it.
	DeleteLoginOTPIfMatch(ctx context.Context, id, hash string) (bool, error)

	// SetResetToken overwrites the password reset token.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	// DeleteResetTokenIfMatch removes the reset token only if it still has the given hash.
	DeleteResetTokenIfMatch(ctx context.Context, id, tokenHash string) (bool, error)
	// RedeemResetToken atomically matches an unexpired token, stores the new
	// password hash and removes the token. It returns nil when nothing matched.
	RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error)

	// SetPendingTOTP stores an enrollment secret awaiting confirmation.
	SetPendingTOTP(ctx context.Context, id, secret string) error
	// PromotePendingTOTP activates the pending secret if it is still the given one.
	PromotePendingTOTP(ctx context.Context, id, secret string) (bool, error)
	// DisableMFA clears both TOTP slots and all backup codes.
	DisableMFA(ctx context.Context, id string, validAfter time.Time) error

	// SetBackupCodes replaces the stored backup code hashes.
	SetBackupCodes(ctx context.Context, id string, hashes []string) error
	// RemoveBackupCode pulls one hash and reports whether it was present.
	RemoveBackupCode(ctx context.Context, id, hash string) (bool, error)
}
