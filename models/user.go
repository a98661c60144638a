// models/user.go
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered tourist account. Secret-bearing fields are
// excluded from JSON and only loaded when a repository projects them.
type User struct {
	ID               string     `bson:"id" json:"id"`                               // UUID
	Name             string     `bson:"name" json:"name"`                           // Display name
	Email            string     `bson:"email" json:"email"`                         // Unique, lower-cased
	PasswordHash     string     `bson:"password_hash,omitempty" json:"-"`           // bcrypt(cost 12)
	Role             string     `bson:"role" json:"role"`                           // "user" | "admin"
	Phone            string     `bson:"phone,omitempty" json:"phone,omitempty"`     // Optional contact number
	Country          string     `bson:"country,omitempty" json:"country,omitempty"` // Optional country of residence
	MFAEnabled       bool       `bson:"mfa_enabled" json:"mfaEnabled"`              // True once an authenticator app is confirmed
	MFASecret        string     `bson:"mfa_secret,omitempty" json:"-"`              // Active TOTP secret
	MFATempSecret    string     `bson:"mfa_temp_secret,omitempty" json:"-"`         // Pending TOTP secret awaiting confirmation
	MFABackupCodes   []string   `bson:"mfa_backup_codes,omitempty" json:"-"`        // bcrypt hashes of unused backup codes
	MFAOTPHash       string     `bson:"mfa_otp_hash,omitempty" json:"-"`            // bcrypt hash of the live login code
	MFAOTPExpires    *time.Time `bson:"mfa_otp_expires,omitempty" json:"-"`         // Expiry of the live login code
	ResetToken       string     `bson:"reset_token,omitempty" json:"-"`             // sha256 hex of the reset token
	ResetTokenExpire *time.Time `bson:"reset_token_expires,omitempty" json:"-"`     // Expiry of the reset token
	TokensValidAfter *time.Time `bson:"tokens_valid_after,omitempty" json:"-"`      // Refresh tokens issued earlier are rejected
	CreatedAt        time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updatedAt"`
}

// UserView is the public shape of an authenticated principal.
type UserView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Phone      string `json:"phone,omitempty"`
	Country    string `json:"country,omitempty"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

// View strips everything but the public profile.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Phone:      u.Phone,
		Country:    u.Country,
		MFAEnabled: u.MFAEnabled,
	}
}

// UserRegistrationData is the payload accepted by the register endpoint.
type UserRegistrationData struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
}
