package auth

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt cost for account passwords.
	PasswordCost = 12
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 12
)

var (
	hasUpper  = regexp.MustCompile(`[A-Z]`)
	hasLower  = regexp.MustCompile(`[a-z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
	hasSymbol = regexp.MustCompile(`[\W_]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	switch {
	case len(pw) < MinPasswordLength:
		return WeakPasswordError{Reason: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength)}
	case !hasUpper.MatchString(pw):
		return WeakPasswordError{Reason: "password must include at least one uppercase letter"}
	case !hasLower.MatchString(pw):
		return WeakPasswordError{Reason: "password must include at least one lowercase letter"}
	case !hasNumber.MatchString(pw):
		return WeakPasswordError{Reason: "password must include at least one number"}
	case !hasSymbol.MatchString(pw):
		return WeakPasswordError{Reason: "password must include at least one symbol"}
	}
	return nil
}

// HashPassword hashes a password at PasswordCost.
func HashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// VerifyPassword compares a candidate against a stored hash.
func VerifyPassword(hash, candidate string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt work as a real comparison so an
// unknown email is not distinguishable by timing.
func burnPasswordCheck(candidate string) {
	dummyHashOnce.Do(func() {
		h, _ := bcrypt.GenerateFromPassword([]byte("timing-equaliser"), PasswordCost)
		dummyHash = string(h)
	})
	_ = VerifyPassword(dummyHash, candidate)
}

// SetPassword validates, hashes and stores a new password, revoking refresh
// tokens issued before now.
func (s *DefaultAuthService) SetPassword(ctx context.Context, userID, newPassword string) error {
	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash, s.now()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
