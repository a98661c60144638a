package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"bhutantours/models"

	"golang.org/x/crypto/bcrypt"
)

const (
	backupCodeCount = 10
	backupCodeBytes = 4
)

// GenerateBackupCodes replaces the user's backup codes and returns the new
// plaintext codes. Only hashes are stored.
func (s *DefaultAuthService) GenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	if userID == s.adminID() {
		return nil, ErrAdminUnsupported
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.MFAEnabled {
		return nil, ErrMFANotEnabled
	}

	codes := make([]string, backupCodeCount)
	hashes := make([]string, backupCodeCount)
	for i := range codes {
		raw := make([]byte, backupCodeBytes)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = hex.EncodeToString(raw)
		h, err := bcrypt.GenerateFromPassword([]byte(codes[i]), OTPCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash backup code: %w", err)
		}
		hashes[i] = string(h)
	}
	if err := s.Users.SetBackupCodes(ctx, userID, hashes); err != nil {
		return nil, err
	}
	return codes, nil
}

// consumeBackupCode removes the matching backup code, if any. A code pulled
// concurrently by another request does not count.
func (s *DefaultAuthService) consumeBackupCode(ctx context.Context, u *models.User, code string) (bool, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) != 2*backupCodeBytes {
		return false, nil
	}
	for _, h := range u.MFABackupCodes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(code)) == nil {
			return s.Users.RemoveBackupCode(ctx, u.ID, h)
		}
	}
	return false, nil
}
