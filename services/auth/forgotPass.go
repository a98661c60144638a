package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bhutantours/utils"

	"go.uber.org/zap"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

// ResetRequest is the outcome of RequestReset. ResetURL is only populated
// outside production so the flow can be exercised without a mailbox.
type ResetRequest struct {
	ResetURL string
}

func (s *DefaultAuthService) resetURL(token string) string {
	base := strings.TrimRight(strings.Split(s.FrontendURL, ",")[0], "/")
	return base + "/reset-password?token=" + url.QueryEscape(token)
}

// RequestReset issues and emails a reset token if email belongs to a stored
// user. The caller responds identically either way.
func (s *DefaultAuthService) RequestReset(ctx context.Context, email string) (*ResetRequest, error) {
	logger := utils.GetLogger()
	email = normalizeEmail(email)

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &ResetRequest{}, nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	tokenHash := utils.HashToken(token)
	if err := s.Users.SetResetToken(ctx, u.ID, tokenHash, s.now().Add(ResetTokenTTL)); err != nil {
		return nil, err
	}

	link := s.resetURL(token)
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	defer cancel()
	if _, err := s.Mailer.Send(sendCtx, resetEmail(u.Email, link)); err != nil {
		logger.Warn("Failed to send password reset email", zap.String("userID", u.ID), zap.Error(err))
		rbCtx, rbCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer rbCancel()
		if _, err := s.Users.DeleteResetTokenIfMatch(rbCtx, u.ID, tokenHash); err != nil {
			logger.Error("Failed to withdraw undelivered reset token", zap.String("userID", u.ID), zap.Error(err))
		}
		return &ResetRequest{}, nil
	}

	res := &ResetRequest{}
	if s.ExposeResetURL {
		res.ResetURL = link
	}
	return res, nil
}

// RedeemReset sets a new password using a reset token. The token is consumed
// atomically; a second redemption fails with ErrInvalidResetToken.
func (s *DefaultAuthService) RedeemReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	u, err := s.Users.RedeemResetToken(ctx, utils.HashToken(token), hash, s.now())
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidResetToken
	}
	return nil
}
