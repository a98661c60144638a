package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	otplib "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSkew       = 2
	totpSecretSize = 20
	qrCodeSize     = 200
)

// TOTPEnrollment is what a user needs to add the account to an authenticator app.
type TOTPEnrollment struct {
	Secret          string `json:"secret"`
	QRCode          string `json:"qrCode"`
	ProvisioningURI string `json:"otpauthUrl"`
}

func validateTOTP(secret, code string, at time.Time) bool {
	if secret == "" || !sixDigits.MatchString(code) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otplib.DigitsSix,
		Algorithm: otplib.AlgorithmSHA1,
	})
	return err == nil && ok
}

// StartEnrollment generates a pending secret. Any earlier pending secret is
// replaced; an active secret is untouched until confirmation.
func (s *DefaultAuthService) StartEnrollment(ctx context.Context, userID string) (*TOTPEnrollment, error) {
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

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.TOTPIssuer,
		AccountName: u.Email,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otplib.DigitsSix,
		Algorithm:   otplib.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	if err := s.Users.SetPendingTOTP(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}
	return &TOTPEnrollment{
		Secret:          key.Secret(),
		QRCode:          "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		ProvisioningURI: key.URL(),
	}, nil
}

// ConfirmEnrollment promotes the pending secret if code is valid for it. A
// wrong code leaves the pending secret in place for another attempt.
func (s *DefaultAuthService) ConfirmEnrollment(ctx context.Context, userID, code string) (bool, error) {
	if userID == s.adminID() {
		return false, ErrAdminUnsupported
	}
	u, err := s.Users.GetAuthByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, ErrUserNotFound
	}
	if u.MFATempSecret == "" {
		return false, ErrNoPendingEnrollment
	}
	if !validateTOTP(u.MFATempSecret, code, s.now()) {
		return false, nil
	}
	return s.Users.PromotePendingTOTP(ctx, userID, u.MFATempSecret)
}

// DisableMFA re-checks the password, then clears both TOTP slots and the
// backup codes and revokes outstanding refresh tokens.
func (s *DefaultAuthService) DisableMFA(ctx context.Context, userID, password string) error {
	if userID == s.adminID() {
		return ErrAdminUnsupported
	}
	u, err := s.Users.GetAuthByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return s.Users.DisableMFA(ctx, userID, s.now())
}
