package auth

import (
	"context"
	"strings"
	"time"

	userRepo "bhutantours/database/repository/user"
	"bhutantours/models"
	"bhutantours/services/notification"
	"bhutantours/utils"
)

// AuthService covers sign-in, sessions, second factors and password recovery.
type AuthService interface {
	// IsAdminEmail reports whether email belongs to the configured admin.
	IsAdminEmail(email string) bool
	Register(ctx context.Context, data models.UserRegistrationData) (*Session, error)
	Login(ctx context.Context, email, password, code string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	CurrentUser(ctx context.Context, userID string) (*models.UserView, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]models.UserView, error)

	StartEnrollment(ctx context.Context, userID string) (*TOTPEnrollment, error)
	ConfirmEnrollment(ctx context.Context, userID, code string) (bool, error)
	DisableMFA(ctx context.Context, userID, password string) error
	GenerateBackupCodes(ctx context.Context, userID string) ([]string, error)

	RequestReset(ctx context.Context, email string) (*ResetRequest, error)
	RedeemReset(ctx context.Context, token, newPassword string) error
}

// DefaultAuthService implements AuthService.
type DefaultAuthService struct {
	Users          userRepo.UserRepository
	Tokens         *utils.TokenIssuer
	OTP            *OTPEngine
	Mailer         notification.Mailer
	Admin          *DistinguishedAdmin
	TOTPIssuer     string
	FrontendURL    string
	ExposeResetURL bool
	SendTimeout    time.Duration
	Now            func() time.Time
}

var _ AuthService = (*DefaultAuthService)(nil)

func (s *DefaultAuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAuthService) sendTimeout() time.Duration {
	if s.SendTimeout > 0 {
		return s.SendTimeout
	}
	return DefaultSendTimeout
}

func (s *DefaultAuthService) adminID() string {
	if s.Admin == nil {
		return ""
	}
	return s.Admin.ID()
}

func (s *DefaultAuthService) IsAdminEmail(email string) bool {
	return s.Admin.Matches(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
