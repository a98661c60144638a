package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "bhutantours/database/repository/user"
	"bhutantours/models"
	"bhutantours/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is a freshly issued token pair and the principal it belongs to.
type Session struct {
	AccessToken  string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
	User         models.UserView `json:"user"`
}

// LoginResult is either a challenge for a second factor or a session.
type LoginResult struct {
	RequiresMFA bool
	Method      string
	Session     *Session
}

// MethodOTP is the challenge method when a login code was emailed.
const MethodOTP = "otp"

func (s *DefaultAuthService) issueSession(p Principal) (*Session, error) {
	access, err := s.Tokens.IssueAccessToken(p.ID(), p.Email(), p.Role())
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefreshToken(p.ID())
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: p.View()}, nil
}

func challenge() *LoginResult {
	return &LoginResult{RequiresMFA: true, Method: MethodOTP}
}

// Login checks the password and then the second factor. Without a code it
// emails a fresh login code and returns a challenge. With a code it accepts,
// in order, the emailed code, a TOTP code when MFA is enabled, or an unused
// backup code when MFA is enabled.
func (s *DefaultAuthService) Login(ctx context.Context, email, password, code string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if s.Admin.Matches(email) {
		return s.loginAdmin(ctx, password, code)
	}

	u, err := s.Users.GetAuthByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		burnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	p := RegularUser{Record: u}

	if code == "" {
		if err := s.OTP.IssueAndSend(ctx, p); err != nil {
			return nil, err
		}
		return challenge(), nil
	}

	ok, err := s.verifySecondFactor(ctx, u, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidMFACode
	}
	sess, err := s.issueSession(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: sess}, nil
}

func (s *DefaultAuthService) verifySecondFactor(ctx context.Context, u *models.User, code string) (bool, error) {
	ok, err := s.OTP.Verify(ctx, RegularUser{Record: u}, code)
	switch {
	case errors.Is(err, ErrExpired):
	case err != nil:
		return false, err
	case ok:
		return true, nil
	}
	if !u.MFAEnabled {
		return false, nil
	}
	if validateTOTP(u.MFASecret, code, s.now()) {
		return true, nil
	}
	return s.consumeBackupCode(ctx, u, code)
}

func (s *DefaultAuthService) loginAdmin(ctx context.Context, password, code string) (*LoginResult, error) {
	if !VerifyPassword(s.Admin.passwordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if code == "" {
		if err := s.OTP.IssueAndSend(ctx, s.Admin); err != nil {
			return nil, err
		}
		return challenge(), nil
	}
	ok, err := s.OTP.Verify(ctx, s.Admin, code)
	if err != nil && !errors.Is(err, ErrExpired) {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidMFACode
	}
	utils.GetLogger().Info("Admin signed in")
	sess, err := s.issueSession(s.Admin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: sess}, nil
}

// Register creates a user account and signs it in.
func (s *DefaultAuthService) Register(ctx context.Context, data models.UserRegistrationData) (*Session, error) {
	email := normalizeEmail(data.Email)
	if s.Admin.Matches(email) {
		return nil, ErrAdminRegistration
	}
	if err := VerifyPasswordComplexity(data.Password); err != nil {
		return nil, err
	}
	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := HashPassword(data.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         data.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Phone:        data.Phone,
		Country:      data.Country,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, userRepo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	utils.GetLogger().Info("User registered", zap.String("userID", u.ID))
	return s.issueSession(RegularUser{Record: u})
}

// Refresh issues a new access token for a valid refresh token. The role is
// looked up again, and tokens issued before the user's last credential
// change are rejected. The refresh token itself is returned unchanged.
func (s *DefaultAuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	var p Principal
	if s.Admin != nil && claims.UserID == s.Admin.ID() {
		p = s.Admin
	} else {
		u, err := s.Users.GetAuthByID(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, utils.ErrTokenInvalid
		}
		if revokedBefore(claims.IssuedAt, u.TokensValidAfter) {
			return nil, fmt.Errorf("%w: issued before last credential change", utils.ErrTokenInvalid)
		}
		p = RegularUser{Record: u}
	}

	access, err := s.Tokens.IssueAccessToken(p.ID(), p.Email(), p.Role())
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refreshToken, User: p.View()}, nil
}

// revokedBefore compares at second precision, matching the iat claim.
func revokedBefore(issuedAt int64, validAfter *time.Time) bool {
	return validAfter != nil && issuedAt < validAfter.Unix()
}

// CurrentUser returns the profile behind an access token.
func (s *DefaultAuthService) CurrentUser(ctx context.Context, userID string) (*models.UserView, error) {
	if s.Admin != nil && userID == s.Admin.ID() {
		v := s.Admin.View()
		return &v, nil
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	v := u.View()
	return &v, nil
}

// ChangePassword re-checks the current password before setting a new one.
func (s *DefaultAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
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
	if !VerifyPassword(u.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	return s.SetPassword(ctx, userID, newPassword)
}

// ListUsers returns every stored account's public profile.
func (s *DefaultAuthService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	users, err := s.Users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}
