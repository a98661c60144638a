package handlers

import (
	"context"
	"net/http"
	"time"

	"bhutantours/models"
	"bhutantours/services/auth"
	"bhutantours/services/booking"

	"github.com/gin-gonic/gin"
)

// stubAuth implements auth.AuthService with overridable behaviour.
type stubAuth struct {
	admin string

	login         func(email, password, code string) (*auth.LoginResult, error)
	register      func(data models.UserRegistrationData) (*auth.Session, error)
	refresh       func(token string) (*auth.Session, error)
	requestReset  func(email string) (*auth.ResetRequest, error)
	redeemReset   func(token, pw string) error
	confirmEnroll func(userID, code string) (bool, error)

	loginCalls int
}

var _ auth.AuthService = (*stubAuth)(nil)

func (s *stubAuth) IsAdminEmail(email string) bool { return s.admin != "" && email == s.admin }

func (s *stubAuth) Register(_ context.Context, data models.UserRegistrationData) (*auth.Session, error) {
	return s.register(data)
}

func (s *stubAuth) Login(_ context.Context, email, password, code string) (*auth.LoginResult, error) {
	s.loginCalls++
	return s.login(email, password, code)
}

func (s *stubAuth) Refresh(_ context.Context, token string) (*auth.Session, error) {
	return s.refresh(token)
}

func (s *stubAuth) CurrentUser(_ context.Context, userID string) (*models.UserView, error) {
	return &models.UserView{ID: userID, Role: models.RoleUser}, nil
}

func (s *stubAuth) ChangePassword(context.Context, string, string, string) error { return nil }

func (s *stubAuth) ListUsers(context.Context) ([]models.UserView, error) {
	return []models.UserView{{ID: "u1"}, {ID: "u2"}}, nil
}

func (s *stubAuth) StartEnrollment(context.Context, string) (*auth.TOTPEnrollment, error) {
	return &auth.TOTPEnrollment{Secret: "SECRET", QRCode: "data:image/png;base64,AA", ProvisioningURI: "otpauth://totp/x"}, nil
}

func (s *stubAuth) ConfirmEnrollment(_ context.Context, userID, code string) (bool, error) {
	return s.confirmEnroll(userID, code)
}

func (s *stubAuth) DisableMFA(context.Context, string, string) error { return nil }

func (s *stubAuth) GenerateBackupCodes(context.Context, string) ([]string, error) {
	return nil, auth.ErrMFANotEnabled
}

func (s *stubAuth) RequestReset(_ context.Context, email string) (*auth.ResetRequest, error) {
	return s.requestReset(email)
}

func (s *stubAuth) RedeemReset(_ context.Context, token, pw string) error {
	return s.redeemReset(token, pw)
}

// stubBookings implements booking.BookingService.
type stubBookings struct {
	create func(actor booking.Actor, req models.CreateBookingRequest) (*models.BookingResponse, error)
	get    func(actor booking.Actor, id string) (*models.BookingResponse, error)
}

var _ booking.BookingService = (*stubBookings)(nil)

func (s *stubBookings) Create(_ context.Context, actor booking.Actor, req models.CreateBookingRequest) (*models.BookingResponse, error) {
	return s.create(actor, req)
}

func (s *stubBookings) ListMine(context.Context, booking.Actor) ([]models.BookingResponse, error) {
	return []models.BookingResponse{}, nil
}

func (s *stubBookings) ListAll(context.Context) ([]models.BookingResponse, error) {
	return []models.BookingResponse{}, nil
}

func (s *stubBookings) Get(_ context.Context, actor booking.Actor, id string) (*models.BookingResponse, error) {
	return s.get(actor, id)
}

func (s *stubBookings) UpdateStatus(context.Context, string, string) (*models.BookingResponse, error) {
	return nil, booking.ErrInvalidTransition
}

func (s *stubBookings) Cancel(context.Context, booking.Actor, string) error { return nil }

func testSession() *auth.Session {
	return &auth.Session{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         models.UserView{ID: "u1", Email: "tashi@example.com", Role: models.RoleUser},
	}
}

func testTransport() *SessionTransport {
	return &SessionTransport{Secure: true, SameSite: http.SameSiteNoneMode, AccessTTL: time.Hour, RefreshTTL: 7 * 24 * time.Hour}
}

// withIdentity stands in for the auth middleware.
func withIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}
