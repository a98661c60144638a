package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bhutantours/models"
	"bhutantours/services/auth"
	"bhutantours/services/booking"
	"bhutantours/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(svc *stubAuth) *gin.Engine {
	h := NewAuthHandler(svc, testTransport(), nil)
	r := gin.New()
	r.POST("/api/auth/register", h.RegisterHandler)
	r.POST("/api/auth/login", h.LoginHandler)
	r.POST("/api/auth/admin/login", h.AdminLoginHandler)
	r.POST("/api/auth/refresh-token", h.RefreshTokenHandler)
	r.POST("/api/auth/logout", h.LogoutHandler)
	r.POST("/api/auth/forgot-password", h.ForgotPasswordHandler)
	r.POST("/api/auth/reset-password", h.ResetPasswordHandler)
	authed := r.Group("/api/auth", withIdentity("u1", models.RoleUser))
	authed.POST("/mfa/verify", h.VerifyMFAHandler)
	authed.POST("/mfa/setup", h.SetupMFAHandler)
	authed.POST("/mfa/backup-codes", h.BackupCodesHandler)
	return r
}

func doJSON(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSelectTransport(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    TransportStrategy
	}{
		{"no origin", nil, TransportBearer},
		{"browser origin", map[string]string{"Origin": "https://tours.example"}, TransportDual},
		{"explicit cookie", map[string]string{SessionTransportHeader: "cookie"}, TransportDual},
		{"explicit bearer wins over origin", map[string]string{"Origin": "https://tours.example", SessionTransportHeader: "bearer"}, TransportBearer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, SelectTransport(req))
		})
	}
}

func TestLoginWithoutCodeReturnsChallenge(t *testing.T) {
	svc := &stubAuth{login: func(_, _, code string) (*auth.LoginResult, error) {
		assert.Empty(t, code)
		return &auth.LoginResult{RequiresMFA: true, Method: auth.MethodOTP}, nil
	}}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/login",
		gin.H{"email": "tashi@example.com", "password": "pw"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["requiresMFA"])
	assert.Equal(t, "otp", body["method"])
	assert.NotContains(t, body, "token")
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginFromBrowserSetsScopedCookies(t *testing.T) {
	svc := &stubAuth{login: func(_, _, _ string) (*auth.LoginResult, error) {
		return &auth.LoginResult{Session: testSession()}, nil
	}}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/login",
		gin.H{"email": "tashi@example.com", "password": "pw", "mfaCode": "123456"},
		map[string]string{"Origin": "https://tours.example"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "access-token", body["token"])

	access := cookieByName(w, "accessToken")
	require.NotNil(t, access)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)

	refresh := cookieByName(w, "refreshToken")
	require.NotNil(t, refresh)
	assert.Equal(t, "/api/auth/refresh-token", refresh.Path)
	assert.True(t, refresh.HttpOnly)
}

func TestLoginWithoutOriginUsesBearerOnly(t *testing.T) {
	svc := &stubAuth{login: func(_, _, _ string) (*auth.LoginResult, error) {
		return &auth.LoginResult{Session: testSession()}, nil
	}}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/login",
		gin.H{"email": "tashi@example.com", "password": "pw", "mfaCode": "123456"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, "refresh-token", decode(t, w)["refreshToken"])
}

func TestLoginFailuresAreUniform(t *testing.T) {
	for _, err := range []error{auth.ErrInvalidCredentials, auth.ErrInvalidMFACode} {
		svc := &stubAuth{login: func(_, _, _ string) (*auth.LoginResult, error) { return nil, err }}
		w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/login",
			gin.H{"email": "tashi@example.com", "password": "pw", "mfaCode": "000000"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestLoginDeliveryFailureIsUnavailable(t *testing.T) {
	svc := &stubAuth{login: func(_, _, _ string) (*auth.LoginResult, error) {
		return nil, auth.ErrDeliveryFailure
	}}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/login",
		gin.H{"email": "tashi@example.com", "password": "pw"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DELIVERY_FAILED", decode(t, w)["code"])
}

func TestAdminLoginRejectsOtherEmails(t *testing.T) {
	svc := &stubAuth{admin: "admin@bhutantours.test"}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/admin/login",
		gin.H{"email": "tashi@example.com", "password": "pw"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w)["code"])
	assert.Zero(t, svc.loginCalls)
}

func TestRegisterMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{auth.WeakPasswordError{Reason: "too short"}, http.StatusBadRequest, "WEAK_PASSWORD"},
		{auth.ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{auth.ErrAdminRegistration, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("mongo exploded"), http.StatusInternalServerError, "SERVER_ERROR"},
	}
	for _, tc := range cases {
		svc := &stubAuth{register: func(models.UserRegistrationData) (*auth.Session, error) { return nil, tc.err }}
		w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/register",
			gin.H{"name": "Tashi", "email": "tashi@example.com", "password": "pw"}, nil)
		assert.Equal(t, tc.status, w.Code)
		body := decode(t, w)
		assert.Equal(t, tc.code, body["code"])
		assert.NotContains(t, w.Body.String(), "mongo exploded")
	}
}

func TestRegisterReturnsCreatedSession(t *testing.T) {
	svc := &stubAuth{register: func(models.UserRegistrationData) (*auth.Session, error) { return testSession(), nil }}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/register",
		gin.H{"name": "Tashi", "email": "tashi@example.com", "password": "pw"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Registration successful", decode(t, w)["message"])
}

func TestRefreshReadsCookieThenBody(t *testing.T) {
	var seen string
	svc := &stubAuth{refresh: func(token string) (*auth.Session, error) {
		seen = token
		return testSession(), nil
	}}
	r := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-cookie", seen)

	w = doJSON(r, http.MethodPost, "/api/auth/refresh-token", gin.H{"refreshToken": "from-body"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-body", seen)
}

func TestRefreshMissingAndRevoked(t *testing.T) {
	svc := &stubAuth{refresh: func(string) (*auth.Session, error) { return nil, auth.ErrInvalidCredentials }}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/auth/refresh-token", gin.H{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Refresh token missing", decode(t, w)["message"])

	w = doJSON(r, http.MethodPost, "/api/auth/refresh-token", gin.H{"refreshToken": "stale"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutExpiresBothCookies(t *testing.T) {
	w := doJSON(newAuthRouter(&stubAuth{}), http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	access := cookieByName(w, "accessToken")
	refresh := cookieByName(w, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, -1, access.MaxAge)
	assert.Equal(t, "/api/auth/refresh-token", refresh.Path)
}

func TestForgotPasswordIsGeneric(t *testing.T) {
	calls := 0
	svc := &stubAuth{requestReset: func(email string) (*auth.ResetRequest, error) {
		calls++
		switch calls {
		case 1:
			return &auth.ResetRequest{}, nil
		case 2:
			return &auth.ResetRequest{ResetURL: "http://localhost:3000/reset-password?token=abc"}, nil
		default:
			return nil, errors.New("db down")
		}
	}}
	r := newAuthRouter(svc)

	first := doJSON(r, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nobody@example.com"}, nil)
	second := doJSON(r, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "tashi@example.com"}, nil)
	third := doJSON(r, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "tashi@example.com"}, nil)

	for _, w := range []*httptest.ResponseRecorder{first, second, third} {
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, genericResetMessage, decode(t, w)["message"])
	}
	assert.NotContains(t, decode(t, first), "resetUrl")
	assert.Contains(t, decode(t, second), "resetUrl")
	assert.NotContains(t, decode(t, third), "resetUrl")
}

func TestResetPasswordInvalidToken(t *testing.T) {
	svc := &stubAuth{redeemReset: func(string, string) error { return auth.ErrInvalidResetToken }}
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/api/auth/reset-password",
		gin.H{"token": "nope", "newPassword": "Str0ng!Passw0rd#"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RESET_TOKEN", decode(t, w)["code"])
}

func TestMFAEndpoints(t *testing.T) {
	svc := &stubAuth{confirmEnroll: func(_, code string) (bool, error) { return code == "123456", nil }}
	r := newAuthRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/auth/mfa/setup", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "otpauth://totp/x", decode(t, w)["otpauthUrl"])

	w = doJSON(r, http.MethodPost, "/api/auth/mfa/verify", gin.H{"code": "000000"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/mfa/verify", gin.H{"code": "123456"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MFA enabled", decode(t, w)["message"])

	w = doJSON(r, http.MethodPost, "/api/auth/mfa/backup-codes", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MFA_NOT_ENABLED", decode(t, w)["code"])
}

func newBookingRouter(svc *stubBookings, userID, role string) *gin.Engine {
	h := NewBookingHandler(svc)
	r := gin.New()
	g := r.Group("/api/bookings", withIdentity(userID, role))
	g.POST("", h.CreateBookingHandler)
	g.GET("/:id", h.GetBookingHandler)
	g.PATCH("/:id/status", h.UpdateStatusHandler)
	return r
}

func TestCreateBookingPassesActorAndMapsSpots(t *testing.T) {
	var actor booking.Actor
	svc := &stubBookings{create: func(a booking.Actor, req models.CreateBookingRequest) (*models.BookingResponse, error) {
		actor = a
		if req.NumberOfPeople > 2 {
			return nil, &booking.InsufficientSpotsError{Available: 2}
		}
		return &models.BookingResponse{Booking: models.Booking{ID: "b1", NumberOfPeople: req.NumberOfPeople}}, nil
	}}
	r := newBookingRouter(svc, "u1", models.RoleUser)
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	w := doJSON(r, http.MethodPost, "/api/bookings",
		gin.H{"tourPackageId": "p1", "numberOfPeople": 2, "startDate": start}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "u1", actor.UserID)

	w = doJSON(r, http.MethodPost, "/api/bookings",
		gin.H{"tourPackageId": "p1", "numberOfPeople": 5, "startDate": start}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only 2 spots available", decode(t, w)["message"])
}

func TestGetBookingForbiddenAndMissing(t *testing.T) {
	svc := &stubBookings{get: func(_ booking.Actor, id string) (*models.BookingResponse, error) {
		if id == "missing" {
			return nil, booking.ErrBookingNotFound
		}
		return nil, booking.ErrForbidden
	}}
	r := newBookingRouter(svc, "u2", models.RoleUser)

	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodGet, "/api/bookings/b1", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/bookings/missing", nil, nil).Code)
}

func TestUpdateStatusRejectsReopen(t *testing.T) {
	r := newBookingRouter(&stubBookings{}, "admin-0001", models.RoleAdmin)
	w := doJSON(r, http.MethodPatch, "/api/bookings/b1/status", gin.H{"status": "confirmed"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, w)["code"])
}

type recordingMailer struct{ sent []notification.Email }

func (m *recordingMailer) Send(_ context.Context, e notification.Email) (notification.SendResult, error) {
	m.sent = append(m.sent, e)
	return notification.SendResult{Provider: "dev", MessageID: "m1"}, nil
}

func TestDebugSendTestHiddenInProduction(t *testing.T) {
	mailer := &recordingMailer{}
	for _, prod := range []bool{true, false} {
		h := NewDebugHandler(mailer, prod, time.Second)
		r := gin.New()
		r.POST("/api/auth/debug/send-test", h.SendTestEmailHandler)
		w := doJSON(r, http.MethodPost, "/api/auth/debug/send-test", gin.H{"to": "ops@example.com"}, nil)
		if prod {
			assert.Equal(t, http.StatusNotFound, w.Code)
		} else {
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
	assert.Len(t, mailer.sent, 1)
}
