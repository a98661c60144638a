package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	userRepo "bhutantours/database/repository/user"
	"bhutantours/models"
	"bhutantours/services/notification"
	"bhutantours/utils"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

var _ userRepo.UserRepository = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func clone(u *models.User) *models.User {
	c := *u
	c.MFABackupCodes = append([]string(nil), u.MFABackupCodes...)
	return &c
}

func public(u *models.User) *models.User {
	c := clone(u)
	c.PasswordHash, c.MFASecret, c.MFATempSecret, c.MFAOTPHash = "", "", "", ""
	c.MFABackupCodes, c.MFAOTPExpires, c.ResetToken, c.ResetTokenExpire = nil, nil, "", nil
	c.TokensValidAfter = nil
	return c
}

func (m *memUsers) find(email string) *models.User {
	for _, u := range m.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(u.Email) != nil {
		return userRepo.ErrDuplicateEmail
	}
	m.byID[u.ID] = clone(u)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return public(u), nil
	}
	return nil, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.find(email); u != nil {
		return public(u), nil
	}
	return nil, nil
}

func (m *memUsers) GetAuthByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.find(email); u != nil {
		return clone(u), nil
	}
	return nil, nil
}

func (m *memUsers) GetAuthByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (m *memUsers) GetAll(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.byID {
		out = append(out, *public(u))
	}
	return out, nil
}

func (m *memUsers) with(id string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return errors.New("no such user")
	}
	fn(u)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string, validAfter time.Time) error {
	return m.with(id, func(u *models.User) {
		u.PasswordHash = hash
		u.TokensValidAfter = &validAfter
	})
}

func (m *memUsers) SetLoginOTP(_ context.Context, id, hash string, expires time.Time) error {
	return m.with(id, func(u *models.User) {
		u.MFAOTPHash = hash
		u.MFAOTPExpires = &expires
	})
}

func (m *memUsers) DeleteLoginOTPIfMatch(_ context.Context, id, hash string) (bool, error) {
	var removed bool
	err := m.with(id, func(u *models.User) {
		if u.MFAOTPHash == hash {
			u.MFAOTPHash, u.MFAOTPExpires = "", nil
			removed = true
		}
	})
	return removed, err
}

func (m *memUsers) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	return m.with(id, func(u *models.User) {
		u.ResetToken = tokenHash
		u.ResetTokenExpire = &expires
	})
}

func (m *memUsers) DeleteResetTokenIfMatch(_ context.Context, id, tokenHash string) (bool, error) {
	var removed bool
	err := m.with(id, func(u *models.User) {
		if u.ResetToken == tokenHash {
			u.ResetToken, u.ResetTokenExpire = "", nil
			removed = true
		}
	})
	return removed, err
}

func (m *memUsers) RedeemResetToken(_ context.Context, tokenHash, hash string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ResetToken == tokenHash && u.ResetTokenExpire != nil && u.ResetTokenExpire.After(now) {
			u.PasswordHash = hash
			u.ResetToken, u.ResetTokenExpire = "", nil
			u.TokensValidAfter = &now
			return public(u), nil
		}
	}
	return nil, nil
}

func (m *memUsers) SetPendingTOTP(_ context.Context, id, secret string) error {
	return m.with(id, func(u *models.User) { u.MFATempSecret = secret })
}

func (m *memUsers) PromotePendingTOTP(_ context.Context, id, secret string) (bool, error) {
	var ok bool
	err := m.with(id, func(u *models.User) {
		if u.MFATempSecret == secret {
			u.MFASecret, u.MFATempSecret, u.MFAEnabled = secret, "", true
			ok = true
		}
	})
	return ok, err
}

func (m *memUsers) DisableMFA(_ context.Context, id string, validAfter time.Time) error {
	return m.with(id, func(u *models.User) {
		u.MFAEnabled = false
		u.MFASecret, u.MFATempSecret, u.MFABackupCodes = "", "", nil
		u.TokensValidAfter = &validAfter
	})
}

func (m *memUsers) SetBackupCodes(_ context.Context, id string, hashes []string) error {
	return m.with(id, func(u *models.User) { u.MFABackupCodes = append([]string(nil), hashes...) })
}

func (m *memUsers) RemoveBackupCode(_ context.Context, id, hash string) (bool, error) {
	var removed bool
	err := m.with(id, func(u *models.User) {
		for i, h := range u.MFABackupCodes {
			if h == hash {
				u.MFABackupCodes = append(u.MFABackupCodes[:i], u.MFABackupCodes[i+1:]...)
				removed = true
				return
			}
		}
	})
	return removed, err
}

// captureMailer records sent emails and can be told to fail.
type captureMailer struct {
	mu   sync.Mutex
	sent []notification.Email
	err  error
}

func (c *captureMailer) Send(_ context.Context, e notification.Email) (notification.SendResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return notification.SendResult{}, c.err
	}
	c.sent = append(c.sent, e)
	return notification.SendResult{Provider: "capture"}, nil
}

var codeInText = regexp.MustCompile(`\b([0-9]{6})\b`)

func (c *captureMailer) lastCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	m := codeInText.FindStringSubmatch(c.sent[len(c.sent)-1].Text)
	if m == nil {
		return ""
	}
	return m[1]
}

func (c *captureMailer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc    *DefaultAuthService
	users  *memUsers
	mailer *captureMailer
	clock  *clock
	tokens *utils.TokenIssuer
}

const adminPassword = "Adm1n!Passw0rd#"

func newFixture(t interface{ Fatalf(string, ...any) }) *fixture {
	clk := &clock{t: time.Now().Add(-10 * time.Minute).Truncate(time.Second)}
	users := newMemUsers()
	mailer := &captureMailer{}
	tokens, err := utils.NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	tokens = tokens.WithClock(clk.Now)
	adminHash, err := HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("admin hash: %v", err)
	}
	svc := &DefaultAuthService{
		Users:  users,
		Tokens: tokens,
		OTP: &OTPEngine{
			Users:       users,
			Cache:       NewMemoryOTPCache(),
			Mailer:      mailer,
			SendTimeout: time.Second,
			Now:         clk.Now,
		},
		Mailer:         mailer,
		Admin:          NewDistinguishedAdmin("admin@bhutantours.test", "Ops", adminHash),
		TOTPIssuer:     "Bhutan Tours",
		FrontendURL:    "http://localhost:5173",
		ExposeResetURL: true,
		SendTimeout:    time.Second,
		Now:            clk.Now,
	}
	return &fixture{svc: svc, users: users, mailer: mailer, clock: clk, tokens: tokens}
}
