package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	userRepo "bhutantours/database/repository/user"
	"bhutantours/services/notification"
	"bhutantours/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// OTPTTL is how long an emailed login code stays valid.
	OTPTTL = 5 * time.Minute
	// OTPCost is the bcrypt cost for login codes.
	OTPCost = 10
	// DefaultSendTimeout bounds a login code email when none is configured.
	DefaultSendTimeout = 10 * time.Second
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

// OTPEngine issues, delivers and consumes emailed login codes. Stored users
// keep their code on the user document; the admin keeps it in Cache.
type OTPEngine struct {
	Users       userRepo.UserRepository
	Cache       OTPCache
	Mailer      notification.Mailer
	SendTimeout time.Duration
	Now         func() time.Time
}

func (e *OTPEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func adminOTPKey(email string) string {
	return utils.OTPCachePrefix + "admin:" + email
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue stores a fresh code for p, replacing any earlier one, and returns the plaintext.
func (e *OTPEngine) Issue(ctx context.Context, p Principal) (string, error) {
	code, _, err := e.issue(ctx, p)
	return code, err
}

func (e *OTPEngine) issue(ctx context.Context, p Principal) (string, OTPRecord, error) {
	code, err := generateCode()
	if err != nil {
		return "", OTPRecord{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), OTPCost)
	if err != nil {
		return "", OTPRecord{}, fmt.Errorf("failed to hash code: %w", err)
	}
	rec := OTPRecord{Hash: string(hash), ExpiresAt: e.now().Add(OTPTTL)}

	switch v := p.(type) {
	case *DistinguishedAdmin:
		err = e.Cache.Put(ctx, adminOTPKey(v.Email()), rec, OTPTTL)
	case RegularUser:
		err = e.Users.SetLoginOTP(ctx, v.ID(), rec.Hash, rec.ExpiresAt)
	default:
		err = fmt.Errorf("unsupported principal %T", p)
	}
	if err != nil {
		return "", OTPRecord{}, err
	}
	return code, rec, nil
}

// IssueAndSend issues a code and emails it. When the send fails or times out
// the code is withdrawn and ErrDeliveryFailure is returned.
func (e *OTPEngine) IssueAndSend(ctx context.Context, p Principal) error {
	code, rec, err := e.issue(ctx, p)
	if err != nil {
		return err
	}

	timeout := e.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, sendErr := e.Mailer.Send(sendCtx, loginCodeEmail(p.Email(), code)); sendErr != nil {
		// The request context may already be done; rollback must still run.
		rbCtx, rbCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer rbCancel()
		if _, rbErr := e.remove(rbCtx, p, rec); rbErr != nil {
			utils.GetLogger().Error("Failed to withdraw undelivered login code",
				zap.String("principal", p.ID()), zap.Error(rbErr))
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, sendErr)
	}
	return nil
}

// Verify consumes the stored code if candidate matches it and it has not
// expired. A stored code is usable on [issued, issued+OTPTTL). Only one of
// several concurrent verifiers of the same code succeeds.
func (e *OTPEngine) Verify(ctx context.Context, p Principal, candidate string) (bool, error) {
	rec, found, err := e.load(ctx, p)
	if err != nil || !found {
		return false, err
	}
	if !e.now().Before(rec.ExpiresAt) {
		if _, err := e.remove(ctx, p, rec); err != nil {
			return false, err
		}
		return false, ErrExpired
	}
	if !sixDigits.MatchString(candidate) {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.Hash), []byte(candidate)) != nil {
		return false, nil
	}
	return e.remove(ctx, p, rec)
}

func (e *OTPEngine) load(ctx context.Context, p Principal) (OTPRecord, bool, error) {
	switch v := p.(type) {
	case *DistinguishedAdmin:
		return e.Cache.Get(ctx, adminOTPKey(v.Email()))
	case RegularUser:
		u, err := e.Users.GetAuthByID(ctx, v.ID())
		if err != nil {
			return OTPRecord{}, false, err
		}
		if u == nil || u.MFAOTPHash == "" || u.MFAOTPExpires == nil {
			return OTPRecord{}, false, nil
		}
		return OTPRecord{Hash: u.MFAOTPHash, ExpiresAt: *u.MFAOTPExpires}, true, nil
	}
	return OTPRecord{}, false, errors.New("unsupported principal")
}

func (e *OTPEngine) remove(ctx context.Context, p Principal, rec OTPRecord) (bool, error) {
	switch v := p.(type) {
	case *DistinguishedAdmin:
		return e.Cache.DeleteIfMatch(ctx, adminOTPKey(v.Email()), rec)
	case RegularUser:
		return e.Users.DeleteLoginOTPIfMatch(ctx, v.ID(), rec.Hash)
	}
	return false, errors.New("unsupported principal")
}
