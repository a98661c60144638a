package booking

import (
	"context"
	"time"

	bookingRepo "bhutantours/database/repository/booking"
	packageRepo "bhutantours/database/repository/tourpackage"
	"bhutantours/models"
	"bhutantours/services/encryption"
	"bhutantours/services/tasks"
)

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// BookingService manages bookings. Contact details are sealed on write and
// opened per record on every read.
type BookingService interface {
	Create(ctx context.Context, actor Actor, req models.CreateBookingRequest) (*models.BookingResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]models.BookingResponse, error)
	ListAll(ctx context.Context) ([]models.BookingResponse, error)
	Get(ctx context.Context, actor Actor, id string) (*models.BookingResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.BookingResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) error
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings bookingRepo.BookingRepository
	Packages packageRepo.PackageRepository
	Cipher   *encryption.Cipher
	Mail     tasks.MailDispatcher
	Now      func() time.Time

	// OnOpenFailure is called once per booking returned redacted.
	OnOpenFailure func()
}

var _ BookingService = (*DefaultBookingService)(nil)

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
