package bookingRepo

import (
	"context"

	"bhutantours/models"
)

// BookingRepository defines methods for booking data access.
// Lookups return (nil, nil) when no document matches.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListByUser returns a user's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ListAll returns every booking, newest first.
	ListAll(ctx context.Context) ([]models.Booking, error)
	// UpdateStatus moves a booking from one status to another and reports
	// whether the booking was still in the expected status.
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	// DeleteIfStatus removes a booking only while it is still in status.
	DeleteIfStatus(ctx context.Context, id, status string) (bool, error)

	// ListSealed returns every booking that carries encrypted details.
	ListSealed(ctx context.Context) ([]models.Booking, error)
	// ReplaceEncryptedDetails swaps prev for next only if the stored bundle is still prev.
	ReplaceEncryptedDetails(ctx context.Context, id string, prev, next models.EncryptedBundle) (bool, error)
}
