package booking

import (
	"context"

	"bhutantours/models"
	"bhutantours/utils"

	"go.uber.org/zap"
)

// UpdateStatus moves a booking to status. Cancelling returns its spots to the
// package; a cancelled booking stays cancelled.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, id, status string) (*models.BookingResponse, error) {
	if !models.ValidBookingStatus(status) {
		return nil, ErrInvalidStatus
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}

	if b.Status != status {
		if b.Status == models.BookingCancelled {
			return nil, ErrInvalidTransition
		}
		ok, err := s.Bookings.UpdateStatus(ctx, id, b.Status, status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrConflict
		}
		if status == models.BookingCancelled {
			s.release(ctx, b.TourPackageID, b.NumberOfPeople)
		}
		utils.GetLogger().Info("Booking status changed",
			zap.String("bookingID", id), zap.String("from", b.Status), zap.String("to", status))
		b.Status = status
		b.UpdatedAt = s.now()
	}

	out, err := s.respond(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Cancel removes a booking on behalf of its owner or an admin, returning its
// spots unless it was already cancelled. The delete only applies to the status
// that was read, so a concurrent status change surfaces as ErrConflict.
func (s *DefaultBookingService) Cancel(ctx context.Context, actor Actor, id string) error {
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	ok, err := s.Bookings.DeleteIfStatus(ctx, id, b.Status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	if b.Status != models.BookingCancelled {
		s.release(ctx, b.TourPackageID, b.NumberOfPeople)
	}
	utils.GetLogger().Info("Booking cancelled", zap.String("bookingID", id), zap.String("by", actor.UserID))
	return nil
}
