package booking

import (
	"context"

	"bhutantours/models"
	"bhutantours/services/encryption"
	"bhutantours/utils"

	"go.uber.org/zap"
)

// ListMine returns the caller's bookings, newest first.
func (s *DefaultBookingService) ListMine(ctx context.Context, actor Actor) ([]models.BookingResponse, error) {
	list, err := s.Bookings.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, list)
}

// ListAll returns every booking, newest first.
func (s *DefaultBookingService) ListAll(ctx context.Context) ([]models.BookingResponse, error) {
	list, err := s.Bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, list)
}

// Get returns one booking to its owner or an admin.
func (s *DefaultBookingService) Get(ctx context.Context, actor Actor, id string) (*models.BookingResponse, error) {
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out, err := s.respond(ctx, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *DefaultBookingService) load(ctx context.Context, actor Actor, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

// respond opens each booking's details independently. A booking whose
// details cannot be opened is returned redacted and flagged.
func (s *DefaultBookingService) respond(ctx context.Context, list []models.Booking) ([]models.BookingResponse, error) {
	ids := make([]string, 0, len(list))
	seen := map[string]bool{}
	for _, b := range list {
		if !seen[b.TourPackageID] {
			seen[b.TourPackageID] = true
			ids = append(ids, b.TourPackageID)
		}
	}
	packages, err := s.Packages.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.BookingResponse, 0, len(list))
	for _, b := range list {
		resp := models.BookingResponse{Booking: b, TourPackage: packages[b.TourPackageID]}
		s.open(&resp)
		out = append(out, resp)
	}
	return out, nil
}

func (s *DefaultBookingService) open(resp *models.BookingResponse) {
	if resp.EncryptedDetails == nil {
		return
	}
	var d models.BookingDetails
	if err := s.Cipher.Open(*resp.EncryptedDetails, &d); err != nil {
		fields := []zap.Field{zap.String("bookingID", resp.ID), zap.Error(err)}
		if encryption.IsOpenError(err) {
			utils.GetLogger().Warn("Booking details failed to open", fields...)
		} else {
			utils.GetLogger().Error("Booking details failed to open", fields...)
		}
		resp.DecryptionFailed = true
		if s.OnOpenFailure != nil {
			s.OnOpenFailure()
		}
		return
	}
	resp.SpecialRequests = &d.SpecialRequests
	resp.ContactEmail = &d.ContactEmail
	resp.ContactPhone = &d.ContactPhone
}
