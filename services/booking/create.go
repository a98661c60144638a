package booking

import (
	"context"
	"fmt"
	"time"

	"bhutantours/models"
	"bhutantours/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create reserves spots on an active package and stores a pending booking
// with sealed contact details. The reservation is released if the booking
// cannot be stored.
func (s *DefaultBookingService) Create(ctx context.Context, actor Actor, req models.CreateBookingRequest) (*models.BookingResponse, error) {
	logger := utils.GetLogger()

	if req.NumberOfPeople < 1 {
		return nil, &ValidationError{Message: "numberOfPeople must be at least 1"}
	}
	if req.StartDate.IsZero() {
		return nil, &ValidationError{Message: "startDate is required"}
	}

	pkg, err := s.Packages.GetByID(ctx, req.TourPackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || !pkg.IsActive {
		return nil, ErrPackageNotFound
	}
	if pkg.MaxGroupSize > 0 && req.NumberOfPeople > pkg.MaxGroupSize {
		return nil, &ValidationError{Message: fmt.Sprintf("Maximum group size is %d", pkg.MaxGroupSize)}
	}

	ok, err := s.Packages.ReserveSpots(ctx, pkg.ID, req.NumberOfPeople)
	if err != nil {
		return nil, err
	}
	if !ok {
		available := 0
		if fresh, err := s.Packages.GetByID(ctx, pkg.ID); err == nil && fresh != nil {
			available = fresh.AvailableSpots
		}
		return nil, &InsufficientSpotsError{Available: available}
	}

	details := models.BookingDetails{
		SpecialRequests: req.SpecialRequests,
		ContactEmail:    actor.Email,
		ContactPhone:    req.ContactPhone,
	}
	sealed, err := s.Cipher.Seal(details)
	if err != nil {
		s.release(ctx, pkg.ID, req.NumberOfPeople)
		return nil, err
	}

	now := s.now()
	b := &models.Booking{
		ID:               uuid.New().String(),
		UserID:           actor.UserID,
		TourPackageID:    pkg.ID,
		NumberOfPeople:   req.NumberOfPeople,
		StartDate:        req.StartDate,
		TotalPrice:       pkg.Price * float64(req.NumberOfPeople),
		Status:           models.BookingPending,
		EncryptedDetails: &sealed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		s.release(ctx, pkg.ID, req.NumberOfPeople)
		return nil, err
	}
	logger.Info("Booking created", zap.String("bookingID", b.ID), zap.String("packageID", pkg.ID))

	if s.Mail != nil && details.ContactEmail != "" {
		if err := s.Mail.Dispatch(ctx, confirmationEmail(b, pkg, details.ContactEmail)); err != nil {
			logger.Warn("Failed to queue booking confirmation", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}

	pkg.AvailableSpots -= req.NumberOfPeople
	return &models.BookingResponse{
		Booking:         *b,
		TourPackage:     pkg,
		SpecialRequests: &details.SpecialRequests,
		ContactEmail:    &details.ContactEmail,
		ContactPhone:    &details.ContactPhone,
	}, nil
}

func (s *DefaultBookingService) release(ctx context.Context, packageID string, n int) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Packages.ReleaseSpots(rbCtx, packageID, n); err != nil {
		utils.GetLogger().Error("Failed to release reserved spots",
			zap.String("packageID", packageID), zap.Int("spots", n), zap.Error(err))
	}
}
