package booking

import (
	"context"

	bookingRepo "bhutantours/database/repository/booking"
	"bhutantours/models"
	"bhutantours/services/encryption"
)

// RotationStore exposes sealed booking details to encryption.Rotate.
type RotationStore struct {
	Bookings bookingRepo.BookingRepository
}

var _ encryption.BundleStore = RotationStore{}

func (r RotationStore) ListSealed(ctx context.Context) ([]encryption.SealedRecord, error) {
	list, err := r.Bookings.ListSealed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]encryption.SealedRecord, 0, len(list))
	for _, b := range list {
		if b.EncryptedDetails == nil {
			continue
		}
		out = append(out, encryption.SealedRecord{ID: b.ID, Bundle: *b.EncryptedDetails})
	}
	return out, nil
}

func (r RotationStore) ReplaceBundle(ctx context.Context, id string, prev, next models.EncryptedBundle) (bool, error) {
	return r.Bookings.ReplaceEncryptedDetails(ctx, id, prev, next)
}
