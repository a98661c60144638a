package encryption

import (
	"context"
	"encoding/json"
	"fmt"

	"bhutantours/models"
)

// SealedRecord is one stored bundle addressed by its owner's ID.
type SealedRecord struct {
	ID     string
	Bundle models.EncryptedBundle
}

// BundleStore is the storage side of a key rotation.
type BundleStore interface {
	ListSealed(ctx context.Context) ([]SealedRecord, error)
	// ReplaceBundle swaps prev for next only if prev is still stored.
	ReplaceBundle(ctx context.Context, id string, prev, next models.EncryptedBundle) (bool, error)
}

// RotationReport counts what a rotation run did.
type RotationReport struct {
	Migrated int      `json:"migrated"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	FailedID []string `json:"failedIds,omitempty"`
}

// Rotate re-seals every bundle under next. Bundles already stamped with the
// new key, or that only open under it, are skipped, so a run can be repeated
// after a partial failure. With dryRun nothing is written.
func Rotate(ctx context.Context, store BundleStore, prev, next *Cipher, dryRun bool) (RotationReport, error) {
	var report RotationReport

	records, err := store.ListSealed(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list sealed records: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if rec.Bundle.KeyID == next.KeyID() {
			report.Skipped++
			continue
		}

		var payload json.RawMessage
		if err := prev.Open(rec.Bundle, &payload); err != nil {
			if next.Open(rec.Bundle, &payload) == nil {
				report.Skipped++
				continue
			}
			report.Failed++
			report.FailedID = append(report.FailedID, rec.ID)
			continue
		}

		resealed, err := next.Seal(payload)
		if err != nil {
			report.Failed++
			report.FailedID = append(report.FailedID, rec.ID)
			continue
		}
		if dryRun {
			report.Migrated++
			continue
		}
		ok, err := store.ReplaceBundle(ctx, rec.ID, rec.Bundle, resealed)
		switch {
		case err != nil:
			report.Failed++
			report.FailedID = append(report.FailedID, rec.ID)
		case !ok:
			report.Skipped++
		default:
			report.Migrated++
		}
	}
	return report, nil
}
