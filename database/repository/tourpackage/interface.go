package packageRepo

import (
	"context"

	"bhutantours/models"
)

// PackageRepository defines methods for tour package data access.
// Lookups return (nil, nil) when no document matches.
type PackageRepository interface {
	Create(ctx context.Context, pkg *models.TourPackage) error
	GetByID(ctx context.Context, id string) (*models.TourPackage, error)
	// GetByIDs returns the packages found among ids, keyed by ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.TourPackage, error)
	ListActive(ctx context.Context) ([]models.TourPackage, error)
	Update(ctx context.Context, pkg *models.TourPackage) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	// ReserveSpots atomically takes n spots from an active package and
	// reports false when fewer than n are left.
	ReserveSpots(ctx context.Context, id string, n int) (bool, error)
	// ReleaseSpots gives n spots back.
	ReleaseSpots(ctx context.Context, id string, n int) error
}
