package tourpackage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	packageRepo "bhutantours/database/repository/tourpackage"
	"bhutantours/models"
	"bhutantours/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("package not found")
	ErrInactive = errors.New("package is no longer available")
)

// ValidationError is a rejected package payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PackageService manages the tour catalogue.
type PackageService interface {
	ListActive(ctx context.Context) ([]models.TourPackage, error)
	// Get returns an active package; admins also see inactive ones.
	Get(ctx context.Context, id string, includeInactive bool) (*models.TourPackage, error)
	Create(ctx context.Context, in models.TourPackageInput) (*models.TourPackage, error)
	Update(ctx context.Context, id string, in models.TourPackageInput) (*models.TourPackage, error)
	Delete(ctx context.Context, id string) error
}

// DefaultPackageService implements PackageService.
type DefaultPackageService struct {
	Repo packageRepo.PackageRepository
	Now  func() time.Time
}

var _ PackageService = (*DefaultPackageService)(nil)

func (s *DefaultPackageService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultPackageService) ListActive(ctx context.Context) ([]models.TourPackage, error) {
	return s.Repo.ListActive(ctx)
}

func (s *DefaultPackageService) Get(ctx context.Context, id string, includeInactive bool) (*models.TourPackage, error) {
	pkg, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrNotFound
	}
	if !pkg.IsActive && !includeInactive {
		return nil, ErrInactive
	}
	return pkg, nil
}

func (s *DefaultPackageService) Create(ctx context.Context, in models.TourPackageInput) (*models.TourPackage, error) {
	now := s.now()
	pkg := &models.TourPackage{ID: uuid.New().String(), IsActive: true, CreatedAt: now}
	if err := apply(pkg, in); err != nil {
		return nil, err
	}
	pkg.UpdatedAt = now
	if err := s.Repo.Create(ctx, pkg); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Package created", zap.String("packageID", pkg.ID), zap.String("title", pkg.Title))
	return pkg, nil
}

func (s *DefaultPackageService) Update(ctx context.Context, id string, in models.TourPackageInput) (*models.TourPackage, error) {
	pkg, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrNotFound
	}
	if err := apply(pkg, in); err != nil {
		return nil, err
	}
	pkg.UpdatedAt = s.now()
	ok, err := s.Repo.Update(ctx, pkg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return pkg, nil
}

func (s *DefaultPackageService) Delete(ctx context.Context, id string) error {
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	utils.GetLogger().Info("Package deleted", zap.String("packageID", id))
	return nil
}

func validCategory(c string) bool {
	for _, known := range models.PackageCategories {
		if c == known {
			return true
		}
	}
	return false
}

// apply copies a validated input onto pkg.
func apply(pkg *models.TourPackage, in models.TourPackageInput) error {
	title := strings.TrimSpace(in.Title)
	location := strings.TrimSpace(in.Location)
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = "cultural"
	}

	switch {
	case title == "":
		return &ValidationError{Message: "title is required"}
	case location == "":
		return &ValidationError{Message: "location is required"}
	case in.Duration < 1:
		return &ValidationError{Message: "duration must be at least 1 day"}
	case in.Price < 0:
		return &ValidationError{Message: "price cannot be negative"}
	case in.MaxGroupSize < 1:
		return &ValidationError{Message: "maxGroupSize must be at least 1"}
	case in.AvailableSpots < 0:
		return &ValidationError{Message: "availableSpots cannot be negative"}
	case !validCategory(category):
		return &ValidationError{Message: fmt.Sprintf("category must be one of %s", strings.Join(models.PackageCategories, ", "))}
	}

	pkg.Title = title
	pkg.Description = strings.TrimSpace(in.Description)
	pkg.Duration = in.Duration
	pkg.Price = in.Price
	pkg.Location = location
	pkg.MaxGroupSize = in.MaxGroupSize
	pkg.AvailableSpots = in.AvailableSpots
	pkg.Category = category
	pkg.ImageURL = in.ImageURL
	pkg.Itinerary = in.Itinerary
	pkg.Included = in.Included
	pkg.Excluded = in.Excluded
	if in.IsActive != nil {
		pkg.IsActive = *in.IsActive
	}
	return nil
}
