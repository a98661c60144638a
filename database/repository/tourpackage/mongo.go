package packageRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bhutantours/database"
	"bhutantours/models"
	"bhutantours/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoPackageRepo implements PackageRepository using MongoDB.
type MongoPackageRepo struct {
	coll *mongo.Collection
}

// NewMongoPackageRepo creates a package repository on the "tour_packages" collection.
func NewMongoPackageRepo() PackageRepository {
	return NewMongoPackageRepoWithCollection(database.Database().Collection("tour_packages"))
}

func NewMongoPackageRepoWithCollection(coll *mongo.Collection) *MongoPackageRepo {
	repo := &MongoPackageRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("tour_packages: failed to create indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func (r *MongoPackageRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPackageRepo) Create(ctx context.Context, pkg *models.TourPackage) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, pkg); err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	return nil
}

func (r *MongoPackageRepo) GetByID(ctx context.Context, id string) (*models.TourPackage, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var p models.TourPackage
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch package %s: %w", id, err)
	}
	return &p, nil
}

func (r *MongoPackageRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.TourPackage, error) {
	out := make(map[string]*models.TourPackage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve packages: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.TourPackage
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode package: %w", err)
		}
		out[p.ID] = &p
	}
	return out, cursor.Err()
}

func (r *MongoPackageRepo) ListActive(ctx context.Context) ([]models.TourPackage, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve packages: %w", err)
	}
	defer cursor.Close(ctx)

	packages := []models.TourPackage{}
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, fmt.Errorf("failed to decode packages: %w", err)
	}
	return packages, nil
}

// Update replaces the editable fields of pkg; creation time is preserved.
func (r *MongoPackageRepo) Update(ctx context.Context, pkg *models.TourPackage) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	pkg.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": pkg.ID}, bson.M{"$set": bson.M{
		"title":           pkg.Title,
		"description":     pkg.Description,
		"duration":        pkg.Duration,
		"price":           pkg.Price,
		"location":        pkg.Location,
		"max_group_size":  pkg.MaxGroupSize,
		"available_spots": pkg.AvailableSpots,
		"category":        pkg.Category,
		"image_url":       pkg.ImageURL,
		"itinerary":       pkg.Itinerary,
		"included":        pkg.Included,
		"excluded":        pkg.Excluded,
		"is_active":       pkg.IsActive,
		"updated_at":      pkg.UpdatedAt,
	}})
	if err != nil {
		return false, fmt.Errorf("failed to update package %s: %w", pkg.ID, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoPackageRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete package %s: %w", id, err)
	}
	return res.DeletedCount == 1, nil
}

func (r *MongoPackageRepo) ReserveSpots(ctx context.Context, id string, n int) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":              id,
		"is_active":       true,
		"available_spots": bson.M{"$gte": n},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"available_spots": -n}})
	if err != nil {
		return false, fmt.Errorf("failed to reserve spots on package %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoPackageRepo) ReleaseSpots(ctx context.Context, id string, n int) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"available_spots": n}}); err != nil {
		return fmt.Errorf("failed to release spots on package %s: %w", id, err)
	}
	return nil
}
