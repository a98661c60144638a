package userRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bhutantours/database"
	"bhutantours/models"
	"bhutantours/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo() UserRepository {
	return NewMongoUserRepoWithCollection(database.Database().Collection("users"))
}

// NewMongoUserRepoWithCollection wires the repository to an explicit collection.
func NewMongoUserRepoWithCollection(coll *mongo.Collection) *MongoUserRepo {
	repo := &MongoUserRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("users: failed to create indexes", zap.Error(err))
	}
	return repo
}

// newContext bounds a repository call by timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// --- Projection-based Helper Methods ---

// findOneWithProjection returns (nil, nil) on no match. A nil projection
// returns the full document.
func (r *MongoUserRepo) findOneWithProjection(ctx context.Context, filter bson.M, projection bson.M) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	var user models.User
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by its unique ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.findOneWithProjection(ctx, bson.M{"id": id}, safeProjection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by its email address.
func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.findOneWithProjection(ctx, bson.M{"email": normalizeEmail(email)}, safeProjection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return u, nil
}

// GetAuthByEmail retrieves the full document including auth fields.
func (r *MongoUserRepo) GetAuthByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.findOneWithProjection(ctx, bson.M{"email": normalizeEmail(email)}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return u, nil
}

// GetAuthByID retrieves the full document including auth fields.
func (r *MongoUserRepo) GetAuthByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.findOneWithProjection(ctx, bson.M{"id": id}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return u, nil
}

// GetAll retrieves all users while excluding sensitive fields.
func (r *MongoUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetProjection(safeProjection).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, u)
	}
	return users, cursor.Err()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
