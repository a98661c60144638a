// File: database/repository/user/userMongoCrud.go
package userRepo

import (
	"context"
	"fmt"
	"time"

	"bhutantours/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdatePassword stores the new hash and bumps tokens_valid_after.
func (r *MongoUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, validAfter time.Time) error {
	return r.updateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{
			"password_hash":      passwordHash,
			"tokens_valid_after": validAfter,
			"updated_at":         time.Now().UTC(),
		},
	})
}

// updateOne applies update to the document matched by filter and fails if none matched.
func (r *MongoUserRepo) updateOne(ctx context.Context, filter, update bson.M) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update user %v: %w", filter["id"], err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %v not found", filter["id"])
	}
	return nil
}

// updateIfMatch applies update only where filter still matches and reports
// whether a document changed. Used for compare-and-delete style consumes.
func (r *MongoUserRepo) updateIfMatch(ctx context.Context, filter, update bson.M) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update user %v: %w", filter["id"], err)
	}
	return result.ModifiedCount == 1, nil
}
