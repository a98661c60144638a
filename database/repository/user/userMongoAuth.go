package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bhutantours/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetLoginOTP overwrites any previous login code.
func (r *MongoUserRepo) SetLoginOTP(ctx context.Context, id, hash string, expires time.Time) error {
	return r.updateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"mfa_otp_hash": hash, "mfa_otp_expires": expires},
	})
}

// DeleteLoginOTPIfMatch unsets the login code only while it still carries hash,
// so two concurrent verifiers cannot both consume it.
func (r *MongoUserRepo) DeleteLoginOTPIfMatch(ctx context.Context, id, hash string) (bool, error) {
	return r.updateIfMatch(ctx,
		bson.M{"id": id, "mfa_otp_hash": hash},
		bson.M{"$unset": bson.M{"mfa_otp_hash": "", "mfa_otp_expires": ""}},
	)
}

func (r *MongoUserRepo) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return r.updateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"reset_token": tokenHash, "reset_token_expires": expires},
	})
}

func (r *MongoUserRepo) DeleteResetTokenIfMatch(ctx context.Context, id, tokenHash string) (bool, error) {
	return r.updateIfMatch(ctx,
		bson.M{"id": id, "reset_token": tokenHash},
		bson.M{"$unset": bson.M{"reset_token": "", "reset_token_expires": ""}},
	)
}

// RedeemResetToken finds the user holding an unexpired token and, in the same
// operation, stores the new password and removes the token.
func (r *MongoUserRepo) RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"reset_token":         tokenHash,
		"reset_token_expires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash":      passwordHash,
			"tokens_valid_after": now,
			"updated_at":         now,
		},
		"$unset": bson.M{"reset_token": "", "reset_token_expires": ""},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(safeProjection)

	var user models.User
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to redeem reset token: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) SetPendingTOTP(ctx context.Context, id, secret string) error {
	return r.updateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"mfa_temp_secret": secret, "updated_at": time.Now().UTC()},
	})
}

// PromotePendingTOTP moves the pending secret into the active slot. It only
// applies if the pending secret has not been replaced by a newer enrollment.
func (r *MongoUserRepo) PromotePendingTOTP(ctx context.Context, id, secret string) (bool, error) {
	return r.updateIfMatch(ctx,
		bson.M{"id": id, "mfa_temp_secret": secret},
		bson.M{
			"$set":   bson.M{"mfa_secret": secret, "mfa_enabled": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"mfa_temp_secret": ""},
		},
	)
}

func (r *MongoUserRepo) DisableMFA(ctx context.Context, id string, validAfter time.Time) error {
	return r.updateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{
			"mfa_enabled":        false,
			"tokens_valid_after": validAfter,
			"updated_at":         time.Now().UTC(),
		},
		"$unset": bson.M{"mfa_secret": "", "mfa_temp_secret": "", "mfa_backup_codes": ""},
	})
}

func (r *MongoUserRepo) SetBackupCodes(ctx context.Context, id string, hashes []string) error {
	return r.updateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"mfa_backup_codes": hashes, "updated_at": time.Now().UTC()},
	})
}

// RemoveBackupCode pulls hash; the filter on the array element makes a
// second concurrent pull of the same code report false.
func (r *MongoUserRepo) RemoveBackupCode(ctx context.Context, id, hash string) (bool, error) {
	return r.updateIfMatch(ctx,
		bson.M{"id": id, "mfa_backup_codes": hash},
		bson.M{"$pull": bson.M{"mfa_backup_codes": hash}},
	)
}
