package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a booking repository on the "bookings" collection.
func NewMongoBookingRepo() BookingRepository {
	return NewMongoBookingRepoWithCollection(database.Database().Collection("bookings"))
}

func NewMongoBookingRepoWithCollection(coll *mongo.Collection) *MongoBookingRepo {
	repo := &MongoBookingRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("bookings: failed to create indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tour_package_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	raw, err := r.coll.FindOne(ctx, bson.M{"id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	b, err := decodeBooking(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoBookingRepo) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoBookingRepo) ListSealed(ctx context.Context) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"encrypted_details": bson.M{"$exists": true}})
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	for cursor.Next(ctx) {
		b, err := decodeBooking(cursor.Current)
		if err != nil {
			id, _ := cursor.Current.Lookup("id").StringValueOK()
			utils.GetLogger().Error("bookings: skipping undecodable document", zap.String("bookingID", id), zap.Error(err))
			continue
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return bookings, nil
}

// decodeBooking decodes one stored booking. When only encrypted_details has
// the wrong shape the rest of the document still decodes, and the bundle is
// left empty so opening it fails for this booking alone.
func decodeBooking(raw bson.Raw) (models.Booking, error) {
	var b models.Booking
	err := bson.Unmarshal(raw, &b)
	if err == nil {
		return b, nil
	}

	elems, elemErr := raw.Elements()
	if elemErr != nil {
		return models.Booking{}, err
	}
	rest := bson.D{}
	malformed := false
	for _, e := range elems {
		if e.Key() == "encrypted_details" {
			malformed = true
			continue
		}
		rest = append(rest, bson.E{Key: e.Key(), Value: e.Value()})
	}
	if !malformed {
		return models.Booking{}, err
	}
	stripped, mErr := bson.Marshal(rest)
	if mErr != nil {
		return models.Booking{}, err
	}
	b = models.Booking{}
	if err := bson.Unmarshal(stripped, &b); err != nil {
		return models.Booking{}, err
	}
	b.EncryptedDetails = &models.EncryptedBundle{}
	return b, nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoBookingRepo) DeleteIfStatus(ctx context.Context, id, status string) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "status": status})
	if err != nil {
		return false, fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	return res.DeletedCount == 1, nil
}

func (r *MongoBookingRepo) ReplaceEncryptedDetails(ctx context.Context, id string, prev, next models.EncryptedBundle) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                              id,
		"encrypted_details.iv":            prev.IV,
		"encrypted_details.authTag":       prev.AuthTag,
		"encrypted_details.encryptedData": prev.EncryptedData,
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"encrypted_details": next, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to replace details of booking %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}
