package booking

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"bhutantours/models"
	"bhutantours/services/encryption"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tourist = Actor{UserID: "u1", Email: "pema@example.com", Role: models.RoleUser}
	other   = Actor{UserID: "u2", Email: "other@example.com", Role: models.RoleUser}
	admin   = Actor{UserID: "admin-0001", Email: "admin@example.com", Role: models.RoleAdmin}
)

func testCipher(t *testing.T, fill byte) *encryption.Cipher {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = fill
	}
	c, err := encryption.NewCipher(key)
	require.NoError(t, err)
	return c
}

type fixture struct {
	svc      *DefaultBookingService
	bookings *memBookings
	packages *memPackages
	mail     *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	bookings := newMemBookings()
	packages := newMemPackages(
		models.TourPackage{ID: "p1", Title: "Druk Path Trek", Price: 1200, MaxGroupSize: 10, AvailableSpots: 5, IsActive: true},
		models.TourPackage{ID: "p2", Title: "Closed", Price: 800, MaxGroupSize: 10, AvailableSpots: 5, IsActive: false},
	)
	mail := &recordingDispatcher{}
	return &fixture{
		svc:      &DefaultBookingService{Bookings: bookings, Packages: packages, Cipher: testCipher(t, 0x11), Mail: mail},
		bookings: bookings,
		packages: packages,
		mail:     mail,
	}
}

func request(n int) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		TourPackageID:   "p1",
		NumberOfPeople:  n,
		StartDate:       time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC),
		SpecialRequests: "Vegetarian meals, ཞབས་ཏོག",
		ContactPhone:    "+975 17 000000",
	}
}

func TestCreateSealsDetailsAndReservesSpots(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.Create(context.Background(), tourist, request(2))
	require.NoError(t, err)

	assert.Equal(t, 2400.0, resp.TotalPrice)
	assert.Equal(t, models.BookingPending, resp.Status)
	assert.Equal(t, "pema@example.com", *resp.ContactEmail)
	assert.Equal(t, 3, f.packages.spots("p1"))

	stored, _ := f.bookings.GetByID(context.Background(), resp.ID)
	require.NotNil(t, stored.EncryptedDetails)
	assert.Equal(t, f.svc.Cipher.KeyID(), stored.EncryptedDetails.KeyID)
	assert.NotContains(t, stored.EncryptedDetails.EncryptedData, "pema")

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "pema@example.com", f.mail.sent[0].To)
	assert.Equal(t, confirmationKind, f.mail.sent[0].Kind)
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, tourist, request(6))
	var spots *InsufficientSpotsError
	require.ErrorAs(t, err, &spots)
	assert.Equal(t, "Only 5 spots available", spots.Error())

	req := request(1)
	req.TourPackageID = "p2"
	_, err = f.svc.Create(ctx, tourist, req)
	assert.ErrorIs(t, err, ErrPackageNotFound)

	req.TourPackageID = "missing"
	_, err = f.svc.Create(ctx, tourist, req)
	assert.ErrorIs(t, err, ErrPackageNotFound)

	var invalid *ValidationError
	_, err = f.svc.Create(ctx, tourist, request(0))
	assert.ErrorAs(t, err, &invalid)

	assert.Equal(t, 5, f.packages.spots("p1"))
}

func TestConcurrentCreateNeverOverbooks(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Create(context.Background(), tourist, request(1)); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, created)
	assert.Equal(t, 0, f.packages.spots("p1"))
}

func TestListRedactsUnreadableRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	good, err := f.svc.Create(ctx, tourist, request(1))
	require.NoError(t, err)
	bad, err := f.svc.Create(ctx, tourist, request(1))
	require.NoError(t, err)

	stored, _ := f.bookings.GetByID(ctx, bad.ID)
	tampered := *stored.EncryptedDetails
	tampered.AuthTag = strings.Repeat("0", len(tampered.AuthTag))
	stored.EncryptedDetails = &tampered
	require.NoError(t, f.bookings.Create(ctx, stored))

	list, err := f.svc.ListMine(ctx, tourist)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, r := range list {
		switch r.ID {
		case good.ID:
			assert.False(t, r.DecryptionFailed)
			require.NotNil(t, r.SpecialRequests)
			assert.Equal(t, "Vegetarian meals, ཞབས་ཏོག", *r.SpecialRequests)
			require.NotNil(t, r.TourPackage)
		case bad.ID:
			assert.True(t, r.DecryptionFailed)
			assert.Nil(t, r.ContactEmail)
			assert.Nil(t, r.ContactPhone)
			assert.Nil(t, r.SpecialRequests)
		}
	}
}

func TestEmptyBundleIsFlaggedNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, tourist, request(1))
	require.NoError(t, err)

	stored, _ := f.bookings.GetByID(ctx, b.ID)
	stored.EncryptedDetails = &models.EncryptedBundle{}
	require.NoError(t, f.bookings.Create(ctx, stored))

	failures := 0
	f.svc.OnOpenFailure = func() { failures++ }
	got, err := f.svc.Get(ctx, tourist, b.ID)
	require.NoError(t, err)
	assert.True(t, got.DecryptionFailed)
	assert.Nil(t, got.ContactEmail)
	assert.Equal(t, 1, failures)
}

func TestGetChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, tourist, request(1))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, other, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, admin, b.ID)
	assert.NoError(t, err)
	got, err := f.svc.Get(ctx, tourist, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "+975 17 000000", *got.ContactPhone)
	_, err = f.svc.Get(ctx, tourist, "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, tourist, request(2))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, "shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	out, err := f.svc.UpdateStatus(ctx, b.ID, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, out.Status)
	assert.Equal(t, 3, f.packages.spots("p1"))

	_, err = f.svc.UpdateStatus(ctx, b.ID, models.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, f.packages.spots("p1"))

	_, err = f.svc.UpdateStatus(ctx, b.ID, models.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, f.packages.spots("p1"))

	_, err = f.svc.UpdateStatus(ctx, b.ID, models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, tourist, request(2))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Cancel(ctx, other, b.ID), ErrForbidden)
	require.NoError(t, f.svc.Cancel(ctx, tourist, b.ID))
	assert.Equal(t, 5, f.packages.spots("p1"))

	gone, _ := f.bookings.GetByID(ctx, b.ID)
	assert.Nil(t, gone)
	assert.ErrorIs(t, f.svc.Cancel(ctx, tourist, b.ID), ErrBookingNotFound)
}

// confirmingBookings confirms a booking as soon as it is read, standing in for
// an admin whose update lands between a read and the following write.
type confirmingBookings struct {
	*memBookings
}

func (c confirmingBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, err := c.memBookings.GetByID(ctx, id)
	if err != nil || b == nil {
		return b, err
	}
	if _, err := c.memBookings.UpdateStatus(ctx, id, b.Status, models.BookingConfirmed); err != nil {
		return nil, err
	}
	return b, nil
}

func TestCancelConcurrentStatusChangeKeepsBookingAndSpots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, tourist, request(2))
	require.NoError(t, err)
	require.Equal(t, 3, f.packages.spots("p1"))

	f.svc.Bookings = confirmingBookings{f.bookings}
	assert.ErrorIs(t, f.svc.Cancel(ctx, tourist, b.ID), ErrConflict)

	stored, _ := f.bookings.GetByID(ctx, b.ID)
	require.NotNil(t, stored)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
	assert.Equal(t, 3, f.packages.spots("p1"))

	f.svc.Bookings = f.bookings
	require.NoError(t, f.svc.Cancel(ctx, tourist, b.ID))
	assert.Equal(t, 5, f.packages.spots("p1"))
}

func TestCancelAlreadyCancelledDoesNotReleaseTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, tourist, request(2))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, models.BookingCancelled)
	require.NoError(t, err)
	require.Equal(t, 5, f.packages.spots("p1"))

	require.NoError(t, f.svc.Cancel(ctx, tourist, b.ID))
	assert.Equal(t, 5, f.packages.spots("p1"))
	gone, _ := f.bookings.GetByID(ctx, b.ID)
	assert.Nil(t, gone)
}

func TestRotationStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, tourist, request(1))
		require.NoError(t, err)
	}

	next := testCipher(t, 0x22)
	report, err := encryption.Rotate(ctx, RotationStore{Bookings: f.bookings}, f.svc.Cipher, next, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Migrated)

	f.svc.Cipher = next
	list, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	for _, r := range list {
		assert.False(t, r.DecryptionFailed)
		assert.Equal(t, next.KeyID(), r.EncryptedDetails.KeyID)
	}

	report, err = encryption.Rotate(ctx, RotationStore{Bookings: f.bookings}, testCipher(t, 0x11), next, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Migrated)
	assert.Equal(t, 3, report.Skipped)
}
