package models

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// ValidBookingStatus reports whether s is one of the known booking states.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking represents a tourist's reservation on a tour package.
// Contact details are never stored in clear; they live in EncryptedDetails.
type Booking struct {
	ID               string           `bson:"id" json:"id"`                           // UUID
	UserID           string           `bson:"user_id" json:"userId"`                  // Owner of the booking
	TourPackageID    string           `bson:"tour_package_id" json:"tourPackageId"`   // Booked package
	NumberOfPeople   int              `bson:"number_of_people" json:"numberOfPeople"` // Travellers in the party
	StartDate        time.Time        `bson:"start_date" json:"startDate"`            // First day of the tour
	TotalPrice       float64          `bson:"total_price" json:"totalPrice"`          // Package price x people at booking time
	Status           string           `bson:"status" json:"status"`                   // pending | confirmed | cancelled | completed
	EncryptedDetails *EncryptedBundle `bson:"encrypted_details,omitempty" json:"-"`   // Sealed BookingDetails
	CreatedAt        time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updated_at" json:"updatedAt"`
}

// BookingDetails is the sensitive part of a booking, sealed at rest.
type BookingDetails struct {
	SpecialRequests string `json:"specialRequests"`
	ContactEmail    string `json:"contactEmail"`
	ContactPhone    string `json:"contactPhone"`
}

// EncryptedBundle is an AES-256-GCM sealed payload. All fields are hex.
type EncryptedBundle struct {
	IV            string `bson:"iv" json:"iv"`
	EncryptedData string `bson:"encryptedData" json:"encryptedData"`
	AuthTag       string `bson:"authTag" json:"authTag"`
	KeyID         string `bson:"keyId,omitempty" json:"keyId,omitempty"`
}

// CreateBookingRequest is the payload accepted when creating a booking.
type CreateBookingRequest struct {
	TourPackageID   string    `json:"tourPackageId" binding:"required"`
	NumberOfPeople  int       `json:"numberOfPeople" binding:"required,min=1"`
	StartDate       time.Time `json:"startDate" binding:"required"`
	SpecialRequests string    `json:"specialRequests"`
	ContactPhone    string    `json:"contactPhone"`
}
