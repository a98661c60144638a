package models

// BookingResponse is a booking as returned to clients: the stored record with
// its details opened. When the details cannot be opened the contact fields
// are null and DecryptionFailed is set.
type BookingResponse struct {
	Booking
	TourPackage      *TourPackage `json:"tourPackage,omitempty"`
	SpecialRequests  *string      `json:"specialRequests"`
	ContactEmail     *string      `json:"contactEmail"`
	ContactPhone     *string      `json:"contactPhone"`
	DecryptionFailed bool         `json:"decryptionFailed"`
}
