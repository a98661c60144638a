package models

// MailPayload is the queued form of an outbound email.
type MailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
	Kind    string `json:"kind"` // e.g. "booking_confirmation"
}
