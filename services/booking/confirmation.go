package booking

import (
	"fmt"
	"html"

	"bhutantours/models"
)

const confirmationKind = "booking_confirmation"

func confirmationEmail(b *models.Booking, pkg *models.TourPackage, to string) models.MailPayload {
	start := b.StartDate.Format("2 January 2006")
	return models.MailPayload{
		To:      to,
		Subject: fmt.Sprintf("Booking received: %s", pkg.Title),
		HTML: fmt.Sprintf(`<h2>Thank you for booking with Bhutan Tours</h2>
<p><strong>%s</strong> starting %s for %d traveller(s).</p>
<p>Total: USD %.2f</p>
<p>Reference: %s</p>
<p>Your booking is pending and we will confirm it shortly.</p>`,
			html.EscapeString(pkg.Title), start, b.NumberOfPeople, b.TotalPrice, b.ID),
		Text: fmt.Sprintf("%s starting %s for %d traveller(s). Total USD %.2f. Reference %s. Status: pending.",
			pkg.Title, start, b.NumberOfPeople, b.TotalPrice, b.ID),
		Kind: confirmationKind,
	}
}
