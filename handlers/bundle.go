package handlers

import (
	"bhutantours/metrics"
	"bhutantours/utils"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Tokens  *utils.TokenIssuer
	Metrics *metrics.Metrics

	Auth     *AuthHandler
	Bookings *BookingHandler
	Packages *PackageHandler
	Admin    *AdminHandler
	Debug    *DebugHandler
}
