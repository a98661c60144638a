package handlers

import (
	"errors"
	"net/http"

	"bhutantours/services/auth"
	"bhutantours/services/booking"
	"bhutantours/services/tourpackage"
	"bhutantours/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeAuthError maps auth service errors onto uniform responses. Internal
// error text is logged, never returned.
func writeAuthError(c *gin.Context, err error) {
	var weak auth.WeakPasswordError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.JSONErrorCode(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
	case errors.Is(err, auth.ErrInvalidMFACode):
		utils.JSONErrorCode(c, http.StatusUnauthorized, "Invalid MFA code", "INVALID_MFA_CODE")
	case errors.Is(err, auth.ErrDeliveryFailure):
		getLogger(c).Warn("Login code delivery failed", zap.Error(err))
		utils.JSONErrorCode(c, http.StatusServiceUnavailable, "Failed to send OTP", "DELIVERY_FAILED")
	case errors.As(err, &weak):
		utils.JSONErrorCode(c, http.StatusBadRequest, weak.Reason, "WEAK_PASSWORD")
	case errors.Is(err, auth.ErrEmailTaken):
		utils.JSONErrorCode(c, http.StatusBadRequest, "Email already registered", "EMAIL_TAKEN")
	case errors.Is(err, auth.ErrAdminRegistration):
		utils.JSONErrorCode(c, http.StatusForbidden, "Admin account cannot be registered.", "FORBIDDEN")
	case errors.Is(err, auth.ErrAdminUnsupported):
		utils.JSONErrorCode(c, http.StatusForbidden, "Not available for the admin account", "FORBIDDEN")
	case errors.Is(err, auth.ErrNoPendingEnrollment):
		utils.JSONErrorCode(c, http.StatusBadRequest, "MFA setup not initiated", "MFA_NOT_INITIATED")
	case errors.Is(err, auth.ErrMFANotEnabled):
		utils.JSONErrorCode(c, http.StatusBadRequest, "Enable MFA first", "MFA_NOT_ENABLED")
	case errors.Is(err, auth.ErrInvalidResetToken):
		utils.JSONErrorCode(c, http.StatusBadRequest, "Invalid or expired token", "INVALID_RESET_TOKEN")
	case errors.Is(err, auth.ErrUserNotFound):
		utils.JSONErrorCode(c, http.StatusNotFound, "User not found", "NOT_FOUND")
	case errors.Is(err, utils.ErrTokenExpired):
		utils.JSONErrorCode(c, http.StatusUnauthorized, "Refresh token expired", "TOKEN_EXPIRED")
	case errors.Is(err, utils.ErrTokenInvalid):
		utils.JSONErrorCode(c, http.StatusUnauthorized, "Invalid refresh token", "TOKEN_INVALID")
	default:
		writeServerError(c, err)
	}
}

func writeBookingError(c *gin.Context, err error) {
	var spots *booking.InsufficientSpotsError
	var invalid *booking.ValidationError
	switch {
	case errors.As(err, &spots):
		utils.JSONErrorCode(c, http.StatusBadRequest, spots.Error(), "INSUFFICIENT_SPOTS")
	case errors.As(err, &invalid):
		utils.JSONErrorCode(c, http.StatusBadRequest, invalid.Message, "VALIDATION_ERROR")
	case errors.Is(err, booking.ErrBookingNotFound):
		utils.JSONErrorCode(c, http.StatusNotFound, "Booking not found", "NOT_FOUND")
	case errors.Is(err, booking.ErrPackageNotFound):
		utils.JSONErrorCode(c, http.StatusNotFound, "Tour package not found or inactive", "NOT_FOUND")
	case errors.Is(err, booking.ErrForbidden):
		utils.JSONErrorCode(c, http.StatusForbidden, "Not authorized to access this booking", "FORBIDDEN")
	case errors.Is(err, booking.ErrInvalidStatus):
		utils.JSONErrorCode(c, http.StatusBadRequest, "Invalid status", "VALIDATION_ERROR")
	case errors.Is(err, booking.ErrInvalidTransition):
		utils.JSONErrorCode(c, http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, booking.ErrConflict):
		utils.JSONErrorCode(c, http.StatusConflict, "Booking was modified, please retry", "CONFLICT")
	default:
		writeServerError(c, err)
	}
}

func writePackageError(c *gin.Context, err error) {
	var invalid *tourpackage.ValidationError
	switch {
	case errors.As(err, &invalid):
		utils.JSONErrorCode(c, http.StatusBadRequest, invalid.Message, "VALIDATION_ERROR")
	case errors.Is(err, tourpackage.ErrNotFound):
		utils.JSONErrorCode(c, http.StatusNotFound, "Package not found", "NOT_FOUND")
	case errors.Is(err, tourpackage.ErrInactive):
		utils.JSONErrorCode(c, http.StatusNotFound, "Package is no longer available", "INACTIVE_PACKAGE")
	default:
		writeServerError(c, err)
	}
}

func writeServerError(c *gin.Context, err error) {
	getLogger(c).Error("Request failed", zap.Error(err))
	utils.JSONErrorCode(c, http.StatusInternalServerError, "Internal server error", "SERVER_ERROR")
}

func badRequest(c *gin.Context, err error) {
	getLogger(c).Debug("Invalid request body", zap.Error(err))
	utils.JSONErrorCode(c, http.StatusBadRequest, "Invalid request", "VALIDATION_ERROR")
}
