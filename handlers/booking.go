package handlers

import (
	"net/http"

	"bhutantours/middleware"
	"bhutantours/models"
	"bhutantours/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves /api/bookings.
type BookingHandler struct {
	Bookings booking.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: svc}
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		UserID: c.GetString(middleware.CtxUserID),
		Email:  c.GetString(middleware.CtxEmail),
		Role:   c.GetString(middleware.CtxRole),
	}
}

// CreateBookingHandler books a tour for the caller.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Bookings.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	getLogger(c).Info("Booking created", zap.String("bookingID", resp.ID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Booking created successfully", "data": resp})
}

// MyBookingsHandler lists the caller's bookings.
func (h *BookingHandler) MyBookingsHandler(c *gin.Context) {
	list, err := h.Bookings.ListMine(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

// AllBookingsHandler lists every booking. Admin only.
func (h *BookingHandler) AllBookingsHandler(c *gin.Context) {
	list, err := h.Bookings.ListAll(c.Request.Context())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

// GetBookingHandler returns one booking to its owner or an admin.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	resp, err := h.Bookings.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// UpdateStatusHandler moves a booking through its lifecycle. Admin only.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Bookings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking status updated", "data": resp})
}

// CancelBookingHandler cancels and removes a booking, returning its spots.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	if err := h.Bookings.Cancel(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking cancelled successfully"})
}
