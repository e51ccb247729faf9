package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type offerRequest struct {
	PassengerID       string     `json:"passenger_id" binding:"required"`
	OfferedPickupTime *time.Time `json:"offered_pickup_time"`
}

type driverRef struct {
	DriverID string `json:"driver_id" binding:"required"`
}

type passengerRef struct {
	PassengerID string `json:"passenger_id" binding:"required"`
}

// POST /api/rides/offer
func (h Handler) OfferRide(c *gin.Context) {
	var req offerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	ride, err := h.rides(c).Offer(c.Request.Context(), caller(c), req.PassengerID, req.OfferedPickupTime)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ride)
}

// POST /api/rides/accept
func (h Handler) AcceptRide(c *gin.Context) {
	var req driverRef
	if !BindJSONOrError(c, &req) {
		return
	}
	ride, err := h.rides(c).Accept(c.Request.Context(), caller(c), req.DriverID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

// POST /api/rides/cancel/driver
func (h Handler) CancelRideByDriver(c *gin.Context) {
	var req passengerRef
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.rides(c).CancelByDriver(c.Request.Context(), caller(c), req.PassengerID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/rides/cancel/passenger
func (h Handler) CancelRideByPassenger(c *gin.Context) {
	var req driverRef
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.rides(c).CancelByPassenger(c.Request.Context(), caller(c), req.DriverID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/rides/complete
func (h Handler) CompleteRide(c *gin.Context) {
	out, err := h.rides(c).Complete(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/rides
func (h Handler) ListActiveRides(c *gin.Context) {
	list, err := h.rides(c).ListActive(c.Request.Context(), pageFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/rides/driver
func (h Handler) ListDriverRides(c *gin.Context) {
	list, err := h.rides(c).ActiveForDriver(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/rides/passenger
func (h Handler) ListPassengerRides(c *gin.Context) {
	list, err := h.rides(c).ActiveForPassenger(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/rides/unrated
func (h Handler) ListUnratedRides(c *gin.Context) {
	list, err := h.rides(c).Unrated(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/rides/:id
func (h Handler) GetRide(c *gin.Context) {
	ride, err := h.rides(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

type rateRequest struct {
	Stars int `json:"stars"`
}

// POST /api/rides/:id/rate
func (h Handler) RateRide(c *gin.Context) {
	var req rateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rate, err := h.ratings(c).Rate(c.Request.Context(), caller(c), c.Param("id"), req.Stars)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rate)
}

// GET /api/rides/:id/receipt
func (h Handler) RideReceipt(c *gin.Context) {
	pdf, filename, err := h.docs(c).RideReceipt(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename)
}
