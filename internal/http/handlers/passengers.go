package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"strappon/internal/domain/models"
)

// POST /api/passengers
func (h Handler) AddPassenger(c *gin.Context) {
	var in models.PassengerInput
	if !BindJSONOrError(c, &in) {
		return
	}
	p, err := h.passengers(c).Add(c.Request.Context(), caller(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/passengers lists the waiting passengers priced for the caller's
// driver.
func (h Handler) ListPassengers(c *gin.Context) {
	list, err := h.passengers(c).ListForDriver(c.Request.Context(), caller(c), pageFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/passengers/active
func (h Handler) ListActivePassengers(c *gin.Context) {
	list, err := h.passengers(c).ListActive(c.Request.Context(), pageFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/passengers/me
func (h Handler) GetMyPassenger(c *gin.Context) {
	p, err := h.passengers(c).ActiveByUser(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/passengers/:id
func (h Handler) GetPassenger(c *gin.Context) {
	p, err := h.passengers(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/passengers/:id/copy
func (h Handler) CopyPassenger(c *gin.Context) {
	p, err := h.passengers(c).Copy(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// DELETE /api/passengers/:id
func (h Handler) DeactivatePassenger(c *gin.Context) {
	if err := h.passengers(c).Deactivate(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
