package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"strappon/internal/domain/models"
)

// POST /api/drivers
func (h Handler) AddDriver(c *gin.Context) {
	var in models.DriverInput
	if !BindJSONOrError(c, &in) {
		return
	}
	d, err := h.drivers(c).Add(c.Request.Context(), caller(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GET /api/drivers?region=milan
func (h Handler) ListDrivers(c *gin.Context) {
	list, err := h.drivers(c).ListUnhidden(c.Request.Context(), strings.TrimSpace(c.Query("region")), pageFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/drivers/hidden
func (h Handler) ListHiddenDrivers(c *gin.Context) {
	list, err := h.drivers(c).ListHidden(c.Request.Context(), pageFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/drivers/me
func (h Handler) GetMyDriver(c *gin.Context) {
	d, err := h.drivers(c).ActiveByUser(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/drivers/:id
func (h Handler) GetDriver(c *gin.Context) {
	d, err := h.drivers(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// PUT /api/drivers/:id
func (h Handler) UpdateDriver(c *gin.Context) {
	var in models.DriverInput
	if !BindJSONOrError(c, &in) {
		return
	}
	d, err := h.drivers(c).Update(c.Request.Context(), caller(c), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// POST /api/drivers/:id/hide
func (h Handler) HideDriver(c *gin.Context) {
	if err := h.drivers(c).Hide(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/drivers/:id/unhide
func (h Handler) UnhideDriver(c *gin.Context) {
	if err := h.drivers(c).Unhide(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/drivers/:id
func (h Handler) DeactivateDriver(c *gin.Context) {
	if err := h.drivers(c).Deactivate(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
