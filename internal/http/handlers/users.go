package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"strappon/internal/domain/models"
)

// GET /api/users/me
func (h Handler) GetMe(c *gin.Context) {
	p, err := h.users(c).PrivateProfile(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/users/me
func (h Handler) UpdateMe(c *gin.Context) {
	var in models.UserInput
	if !BindJSONOrError(c, &in) {
		return
	}
	u, err := h.users(c).Update(c.Request.Context(), caller(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /api/users/me
func (h Handler) DeleteMe(c *gin.Context) {
	if err := h.users(c).Delete(c.Request.Context(), caller(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/users/:id
func (h Handler) GetUser(c *gin.Context) {
	p, err := h.users(c).PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
