package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
)

func roleParam(c *gin.Context) (domain.Role, bool) {
	switch c.Param("role") {
	case "driver":
		return domain.RoleDriver, true
	case "passenger":
		return domain.RolePassenger, true
	}
	respondError(c, http.StatusNotFound, "not_found", "unknown perk side "+c.Param("role"), nil)
	return "", false
}

func viewGrants(grants []models.PerkGrant) []models.PerkGrantView {
	out := make([]models.PerkGrantView, 0, len(grants))
	for _, g := range grants {
		out = append(out, domain.ViewGrant(g))
	}
	return out
}

// GET /api/perks/:role/eligible
func (h Handler) EligiblePerks(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	grants, err := h.perks(c).Eligible(c.Request.Context(), caller(c), role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewGrants(grants))
}

// GET /api/perks/:role/active
func (h Handler) ActivePerks(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	grants, err := h.perks(c).Active(c.Request.Context(), caller(c), role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewGrants(grants))
}

// POST /api/perks/:role
func (h Handler) CreatePerk(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	var in models.Perk
	if !BindJSONOrError(c, &in) {
		return
	}
	p, err := h.perks(c).Create(c.Request.Context(), role, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
