package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/services"
)

type tokenRequest struct {
	FacebookID string `json:"facebook_id"`
	AcsID      string `json:"acs_id"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h Handler) issue(c *gin.Context, status int, u models.User) {
	t, err := h.users(c).RefreshToken(c.Request.Context(), u.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	signed, err := h.Signer.Issue(t)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(status, tokenResponse{Token: signed, User: u})
}

// POST /api/users
func (h Handler) Register(c *gin.Context) {
	var in models.UserInput
	if !BindJSONOrError(c, &in) {
		return
	}
	u, err := h.users(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.issue(c, http.StatusCreated, u)
}

// POST /api/tokens
func (h Handler) Login(c *gin.Context) {
	var req tokenRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.users(c)
	var (
		u   models.User
		err error
	)
	switch {
	case strings.TrimSpace(req.FacebookID) != "":
		u, err = svc.ByFacebookID(c.Request.Context(), req.FacebookID)
	case strings.TrimSpace(req.AcsID) != "":
		u, err = svc.ByAcsID(c.Request.Context(), req.AcsID)
	default:
		err = domain.ValidationError{Field: "facebook_id", Msg: "facebook_id or acs_id required"}
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

// POST /api/tokens/refresh
func (h Handler) Refresh(c *gin.Context) {
	u, err := h.users(c).Get(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.issue(c, http.StatusOK, u)
}

// UserByToken resolves the owner of a stored token for the auth middleware.
func (h Handler) UserByToken(ctx context.Context, tokenID string) (models.User, error) {
	db := h.db()
	svc := services.UserService{
		Users:  repositories.UserRepository{DB: db},
		Tokens: repositories.TokenRepository{DB: db},
		Now:    h.Now,
	}
	return svc.AuthorizedBy(ctx, tokenID)
}
