package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"strappon/internal/services"
)

// GET /api/payments/balance
func (h Handler) GetBalance(c *gin.Context) {
	b, err := h.payments(c).Balance(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/payments
func (h Handler) GetStatement(c *gin.Context) {
	list, err := h.payments(c).Statement(c.Request.Context(), caller(c), pageFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type topUpRequest struct {
	UserID  string `json:"user_id"`
	Credits int64  `json:"credits"`
}

// POST /api/payments/top-up (admin only)
func (h Handler) TopUp(c *gin.Context) {
	var req topUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.payments(c).TopUp(c.Request.Context(), caller(c), req.UserID, req.Credits)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/payments/statement.pdf
func (h Handler) DriverStatementPDF(c *gin.Context) {
	pdf, filename, err := h.docs(c).DriverStatement(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename)
}

// POST /api/promo-codes
func (h Handler) CreatePromoCode(c *gin.Context) {
	var in services.PromoCodeInput
	if !BindJSONOrError(c, &in) {
		return
	}
	pc, err := h.promos(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pc)
}

type redeemRequest struct {
	Name string `json:"name"`
}

// POST /api/promo-codes/redeem
func (h Handler) RedeemPromoCode(c *gin.Context) {
	var req redeemRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	upc, err := h.promos(c).Redeem(c.Request.Context(), caller(c), req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, upc)
}
