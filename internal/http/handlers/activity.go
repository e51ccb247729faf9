package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"strappon/internal/http/middleware"
	"strappon/internal/repositories"
	"strappon/internal/services"
)

const maxTraceBody = 1 << 20

type positionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// POST /api/positions
func (h Handler) UpdatePosition(c *gin.Context) {
	var req positionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := services.PositionService{
		Positions: repositories.PositionRepository{DB: h.db()},
		Regions:   h.Catalog.Regions,
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
	pos, err := svc.Update(c.Request.Context(), caller(c), req.Latitude, req.Longitude)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

// POST /api/traces takes the raw JSON array sent by the apps.
func (h Handler) StoreTraces(c *gin.Context) {
	blob, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTraceBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "cannot read body", err.Error())
		return
	}
	svc := services.TraceService{
		Traces:    repositories.TraceRepository{DB: h.db()},
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
	traces, err := svc.Store(c.Request.Context(), caller(c), blob)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": len(traces)})
}

type feedbackRequest struct {
	Message string `json:"message"`
}

// POST /api/feedbacks
func (h Handler) SendFeedback(c *gin.Context) {
	var req feedbackRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := services.FeedbackService{
		Feedbacks: repositories.FeedbackRepository{DB: h.db()},
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
	fb, err := svc.Send(c.Request.Context(), caller(c), req.Message)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// GET /api/notifications
func (h Handler) GetNotifications(c *gin.Context) {
	n, err := h.notifications(c).Count(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// DELETE /api/notifications
func (h Handler) ResetNotifications(c *gin.Context) {
	if err := h.notifications(c).Reset(c.Request.Context(), caller(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/pois
func (h Handler) ListPOIs(c *gin.Context) {
	c.JSON(http.StatusOK, services.POIService{POIs: h.Catalog.POIs, Now: h.Now}.Active())
}
