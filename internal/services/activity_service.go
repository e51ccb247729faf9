package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

// PositionService stores where users are and in which served region.
type PositionService struct {
	Positions repositories.PositionRepository
	Regions   []domain.Region
	Now       domain.Clock
	RequestID string
}

func (s PositionService) Update(ctx context.Context, userID string, lat, lon float64) (models.UserPosition, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return models.UserPosition{}, domain.ValidationError{Field: "latitude", Msg: "out of range"}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return models.UserPosition{}, domain.ValidationError{Field: "longitude", Msg: "out of range"}
	}
	region, _ := domain.ClosestRegion(s.Regions, lat, lon)
	pos, err := s.Positions.Replace(ctx, models.UserPosition{
		UserID:    userID,
		Region:    region,
		Latitude:  lat,
		Longitude: lon,
	}, nowOf(s.Now))
	if err != nil {
		return models.UserPosition{}, err
	}
	utils.LogEvent(s.RequestID, "position", "update", fmt.Sprintf("user_id=%s region=%q", userID, region))
	return pos, nil
}

func (s PositionService) Latest(ctx context.Context, userID string) (models.UserPosition, error) {
	return s.Positions.Latest(ctx, userID)
}

// TraceService stores client side log lines sent in batches.
type TraceService struct {
	Traces    repositories.TraceRepository
	Now       domain.Clock
	RequestID string
}

func (s TraceService) Store(ctx context.Context, userID string, blob []byte) ([]models.Trace, error) {
	parsed, err := domain.ParseTraces(blob)
	if err != nil {
		return nil, err
	}
	out, err := s.Traces.CreateMany(ctx, userID, parsed, nowOf(s.Now))
	if err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "trace", "store", fmt.Sprintf("user_id=%s count=%d", userID, len(out)))
	return out, nil
}

type FeedbackService struct {
	Feedbacks repositories.FeedbackRepository
	Now       domain.Clock
	RequestID string
}

func (s FeedbackService) Send(ctx context.Context, userID, message string) (models.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Feedback{}, domain.ValidationError{Field: "message", Msg: "required"}
	}
	fb, err := s.Feedbacks.Create(ctx, userID, message, nowOf(s.Now))
	if err != nil {
		return models.Feedback{}, err
	}
	utils.LogEvent(s.RequestID, "feedback", "send", "user_id="+userID)
	return fb, nil
}

// POIService serves the configured points of interest.
type POIService struct {
	POIs []domain.POI
	Now  domain.Clock
}

func (s POIService) Active() []domain.POI {
	return domain.ActivePOIs(s.POIs, nowOf(s.Now))
}
