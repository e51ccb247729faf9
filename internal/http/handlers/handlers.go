package handlers

import (
	"database/sql"
	"strconv"

	"github.com/gin-gonic/gin"

	"strappon/internal/auth"
	intconfig "strappon/internal/config"
	"strappon/internal/domain"
	"strappon/internal/http/middleware"
	"strappon/internal/metrics"
	"strappon/internal/repositories"
	"strappon/internal/services"
)

// Handler carries what the routes need to build per request services.
// A nil DB falls back to the shared connection in config.
type Handler struct {
	DB       *sql.DB
	Counters services.CounterStore
	Metrics  *metrics.Metrics
	Catalog  intconfig.Catalog
	Signer   auth.Signer
	Now      domain.Clock
}

func (h Handler) db() *sql.DB {
	if h.DB != nil {
		return h.DB
	}
	return intconfig.DB
}

func (h Handler) perks(c *gin.Context) services.PerkService {
	db := h.db()
	return services.PerkService{
		DriverPerks:    repositories.PerkRepository{DB: db, Role: domain.RoleDriver},
		PassengerPerks: repositories.PerkRepository{DB: db, Role: domain.RolePassenger},
		Now:            h.Now,
		RequestID:      middleware.GetRequestID(c),
	}
}

func (h Handler) payments(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		Payments:  repositories.PaymentRepository{DB: h.db()},
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) notifications(c *gin.Context) services.NotificationService {
	return services.NotificationService{Store: h.Counters, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) users(c *gin.Context) services.UserService {
	db := h.db()
	return services.UserService{
		Users:     repositories.UserRepository{DB: db},
		Tokens:    repositories.TokenRepository{DB: db},
		Rates:     repositories.RateRepository{DB: db},
		Requests:  repositories.DriveRequestRepository{DB: db},
		Perks:     h.perks(c),
		Payments:  h.payments(c),
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) drivers(c *gin.Context) services.DriverService {
	return services.DriverService{
		Drivers:   repositories.DriverRepository{DB: h.db()},
		Now:       h.Now,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) passengers(c *gin.Context) services.PassengerService {
	db := h.db()
	return services.PassengerService{
		DB:         db,
		Passengers: repositories.PassengerRepository{DB: db},
		Drivers:    repositories.DriverRepository{DB: db},
		Requests:   repositories.DriveRequestRepository{DB: db},
		Perks:      h.perks(c),
		Now:        h.Now,
		RequestID:  middleware.GetRequestID(c),
	}
}

func (h Handler) rides(c *gin.Context) services.RideService {
	db := h.db()
	return services.RideService{
		DB:            db,
		Requests:      repositories.DriveRequestRepository{DB: db},
		Drivers:       repositories.DriverRepository{DB: db},
		Passengers:    repositories.PassengerRepository{DB: db},
		Perks:         h.perks(c),
		Payments:      h.payments(c),
		Notifications: h.notifications(c),
		Metrics:       h.Metrics,
		Now:           h.Now,
		RequestID:     middleware.GetRequestID(c),
	}
}

func (h Handler) ratings(c *gin.Context) services.RatingService {
	db := h.db()
	return services.RatingService{
		Rates:      repositories.RateRepository{DB: db},
		Requests:   repositories.DriveRequestRepository{DB: db},
		Drivers:    repositories.DriverRepository{DB: db},
		Passengers: repositories.PassengerRepository{DB: db},
		Now:        h.Now,
		RequestID:  middleware.GetRequestID(c),
	}
}

func (h Handler) promos(c *gin.Context) services.PromoService {
	db := h.db()
	return services.PromoService{
		DB:         db,
		PromoCodes: repositories.PromoCodeRepository{DB: db},
		Payments:   repositories.PaymentRepository{DB: db},
		Metrics:    h.Metrics,
		Now:        h.Now,
		RequestID:  middleware.GetRequestID(c),
	}
}

func (h Handler) docs(c *gin.Context) services.DocsService {
	db := h.db()
	return services.DocsService{
		Requests:   repositories.DriveRequestRepository{DB: db},
		Drivers:    repositories.DriverRepository{DB: db},
		Passengers: repositories.PassengerRepository{DB: db},
		Payments:   repositories.PaymentRepository{DB: db},
		Now:        h.Now,
		RequestID:  middleware.GetRequestID(c),
	}
}

func pageFrom(c *gin.Context) domain.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return domain.Page{Limit: limit, Offset: offset}.Normalize()
}
