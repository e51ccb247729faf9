package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	intconfig "strappon/internal/config"
	h "strappon/internal/http/handlers"
	"strappon/internal/http/middleware"
	"strappon/internal/utils"
)

// NewRouter mounts every route under /api. Metrics are served from gatherer
// at /metrics when it is not nil.
func NewRouter(env intconfig.Env, handler h.Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogError("", "http", "trusted_proxies", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", handler.DBCheck)
		api.GET("/routes", h.Routes)
		api.GET("/pois", handler.ListPOIs)

		api.POST("/users", handler.Register)
		api.POST("/tokens", handler.Login)
	}

	authed := api.Group("", middleware.Auth(handler.Signer, handler.UserByToken))
	{
		authed.POST("/tokens/refresh", handler.Refresh)

		users := authed.Group("/users")
		users.GET("/me", handler.GetMe)
		users.PUT("/me", handler.UpdateMe)
		users.DELETE("/me", handler.DeleteMe)
		users.GET("/:id", handler.GetUser)

		drivers := authed.Group("/drivers")
		drivers.GET("", handler.ListDrivers)
		drivers.POST("", handler.AddDriver)
		drivers.GET("/hidden", handler.ListHiddenDrivers)
		drivers.GET("/me", handler.GetMyDriver)
		drivers.GET("/:id", handler.GetDriver)
		drivers.PUT("/:id", handler.UpdateDriver)
		drivers.DELETE("/:id", handler.DeactivateDriver)
		drivers.POST("/:id/hide", handler.HideDriver)
		drivers.POST("/:id/unhide", handler.UnhideDriver)

		passengers := authed.Group("/passengers")
		passengers.GET("", handler.ListPassengers)
		passengers.POST("", handler.AddPassenger)
		passengers.GET("/active", handler.ListActivePassengers)
		passengers.GET("/me", handler.GetMyPassenger)
		passengers.GET("/:id", handler.GetPassenger)
		passengers.DELETE("/:id", handler.DeactivatePassenger)
		passengers.POST("/:id/copy", handler.CopyPassenger)

		rides := authed.Group("/rides")
		rides.GET("", handler.ListActiveRides)
		rides.POST("/offer", handler.OfferRide)
		rides.POST("/accept", handler.AcceptRide)
		rides.POST("/cancel/driver", handler.CancelRideByDriver)
		rides.POST("/cancel/passenger", handler.CancelRideByPassenger)
		rides.POST("/complete", handler.CompleteRide)
		rides.GET("/driver", handler.ListDriverRides)
		rides.GET("/passenger", handler.ListPassengerRides)
		rides.GET("/unrated", handler.ListUnratedRides)
		rides.GET("/:id", handler.GetRide)
		rides.POST("/:id/rate", handler.RateRide)
		rides.GET("/:id/receipt", handler.RideReceipt)

		perks := authed.Group("/perks")
		perks.GET("/:role/eligible", handler.EligiblePerks)
		perks.GET("/:role/active", handler.ActivePerks)
		perks.POST("/:role", middleware.RequireAdmin(env.AdminUserIDs...), handler.CreatePerk)

		payments := authed.Group("/payments")
		payments.GET("", handler.GetStatement)
		payments.GET("/balance", handler.GetBalance)
		payments.POST("/top-up", middleware.RequireAdmin(env.AdminUserIDs...), handler.TopUp)
		payments.GET("/statement.pdf", handler.DriverStatementPDF)

		promos := authed.Group("/promo-codes")
		promos.POST("/redeem", handler.RedeemPromoCode)
		promos.POST("", middleware.RequireAdmin(env.AdminUserIDs...), handler.CreatePromoCode)

		authed.POST("/positions", handler.UpdatePosition)
		authed.POST("/traces", handler.StoreTraces)
		authed.POST("/feedbacks", handler.SendFeedback)
		authed.GET("/notifications", handler.GetNotifications)
		authed.DELETE("/notifications", handler.ResetNotifications)
	}

	h.SetRouter(r)
	return r
}
