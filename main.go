package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"strappon/internal/auth"
	intconfig "strappon/internal/config"
	intdb "strappon/internal/db"
	router "strappon/internal/http"
	h "strappon/internal/http/handlers"
	"strappon/internal/metrics"
	"strappon/internal/repositories"
	"strappon/internal/services"
	"strappon/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()
	utils.SetupLogger(os.Stdout, env.LogLevel)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	log := utils.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer intconfig.CloseDB()

	created, err := intdb.EnsureSchema(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}
	if len(created) > 0 {
		utils.LogEvent("", "db", "schema", "created tables: "+strings.Join(created, ", "))
	}

	perks := services.PerkService{
		DriverPerks:    repositories.PerkRepository{DB: db},
		PassengerPerks: repositories.PerkRepository{DB: db},
	}
	if err := perks.EnsureStandard(ctx); err != nil {
		log.Fatal().Err(err).Msg("standard perks setup failed")
	}

	catalog, err := intconfig.LoadCatalog(env.RegionsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog load failed")
	}

	handler := h.Handler{
		DB:      db,
		Catalog: catalog,
		Signer:  auth.NewSigner(env.JWTSecret, 0),
	}

	rdb, err := intconfig.ConnectRedis(ctx, env.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	if rdb != nil {
		defer rdb.Close()
		handler.Counters = services.RedisCounters{Client: rdb}
	} else {
		log.Warn().Msg("REDIS_URL not set, notification counters disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	handler.Metrics = metrics.New(reg)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(env, handler, reg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", env.AppAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
