package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tripplanner-backend/config"
	"tripplanner-backend/database"
	"tripplanner-backend/handlers"
	"tripplanner-backend/logging"
	"tripplanner-backend/middleware"
	"tripplanner-backend/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, strings.EqualFold(cfg.LogLevel, "debug"))
	if err != nil {
		slog.Error("Database unavailable", "error", err)
		os.Exit(1)
	}
	store := database.NewStore(db)

	// Connect to Redis (optional, won't crash if unavailable)
	var cache services.SummaryCache
	if rdb := database.ConnectRedis(ctx, cfg.RedisURL); rdb != nil {
		defer rdb.Close()
		cache = database.NewSummaryCache(rdb, cfg.SummaryCacheTTL)
	}

	// Notification channels are optional too
	var push services.PushSender
	if cfg.FirebaseCredPath != "" {
		client, err := services.NewPushClient(ctx, cfg.FirebaseCredPath)
		if err != nil {
			slog.Warn("Push notifications disabled", "error", err)
		} else {
			push = client
		}
	}
	notifier := services.NewNotificationService(store, services.NewEmailClient(cfg.SendGridAPIKey), push, cfg.SendGridFrom, cfg.AppName)

	gate := services.NewAuthorizationGate(store)
	expenses := services.NewExpenseService(services.ExpenseDeps{
		Repo:     store,
		Plans:    store,
		Members:  store,
		Users:    store,
		Gate:     gate,
		Notifier: notifier,
		Cache:    cache,
	})
	summaries := services.NewSummaryAggregator(store, gate, store, services.NewSettlementEngine(store, store), cache)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.AppName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(cfg.JWTSecret))
	handlers.New(expenses, summaries).Register(api)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "service", cfg.AppName, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	notifier.Wait()
}
