package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"foodai-backend/config"
	"foodai-backend/internal/ai"
	"foodai-backend/internal/analytics"
	"foodai-backend/internal/api"
	"foodai-backend/internal/booking"
	"foodai-backend/internal/db"
	"foodai-backend/internal/demand"
	"foodai-backend/internal/logger"
	"foodai-backend/internal/mw"
	"foodai-backend/internal/notification"
	"foodai-backend/internal/observability"
	"foodai-backend/internal/store"
	"foodai-backend/internal/supabase"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("configuration loaded", "path", configPath, "driver", cfg.Database.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", "error", err)
	}

	appStore, err := newStore(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize data store", "error", err)
	}
	log.Info("data store initialized")

	models, closeModels, err := newModelStore(ctx, cfg.Model)
	if err != nil {
		log.Fatal("failed to initialize model store", "error", err)
	}
	defer closeModels()

	aiSvc := ai.NewService(appStore, models, ai.TrainConfig{
		MinRows:   cfg.Model.MinTrainingRows,
		NumTrees:  cfg.Model.NumTrees,
		MaxDepth:  cfg.Model.MaxDepth,
		Seed:      cfg.Model.Seed,
		TestRatio: cfg.Model.TestRatio,
	}, log)
	if err := aiSvc.Restore(ctx); err != nil {
		log.Warn("failed to restore persisted model", "error", err)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		log.Warn("VAPID keys not configured, push notifications disabled")
	}

	emailClient := notification.NewEmailClient(cfg.Email.APIURL, time.Duration(cfg.Email.TimeoutSeconds)*time.Second)
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, emailClient, webpushOptions, log)
	pool.Start(ctx)

	bookingSvc := booking.NewService(appStore, pool, booking.Rules{
		Location:       cfg.Booking.Location(),
		OpenHour:       cfg.Booking.OpenHour,
		CloseHour:      cfg.Booking.CloseHour,
		MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
		MinLead:        time.Duration(cfg.Booking.MinLeadHours) * time.Hour,
		SlotCapacity:   cfg.Booking.SlotCapacity,
	}, log)

	handler := api.NewHandler(api.Deps{
		Store:     appStore,
		AI:        aiSvc,
		Analytics: analytics.NewService(appStore, log),
		Booking:   bookingSvc,
		Demand: demand.Coefficients{
			Base:              cfg.Demand.Base,
			DayPenalty:        cfg.Demand.DayPenalty,
			HolidayMultiplier: cfg.Demand.HolidayMultiplier,
			ReferenceTempC:    cfg.Demand.ReferenceTempC,
			TempSlope:         cfg.Demand.TempSlope,
		},
		Email:   emailClient,
		Webpush: webpushOptions,
		Log:     log,
	})

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, 10*time.Minute)
	go sweepLimiter(ctx, limiter, log)

	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}
	router := api.NewRouter(handler, api.RouterConfig{
		ServiceName: serviceName,
		CacheTTL:    cfg.Server.CacheTTL(),
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server ListenAndServe", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown", "error", err)
	}
	cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown", "error", err)
	}

	log.Info("server gracefully stopped")
}

func newStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		gormDB, err := db.Init(&cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(gormDB), nil
	default:
		client, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.Key,
			supabase.WithSchema(cfg.Supabase.Schema),
			supabase.WithTimeout(cfg.Supabase.Timeout()),
			supabase.WithPageSize(cfg.Supabase.PageSize),
		)
		if err != nil {
			return nil, err
		}
		return store.NewRESTStore(client), nil
	}
}

func newModelStore(ctx context.Context, cfg config.ModelConfig) (ai.ModelStore, func(), error) {
	switch cfg.Store {
	case "file":
		return ai.FileStore{Path: cfg.Path}, func() {}, nil
	case "redis":
		rs, err := ai.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return ai.MemoryStore{}, func() {}, nil
	}
}

func sweepLimiter(ctx context.Context, limiter *mw.IPRateLimiter, log *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := limiter.Sweep(now); n > 0 {
				log.Debug("rate limiter visitors evicted", "count", n, "remaining", limiter.Len())
			}
		}
	}
}
