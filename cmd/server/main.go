package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/api"
	"github.com/0xDyno/healthy-blend/internal/api/handler"
	"github.com/0xDyno/healthy-blend/internal/api/middleware"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/cache"
	"github.com/0xDyno/healthy-blend/pkg/database"
	"github.com/0xDyno/healthy-blend/pkg/logger"
	"github.com/0xDyno/healthy-blend/pkg/tracing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// @title Healthy Blend API
// @version 1.0
// @description Restaurant ordering and checkout service
// @BasePath /api/v1
func main() {
	cfg := must(config.Load())

	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		}); err != nil {
			panic(err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing := must(tracing.Init(cfg))
	defer shutdownTracing(context.Background())

	db := must(database.InitDB(cfg))

	// redis 可选：没有 redis 时菜单缓存与限流退化为本地实现
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = must(cache.NewRedis(cfg))
	}

	// repositories
	userRepo := repository.NewUserRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	productRepo := repository.NewProductRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// services
	validator := service.NewCartValidator(productRepo, ingredientRepo, settingRepo, cfg.Checkout)
	gate := service.NewPolicyGate(settingRepo, promoRepo, cfg.Checkout, nil)
	checkoutSvc := service.NewCheckoutService(db, validator, gate,
		productRepo, orderRepo, promoRepo, historyRepo, cfg.Checkout, nil)
	orderSvc := service.NewOrderService(db, orderRepo, historyRepo, settingRepo, nil)
	menuSvc := service.NewMenuService(productRepo, ingredientRepo, redisClient)
	promoSvc := service.NewPromoService(promoRepo, nil)
	catalogSvc := service.NewCatalogService(db, productRepo, ingredientRepo, menuSvc)
	authSvc := service.NewAuthService(userRepo, cfg.Auth)

	h := handler.New(checkoutSvc, orderSvc, menuSvc, promoSvc, catalogSvc, authSvc, cfg.Checkout)
	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.Enabled)
	router := api.NewRouter(cfg, h, authSvc, limiter)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
