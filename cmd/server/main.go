package main

import (
	"log"
	"net/http"
	"time"

	"oakfire-be/internal/addon"
	"oakfire-be/internal/config"
	"oakfire-be/internal/db"
	"oakfire-be/internal/fulfillment"
	"oakfire-be/internal/httpapi"
	"oakfire-be/internal/kvstore"
	"oakfire-be/internal/logger"
	"oakfire-be/internal/metrics"
	"oakfire-be/internal/middleware"
	"oakfire-be/internal/notify"
	"oakfire-be/internal/payment"
	"oakfire-be/internal/quote"
	"oakfire-be/internal/user"

	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	// Redis backs the idempotency fast path and single-use token markers.
	// Without an address the in-memory store keeps a single node working.
	var store kvstore.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		store = kvstore.NewRedisStore(client)
	} else {
		log.Println("REDIS_ADDR not set, using in-memory key-value store")
		store = kvstore.NewMemoryStore()
	}

	addonRepo := addon.NewRepository(database)
	addonSvc := addon.NewService(addonRepo)

	pricing := quote.PricingConfig{
		TaxRateBps:           int64(cfg.TaxRateBps),
		DepositPercent:       int64(cfg.DepositPercent),
		DeliveryBaseCents:    quote.DefaultPricingConfig().DeliveryBaseCents,
		DeliveryPerMileCents: quote.DefaultPricingConfig().DeliveryPerMileCents,
	}
	quoteRepo := quote.NewRepository(database)
	quoteSvc := quote.NewService(quoteRepo, addonSvc, pricing)

	gateway := fulfillment.NewMedusaGateway(cfg.MedusaBaseURL, cfg.MedusaAPIKey)
	notifier := notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	tokens := payment.NewTokenIssuer(cfg.BalanceTokenSecret, time.Duration(cfg.BalanceTokenTTLH)*time.Hour)
	paymentMetrics := metrics.NewPaymentMetrics()

	paymentSvc := payment.NewService(
		quoteRepo,
		payment.NewAttemptRepository(database),
		gateway,
		tokens,
		notifier,
		store,
		paymentMetrics,
		cfg.PublicBaseURL,
	)

	auth := user.NewAuthenticator(cfg.JWTSecret, 24*time.Hour)
	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, auth)

	mux := httpapi.NewRouter(httpapi.Handlers{
		Payments: httpapi.NewPaymentHandler(paymentSvc),
		Quotes:   httpapi.NewQuoteHandler(quoteSvc),
		Addons:   httpapi.NewAddonHandler(addonSvc),
		Auth:     httpapi.NewAuthHandler(userSvc),
	})

	limiter := middleware.NewRateLimiter()

	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.AdminAuth(auth)(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)

	log.Printf("catering API listening on :%s", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, handler))
}
