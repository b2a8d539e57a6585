package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/config"
	"github.com/adotai/adotai-backend/internal/database"
	"github.com/adotai/adotai-backend/internal/handler"
	"github.com/adotai/adotai-backend/internal/middleware"
	"github.com/adotai/adotai-backend/internal/queue"
	"github.com/adotai/adotai-backend/internal/repository"
	"github.com/adotai/adotai-backend/internal/router"
	"github.com/adotai/adotai-backend/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	tokens := repository.NewTokenRepo(db)
	animals := repository.NewAnimalRepo(db)
	requests := repository.NewAdoptionRequestRepo(db)
	conversations := repository.NewConversationRepo(db)
	messages := repository.NewMessageRepo(db)
	reports := repository.NewReportRepo(db)

	// Probe the denormalized listing view once; the browse queries fall
	// back to an explicit join when it is absent.
	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	animals.ProbeListingView(probeCtx)
	cancel()

	// Photo storage is optional; without a bucket the upload endpoints
	// answer 503.
	upCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	uploads, err := storage.NewUploader(upCtx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBase)
	cancel()
	if err != nil {
		log.Printf("storage: uploads disabled: %v", err)
	}

	// Notification consumer for adoption.approved events. Runs until
	// the process exits, reconnecting with backoff.
	go func() {
		if err := queue.StartAdoptionConsumer(); err != nil {
			log.Printf("queue: consumer stopped: %v", err)
		}
	}()

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, profiles, tokens)
	animalH := handler.NewAnimalHandler(animals)
	profileH := handler.NewProfileHandler(profiles, uploads)
	advertiserH := handler.NewAdvertiserHandler(profiles, animals, requests, uploads)
	adopterH := handler.NewAdopterHandler(profiles, requests)
	conversationH := handler.NewConversationHandler(profiles, animals, conversations, messages)
	chatH := handler.NewChatHandler(profiles, conversations, messages)
	reportH := handler.NewReportHandler(profiles, reports)
	adminH := handler.NewAdminHandler(users, profiles, animals, requests, reports)
	readyH := handler.NewReadyHandler(db)

	e := echo.New()
	e.HideBanner = true

	// Redis is optional; without it the browse endpoints run uncached
	// and unthrottled.
	var browseMWs []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		browseMWs = append(browseMWs,
			middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
			middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		)
	}

	router.RegisterRoutes(e, readyH)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, animalH, profileH, browseMWs...)
	router.RegisterUser(e, profileH, conversationH, chatH, reportH, cfg.JWTSecret)
	router.RegisterAdopter(e, adopterH, cfg.JWTSecret)
	router.RegisterAdvertiser(e, advertiserH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
