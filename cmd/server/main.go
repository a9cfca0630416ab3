package main

import (
	"log"

	redisv9 "github.com/redis/go-redis/v9"

	"checkin_backend/internal/app/router"
	adminadapters "checkin_backend/internal/feature/admin/adapters"
	adminhandler "checkin_backend/internal/feature/admin/transport/handler"
	adminusecase "checkin_backend/internal/feature/admin/usecase"
	checkinadapters "checkin_backend/internal/feature/checkin/adapters"
	checkinhandler "checkin_backend/internal/feature/checkin/transport/handler"
	checkinusecase "checkin_backend/internal/feature/checkin/usecase"
	identityadapters "checkin_backend/internal/feature/identity/adapters"
	identityhandler "checkin_backend/internal/feature/identity/transport/handler"
	identityusecase "checkin_backend/internal/feature/identity/usecase"
	"checkin_backend/internal/platform/cache"
	"checkin_backend/internal/platform/config"
	infradb "checkin_backend/internal/platform/db"
	jwtmw "checkin_backend/internal/platform/jwt"
	infraredis "checkin_backend/internal/platform/redis"
	"checkin_backend/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// db
	db := infradb.OpenDB(cfg.DB, cfg.RunMigrations)

	// Redis: the analytics cache degrades gracefully without it
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
		log.Println("[WARN] Redis unavailable. Running without the analytics cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	identityRepo := identityadapters.NewIdentityGorm(db)
	visitRepo := checkinadapters.NewVisitGorm(db)
	analyticsRepo := adminadapters.NewAnalyticsGorm(db)

	// Usecase
	identityUC := identityusecase.NewIdentityUsecase(identityRepo, visitRepo)
	checkinUC := checkinusecase.NewCheckinUsecase(visitRepo, identityRepo, identityUC)
	adminUC := adminusecase.NewAdminUsecase(analyticsRepo, identityRepo)

	// The dashboard summary is served through the Redis cache decorator
	cachedSummaries := cache.NewCachingSummaryProvider(rdb, 0, adminUC, "")

	// Handler
	tokens := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.TTL)
	identityH := identityhandler.NewIdentityHandler(identityUC)
	checkinH := checkinhandler.NewCheckinHandler(checkinUC)
	adminH := adminhandler.NewAdminHandler(cachedSummaries, adminUC, tokens, cfg.AdminPassword)

	// Lookup rate limit
	lookupLimiter := ratelimiter.NewFixedWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window)

	r := router.NewRouter(identityH, checkinH, adminH, lookupLimiter)

	if cfg.JWT.Secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Admin routes will reject every token.")
	}
	if cfg.AdminPassword == "" {
		log.Println("[WARN] ADMIN_PASSWORD is not set. Admin login is disabled.")
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
