package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kindleapp/kindle-api/internal/auth"
	"github.com/kindleapp/kindle-api/internal/config"
	"github.com/kindleapp/kindle-api/internal/database"
	"github.com/kindleapp/kindle-api/internal/handler"
	"github.com/kindleapp/kindle-api/internal/queue"
	"github.com/kindleapp/kindle-api/internal/router"
	"github.com/kindleapp/kindle-api/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	codec := token.NewCodec(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	svc := auth.NewService(db, codec, cfg.BcryptCost)
	events := queue.NewPublisher(cfg.AMQPURL)

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartUserEventConsumer(cfg.AMQPURL); err != nil {
				log.Printf("user-events consumer: %v", err)
			}
		}()
	}

	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(svc, events, cfg.CookieSecure, cfg.CookieDomain),
		Users:     handler.NewUserHandler(svc, svc.Users(), svc.Photos(), svc.Links(), events, cacheCfg, rdb),
		Admin:     handler.NewAdminHandler(svc.Users(), events),
		RDB:       rdb,
		RateLimit: rlCfg,
		Cache:     cacheCfg,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
