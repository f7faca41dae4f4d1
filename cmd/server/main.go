package main // Entry point package

import (
	"log" // Logging library
	"os"  // Filesystem access for the public directory

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/zeno-labs/museum-companion/internal/ai"
	"github.com/zeno-labs/museum-companion/internal/config"
	"github.com/zeno-labs/museum-companion/internal/database"
	"github.com/zeno-labs/museum-companion/internal/handler"
	"github.com/zeno-labs/museum-companion/internal/middleware"
	"github.com/zeno-labs/museum-companion/internal/queue"
	"github.com/zeno-labs/museum-companion/internal/repository"
	"github.com/zeno-labs/museum-companion/internal/router"
	"github.com/zeno-labs/museum-companion/internal/ticket"
	"github.com/zeno-labs/museum-companion/internal/webhook"
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

	// Redis is optional: when unreachable the cache and rate limiter
	// turn into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	verifier, err := webhook.NewVerifier(cfg.WebhookSecret)
	if err != nil {
		log.Fatalf("webhook secret: %v", err)
	}

	if err := os.MkdirAll(cfg.PublicDir, 0o755); err != nil {
		log.Fatalf("public dir: %v", err)
	}

	// Repositories over the shared connection pool.
	museums := repository.NewMuseumRepo(db)
	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	dashboard := repository.NewDashboardRepo(db)
	chats := repository.NewChatRepo(db)

	issuer := ticket.NewIssuer(museums, bookings, cfg.PublicBaseURL, cfg.PublicDir)
	assistant := ai.NewAssistant(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	museumH := handler.NewMuseumHandler(museums)
	ticketH := handler.NewTicketHandler(issuer, bookings, users)
	chatH := handler.NewChatHandler(assistant, museums, chats, users, issuer)
	onboardingH := handler.NewOnboardingHandler(museums, users)
	dashboardH := handler.NewDashboardHandler(museums, dashboard)
	webhookH := handler.NewWebhookHandler(verifier, users)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Generated ticket PDFs are served as static files under /public.
	e.Static("/public", cfg.PublicDir)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterRoutes(e)
	router.RegisterPublic(e, museumH, ticketH, chatH, cfg.JWTSecret, cache)
	router.RegisterVisitor(e, ticketH, chatH, cfg.JWTSecret)
	router.RegisterOwner(e, onboardingH, dashboardH, ticketH, cfg.JWTSecret)
	router.RegisterWebhooks(e, webhookH)

	// Background consumer appends booking events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
