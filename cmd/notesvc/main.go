package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/hobheap-services/configs"
	nats "github.com/avvvet/hobheap-services/internal/nats"
	"github.com/avvvet/hobheap-services/internal/notesvc/auth"
	"github.com/avvvet/hobheap-services/internal/notesvc/broker"
	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	handlers "github.com/avvvet/hobheap-services/internal/notesvc/handlers"
	"github.com/avvvet/hobheap-services/internal/notesvc/service"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	"github.com/avvvet/hobheap-services/internal/ratelimit"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "note"

func main() {
	config.LoadEnv(SERVICE_NAME)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	config.Logging(SERVICE_NAME+"_service", cfg.LogDir, cfg.LogLevel)
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// store
	var manager store.Manager
	if cfg.DatabaseURL != "" {
		dbpool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer db.ClosePool()
		log.Printf("pg connection established successfully")

		if cfg.AutoMigrate {
			if err := db.Migrate(ctx, dbpool); err != nil {
				log.Fatalf("migration failed: %v", err)
			}
		}
		manager = store.NewPostgresManager(dbpool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		manager = store.NewMemoryManager()
	}

	// events
	var events broker.Publisher = broker.Nop{}
	if cfg.NatsURL != "" {
		n, err := nats.Connect(cfg.NatsURL, cfg.NatsToken, SERVICE_NAME+"_service_"+instanceId)
		if err != nil {
			log.Fatalf("Error: unable to connect to NATS server %v", err)
		}
		defer n.Close()
		log.Printf("NATS connection established successfully %s", n.Url)
		events = broker.NewBroker(n.Conn, instanceId)
	} else {
		log.Info("NATS_URL not set, domain events disabled")
	}

	tokens := auth.New(cfg.JWTSecret, cfg.AccessTokenTTL)
	limiter := ratelimit.NewFixedWindow(cfg.AuthRateLimitAttempts, cfg.AuthRateLimitWindow)

	userService := service.NewUserService(manager)
	otpService := service.NewOTPService(manager, cfg.OTPLength, cfg.OTPTTL)
	authService := service.NewAuthService(manager, otpService, tokens, limiter, events)
	cardService := service.NewCardService(manager, events)
	tagService := service.NewTagService(manager, events)
	documentService := service.NewDocumentService(manager, events)

	go otpService.RunCleanup(ctx, cfg.OTPCleanupInterval, func() {
		if n := limiter.Sweep(); n > 0 {
			log.Debugf("rate limiter dropped %d idle keys", n)
		}
	})

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(tokens, userService, authService, cardService, tagService, documentService)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
