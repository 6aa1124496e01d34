package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/hobheap-services/configs"
	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/service"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
)

const SERVICE_NAME = "cleanup"

func main() {
	config.LoadEnv(SERVICE_NAME)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	config.Logging(SERVICE_NAME+"_service", cfg.LogDir, cfg.LogLevel)
	config.CreateUniqueInstance(SERVICE_NAME)

	if cfg.OTPCleanupInterval <= 0 {
		log.Fatal("OTP_CLEANUP_INTERVAL must be positive for the cleanup worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// pg connection
	dbpool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	otpService := service.NewOTPService(store.NewPostgresManager(dbpool), cfg.OTPLength, cfg.OTPTTL)

	// first pass runs immediately
	if n, err := otpService.Cleanup(ctx); err != nil {
		log.Errorf("otp cleanup error: %v", err)
	} else {
		log.WithFields(log.Fields{"deleted": n}).Info("initial otp cleanup done")
	}

	log.Infof("%s worker running every %s", SERVICE_NAME, cfg.OTPCleanupInterval)
	otpService.RunCleanup(ctx, cfg.OTPCleanupInterval)
	log.Infof("%s worker stopped", SERVICE_NAME)
}
