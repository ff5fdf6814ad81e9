package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"taskroom/internal/config"
	"taskroom/internal/database"
	"taskroom/internal/handlers"
	"taskroom/internal/repositories"
	"taskroom/internal/services"
	"taskroom/pkg/mailer"
	"taskroom/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownOps := map[string]gfshutdown.Operation{}

	// --- Storage ---
	var store repositories.Store
	if cfg.DBDriver == "memory" {
		log.Println("Using in-memory store; data will not survive a restart")
		store = repositories.NewMemoryStore()
	} else {
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		shutdownOps["database"] = func(context.Context) error {
			return database.Close(db)
		}
		store = repositories.NewGORMStore(db)
	}

	// --- Email delivery ---
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
	})
	var notifier services.Notifier = smtpMailer
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		if err := mqClient.ConsumeEmails(smtpMailer.Deliver); err != nil {
			log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
		}
		shutdownOps["rabbitmq"] = func(context.Context) error {
			return mqClient.Close()
		}
		notifier = mqClient
	}

	// --- Services ---
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.VerifyTokenExpiresIn)
	hasher := services.NewPasswordHasher(cfg.BcryptCost)

	app := handlers.NewApp(handlers.Services{
		Auth:     services.NewAuthService(store.Users(), tokens, hasher, notifier, cfg.AppURL),
		Users:    services.NewUserService(store, hasher),
		Projects: services.NewProjectService(store),
		Columns:  services.NewColumnService(store),
		Tasks:    services.NewTaskService(store),
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)
	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	shutdownOps["http"] = func(ctx context.Context) error {
		log.Println("Shutting down server...")
		return app.ShutdownWithContext(ctx)
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, shutdownOps)
	exitCode := <-wait
	log.Printf("Server stopped with code: %d", exitCode)
	os.Exit(exitCode)
}
