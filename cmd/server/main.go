package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"

	"github.com/admivo/resumekit"
	"github.com/admivo/resumekit/middleware/admingate"
)

func main() {
	cfg, err := resumekit.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persistence := resumekit.NewPersistence(cfg.DSN)
	if err := persistence.Connect(ctx); err != nil {
		log.Fatalf("database: %v", err)
	}
	defer persistence.Close()

	repo := resumekit.NewRepositoryManager(persistence.DB())
	repo.MustValidate()

	tokens := resumekit.NewTokenService(
		[]byte(cfg.SigningKey),
		cfg.TokenTTL,
		cfg.Issuer,
		nil,
	)

	mailer, err := resumekit.NewSMTPMailer(cfg.SMTP, nil)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	gateway := resumekit.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, nil)

	auther := resumekit.NewAuthenticator(repo, tokens).
		WithAdminCredential(cfg.AdminEmail, cfg.AdminPasswordHash)

	engine := django.New("./views", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(admingate.New(admingate.Config{
		TokenHeader: cfg.AdminTokenHeader,
		CookieName:  cfg.AdminCookieName,
		TokenValidator: admingate.TokenValidatorFunc(func(raw string) (admingate.Claims, error) {
			return tokens.Validate(raw)
		}),
	}))

	controller := resumekit.NewController(
		resumekit.WithControllerRepo(repo),
		resumekit.WithControllerAuther(auther),
		resumekit.WithControllerMailer(mailer),
		resumekit.WithControllerGateway(gateway),
		resumekit.WithControllerConfig(cfg),
	)
	controller.RegisterRoutes(app)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(cfg.Address); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
