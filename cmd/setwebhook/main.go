package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"filerelay/internal/config"
	"filerelay/internal/domain/web"
	"filerelay/internal/observability"
	"filerelay/internal/telegram"
)

// setwebhook registers <PUBLIC_URL>/webhook with the Bot API and exits.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.InitLogger(!cfg.IsProd(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client := telegram.NewClient(cfg.BotToken,
		telegram.WithAPIURL(cfg.TelegramAPIURL),
		telegram.WithTimeout(cfg.GatewayTimeout),
		telegram.WithLogger(logger.Named("telegram")),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout+5*time.Second)
	defer cancel()

	url := cfg.WebhookURL()
	if err := client.SetWebhook(ctx, url, web.AllowedUpdates, cfg.WebhookSecret); err != nil {
		logger.Fatal("set webhook failed", zap.String("url", url), zap.Error(err))
	}
	logger.Info("webhook registered", zap.String("url", url), zap.Bool("secret", cfg.WebhookSecret != ""))
}
