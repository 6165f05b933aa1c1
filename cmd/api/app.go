package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filerelay/internal/config"
	"filerelay/internal/domain/admin"
	"filerelay/internal/domain/bot"
	"filerelay/internal/domain/ratelimit"
	"filerelay/internal/domain/upload"
	"filerelay/internal/domain/web"
	"filerelay/internal/middleware"
	"filerelay/internal/observability"
	"filerelay/internal/pkg/jwt"
	"filerelay/internal/pkg/response"
	"filerelay/internal/telegram"
)

// app holds the wired components of one process.
type app struct {
	router  *gin.Engine
	sweeper *ratelimit.Sweeper
	uploads *upload.Service
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics := observability.NewMetrics()

	client := telegram.NewClient(cfg.BotToken,
		telegram.WithAPIURL(cfg.TelegramAPIURL),
		telegram.WithTimeout(cfg.GatewayTimeout),
		telegram.WithLogger(logger.Named("telegram")),
		telegram.WithObserver(metrics.GatewayCall),
	)

	admins := admin.NewSet(cfg.AdminIDs...)
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	sweeper := ratelimit.NewSweeper(limiter, cfg.SweepInterval, cfg.SweepHorizon, logger.Named("ratelimit"))

	ledger := upload.NewLedger()
	uploads := upload.NewService(ledger, client, limiter, admins, upload.Config{
		Channel:       telegram.ChatID(cfg.ChannelID),
		MaxFileSizeMB: cfg.MaxFileSizeMB,
	}, logger.Named("upload"))
	uploads.SetRecorder(metrics)

	metrics.TrackGauge("ledger_records", "Upload records currently held in memory.", func() float64 {
		return float64(ledger.Len())
	})
	metrics.TrackGauge("ratelimit_tracked_users", "Users with a live rate limit window.", func() float64 {
		return float64(limiter.Users())
	})

	profiles := telegram.NewProfileCache(client, cfg.ProfileCacheSize, cfg.ProfileCacheTTL, logger.Named("profiles"))
	presenter := bot.NewPresenter(cfg.MaxFileSizeMB, cfg.RateLimit)
	dispatcher := bot.NewDispatcher(client, uploads, profiles, admins, presenter, logger.Named("bot"))

	sessions := jwt.New(cfg.SecretKey, cfg.SessionTTL)
	webHandler := web.NewHandler(uploads, admins, sessions, client, web.Config{
		BotToken:      cfg.BotToken,
		BotUsername:   cfg.BotUsername,
		WebhookURL:    cfg.WebhookURL(),
		WebhookSecret: cfg.WebhookSecret,
		CookieSecure:  cfg.CookieSecure,
	}, logger.Named("web"))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(
		middleware.RequestLogger(logger.Named("http")),
		middleware.Recovery(logger.Named("http")),
		metrics.Middleware(),
		middleware.SessionAuth(sessions),
	)

	web.RegisterRoutes(r, webHandler, middleware.LoginThrottle(cfg.LoginAttemptsPerMinute))
	bot.RegisterRoutes(r, bot.NewHandler(dispatcher, metrics.UpdateReceived, logger.Named("webhook")),
		middleware.WebhookSecret(cfg.WebhookSecret, logger.Named("webhook")))

	adminAPI := r.Group("/", middleware.RequireSessionJSON(), middleware.AdminOnly(admins))
	upload.RegisterRoutes(adminAPI, upload.NewHandler(uploads))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not found")
	})

	return &app{router: r, sweeper: sweeper, uploads: uploads}, nil
}
