package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filerelay/internal/domain/upload"
	"filerelay/internal/middleware"
	"filerelay/internal/pkg/jwt"
	"filerelay/internal/telegram"
)

const DefaultLoginMaxAge = 24 * time.Hour

// AllowedUpdates are the update types the webhook subscribes to.
var AllowedUpdates = []string{"message", "callback_query"}

type Uploads interface {
	All() []upload.Record
	Stats() upload.Stats
	Len() int
	PostURL(messageID int64) string
}

type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, url string, allowedUpdates []string, secret string) error
}

type AdminChecker interface {
	Contains(userID int64) bool
}

type Config struct {
	BotToken      string
	BotUsername   string
	WebhookURL    string
	WebhookSecret string
	AdminContact  string
	CookieSecure  bool
	LoginMaxAge   time.Duration
}

type Handler struct {
	uploads   Uploads
	admins    AdminChecker
	sessions  *jwt.Service
	registrar WebhookRegistrar
	cfg       Config
	now       func() time.Time
	log       *zap.Logger
}

func NewHandler(uploads Uploads, admins AdminChecker, sessions *jwt.Service, registrar WebhookRegistrar, cfg Config, log *zap.Logger) *Handler {
	if cfg.LoginMaxAge <= 0 {
		cfg.LoginMaxAge = DefaultLoginMaxAge
	}
	if cfg.AdminContact == "" {
		cfg.AdminContact = "@MAXWARORG"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		uploads:   uploads,
		admins:    admins,
		sessions:  sessions,
		registrar: registrar,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

// Home GET /
func (h *Handler) Home(c *gin.Context) {
	userID := c.GetInt64("user_id")
	c.HTML(http.StatusOK, "home.html", gin.H{
		"BotUsername": h.cfg.BotUsername,
		"LoggedIn":    userID != 0,
		"IsAdmin":     h.admins.Contains(userID),
		"Year":        h.now().Year(),
	})
}

// Privacy GET /privacy
func (h *Handler) Privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"BotUsername":        h.cfg.BotUsername,
		"AdminContact":       h.cfg.AdminContact,
		"AdminContactHandle": strings.TrimPrefix(h.cfg.AdminContact, "@"),
	})
}

type fileRow struct {
	ID         int64
	Kind       string
	OwnerID    int64
	SizeMB     float64
	UploadedAt string
	Caption    string
	URL        string
}

// Admin GET /admin lists every record. Session and admin checks run before it.
func (h *Handler) Admin(c *gin.Context) {
	records := h.uploads.All()
	rows := make([]fileRow, 0, len(records))
	for _, rec := range records {
		kind := string(rec.FileType)
		if kind != "" {
			kind = strings.ToUpper(kind[:1]) + kind[1:]
		}
		rows = append(rows, fileRow{
			ID:         rec.ChannelMessageID,
			Kind:       kind,
			OwnerID:    rec.OwnerID,
			SizeMB:     rec.SizeMB,
			UploadedAt: rec.UploadTime().UTC().Format("2006-01-02 15:04:05"),
			Caption:    rec.Caption,
			URL:        h.uploads.PostURL(rec.ChannelMessageID),
		})
	}

	name := c.GetString("first_name")
	if u := c.GetString("username"); u != "" {
		name = "@" + u
	}
	if name == "" {
		name = "admin"
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Name":  name,
		"Stats": h.uploads.Stats(),
		"Files": rows,
	})
}

// TelegramLogin GET /auth/telegram is the Login Widget callback.
func (h *Handler) TelegramLogin(c *gin.Context) {
	user, err := telegram.VerifyLogin(h.cfg.BotToken, c.Request.URL.Query(), h.now(), h.cfg.LoginMaxAge)
	if err != nil {
		h.log.Warn("telegram login rejected",
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", middleware.RequestID(c)),
			zap.Error(err),
		)
		msg := "Login verification failed"
		if errors.Is(err, telegram.ErrLoginExpired) {
			msg = "Login link expired, please sign in again"
		}
		c.String(http.StatusUnauthorized, msg)
		return
	}

	token, err := h.sessions.GenerateToken(user.ID, user.Username, user.FirstName)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Could not start session")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessions.TTL().Seconds()), "/", "", h.cfg.CookieSecure, true)
	h.log.Info("web session started", zap.Int64("user_id", user.ID), zap.Bool("admin", h.admins.Contains(user.ID)))
	c.Redirect(http.StatusFound, "/admin")
}

// Logout POST /logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cfg.CookieSecure, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// SetWebhook GET|POST /setwebhook registers <public url>/webhook. Safe to repeat.
func (h *Handler) SetWebhook(c *gin.Context) {
	err := h.registrar.SetWebhook(c.Request.Context(), h.cfg.WebhookURL, AllowedUpdates, h.cfg.WebhookSecret)
	if err != nil {
		h.log.Error("webhook registration failed", zap.String("url", h.cfg.WebhookURL), zap.Error(err))
		c.String(http.StatusBadGateway, "Error setting webhook")
		return
	}
	h.log.Info("webhook registered", zap.String("url", h.cfg.WebhookURL))
	c.String(http.StatusOK, "Webhook successfully set")
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"records": h.uploads.Len(),
	})
}
