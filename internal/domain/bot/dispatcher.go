package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"filerelay/internal/domain/admin"
	"filerelay/internal/domain/upload"
	"filerelay/internal/telegram"
)

// Gateway is the subset of the Bot API used for replies.
type Gateway interface {
	SendMessage(ctx context.Context, chat telegram.ChatID, text string, markup *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chat telegram.ChatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	SendChatAction(ctx context.Context, chat telegram.ChatID, action string) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// Uploads is implemented by *upload.Service.
type Uploads interface {
	Upload(ctx context.Context, req upload.UploadRequest) (upload.Record, error)
	Delete(ctx context.Context, requesterID, messageID int64) error
	Recent(n int) []upload.Record
	Stats() upload.Stats
	Len() int
	Reset()
	PostURL(messageID int64) string
}

type Profiles interface {
	Lookup(ctx context.Context, userID int64) telegram.Profile
}

// Dispatcher routes parsed events and enforces admin checks. Every event it
// accepts ends in exactly one reply when there is a chat to reply to.
type Dispatcher struct {
	gateway   Gateway
	uploads   Uploads
	profiles  Profiles
	admins    *admin.Set
	presenter *Presenter
	log       *zap.Logger
}

func NewDispatcher(gateway Gateway, uploads Uploads, profiles Profiles, admins *admin.Set, presenter *Presenter, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		gateway:   gateway,
		uploads:   uploads,
		profiles:  profiles,
		admins:    admins,
		presenter: presenter,
		log:       log,
	}
}

// Dispatch handles one event. The returned error is the failure to deliver the reply.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case ButtonPress:
		d.acknowledge(ctx, e)
		if id, ok := deleteTarget(e.Data); ok {
			return d.handleDelete(ctx, e, id)
		}
		if isMenuToken(e.Data) {
			return d.handleMenu(ctx, e)
		}
		return d.send(ctx, e.ChatID, d.presenter.Unknown())
	case TextCommand:
		return d.handleCommand(ctx, e)
	case FileUpload:
		return d.handleUpload(ctx, e)
	case Unrecognized:
		if e.ChatID == 0 {
			d.log.Debug("update ignored", zap.String("reason", e.Reason))
			return nil
		}
		return d.send(ctx, e.ChatID, d.presenter.Unknown())
	default:
		d.log.Warn("unhandled event type", zap.String("kind", Kind(ev)))
		return nil
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, e TextCommand) error {
	d.typing(ctx, e.ChatID)
	isAdmin := d.admins.Contains(e.UserID)

	switch e.Command {
	case "/start":
		return d.send(ctx, e.ChatID, d.presenter.MainMenu(isAdmin))
	case "/help":
		return d.send(ctx, e.ChatID, d.presenter.Help())
	case "/upload":
		return d.send(ctx, e.ChatID, d.presenter.UploadInstructions())
	case "/privacy":
		return d.send(ctx, e.ChatID, d.presenter.Privacy())
	case "/stats", "/list", "/restart":
		if !isAdmin {
			d.log.Info("admin command denied", zap.Int64("user_id", e.UserID), zap.String("command", e.Command))
			return d.send(ctx, e.ChatID, d.presenter.AdminOnly())
		}
		switch e.Command {
		case "/stats":
			return d.send(ctx, e.ChatID, d.presenter.Stats(d.uploads.Stats()))
		case "/list":
			return d.send(ctx, e.ChatID, d.fileList(ctx))
		default:
			d.uploads.Reset()
			return d.send(ctx, e.ChatID, d.presenter.Restarted())
		}
	default:
		return d.send(ctx, e.ChatID, d.presenter.Unknown())
	}
}

func (d *Dispatcher) handleMenu(ctx context.Context, e ButtonPress) error {
	isAdmin := d.admins.Contains(e.UserID)

	switch e.Data {
	case TokenMainMenu:
		return d.edit(ctx, e, d.presenter.MainMenu(isAdmin))
	case TokenHelp:
		return d.edit(ctx, e, d.presenter.Help())
	case TokenUploadInstructions:
		return d.edit(ctx, e, d.presenter.UploadInstructions())
	case TokenPrivacy:
		return d.edit(ctx, e, d.presenter.Privacy())
	}

	// remaining tokens are admin-only; button data is client-controlled
	if !isAdmin {
		d.log.Info("admin action denied", zap.Int64("user_id", e.UserID), zap.String("token", e.Data))
		return d.send(ctx, e.ChatID, d.presenter.AdminOnly())
	}
	switch e.Data {
	case TokenAdminPanel:
		return d.edit(ctx, e, d.presenter.AdminPanel())
	case TokenAdminStats:
		return d.send(ctx, e.ChatID, d.presenter.Stats(d.uploads.Stats()))
	case TokenAdminList:
		return d.send(ctx, e.ChatID, d.fileList(ctx))
	default:
		d.uploads.Reset()
		return d.send(ctx, e.ChatID, d.presenter.Restarted())
	}
}

func (d *Dispatcher) handleUpload(ctx context.Context, e FileUpload) error {
	d.typing(ctx, e.ChatID)

	rec, err := d.uploads.Upload(ctx, upload.UploadRequest{
		OwnerID:   e.UserID,
		FileID:    e.FileID,
		FileType:  e.Kind,
		Caption:   e.Caption,
		SizeBytes: e.SizeBytes,
		SentAt:    e.SentAt,
	})
	switch {
	case errors.Is(err, upload.ErrFileTooLarge):
		return d.send(ctx, e.ChatID, d.presenter.FileTooLarge(upload.SizeMB(e.SizeBytes)))
	case errors.Is(err, upload.ErrRateLimited):
		return d.send(ctx, e.ChatID, d.presenter.RateLimited())
	case err != nil:
		return d.send(ctx, e.ChatID, d.presenter.UploadFailed())
	}

	uploader := telegram.Profile{Username: e.Username, FirstName: e.FirstName}
	if uploader.Username == "" || uploader.FirstName == "" {
		uploader = d.profiles.Lookup(ctx, e.UserID)
	}
	return d.send(ctx, e.ChatID, d.presenter.UploadConfirmation(rec, uploader, d.uploads.PostURL(rec.ChannelMessageID)))
}

func (d *Dispatcher) handleDelete(ctx context.Context, e ButtonPress, messageID int64) error {
	err := d.uploads.Delete(ctx, e.UserID, messageID)

	var reply Reply
	switch {
	case err == nil:
		reply = d.presenter.Deleted()
	case errors.Is(err, upload.ErrNotFound):
		reply = d.presenter.DeleteNotFound()
	case errors.Is(err, upload.ErrPermissionDenied):
		reply = d.presenter.DeleteDenied()
	default:
		reply = d.presenter.DeleteFailed(messageID)
	}
	return d.edit(ctx, e, reply)
}

func (d *Dispatcher) fileList(ctx context.Context) Reply {
	recent := d.uploads.Recent(listLimit)
	rows := make([]ListRow, 0, len(recent))
	for _, rec := range recent {
		rows = append(rows, ListRow{
			Record:   rec,
			Username: d.profiles.Lookup(ctx, rec.OwnerID).Username,
			URL:      d.uploads.PostURL(rec.ChannelMessageID),
		})
	}
	return d.presenter.FileList(rows, d.uploads.Len())
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, r Reply) error {
	if _, err := d.gateway.SendMessage(ctx, telegram.ID(chatID), r.Text, r.Markup); err != nil {
		d.log.Error("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

// edit rewrites the message that carried the button, falling back to a new
// message when the edit is refused.
func (d *Dispatcher) edit(ctx context.Context, e ButtonPress, r Reply) error {
	err := d.gateway.EditMessageText(ctx, telegram.ID(e.ChatID), e.MessageID, r.Text, r.Markup)
	if err == nil {
		return nil
	}
	d.log.Warn("edit failed, sending new message",
		zap.Int64("chat_id", e.ChatID),
		zap.Int64("message_id", e.MessageID),
		zap.Error(err),
	)
	return d.send(ctx, e.ChatID, r)
}

func (d *Dispatcher) typing(ctx context.Context, chatID int64) {
	if err := d.gateway.SendChatAction(ctx, telegram.ID(chatID), telegram.ActionTyping); err != nil {
		d.log.Debug("typing indicator failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (d *Dispatcher) acknowledge(ctx context.Context, e ButtonPress) {
	if e.CallbackID == "" {
		return
	}
	if err := d.gateway.AnswerCallbackQuery(ctx, e.CallbackID, ""); err != nil {
		d.log.Debug("callback ack failed", zap.String("callback_id", e.CallbackID), zap.Error(err))
	}
}

// deleteTarget reports whether data is a delete button and which record it names.
// An unparsable id yields 0, which never matches a record.
func deleteTarget(data string) (int64, bool) {
	var rest string
	switch {
	case strings.HasPrefix(data, deletePrefix):
		rest = strings.TrimPrefix(data, deletePrefix)
	case strings.HasPrefix(data, legacyDeletePrefix):
		rest = strings.TrimPrefix(data, legacyDeletePrefix)
	default:
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, true
	}
	return id, true
}

func isMenuToken(data string) bool {
	switch data {
	case TokenHelp, TokenUploadInstructions, TokenMainMenu, TokenPrivacy,
		TokenAdminPanel, TokenAdminStats, TokenAdminList, TokenAdminRestart:
		return true
	}
	return false
}
