package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"filerelay/internal/domain/admin"
	"filerelay/internal/telegram"
)

const DefaultMaxFileSizeMB = 4000

// Gateway is the part of the Bot API the upload lifecycle needs.
type Gateway interface {
	SendFile(ctx context.Context, chat telegram.ChatID, kind telegram.FileKind, fileID, caption string) (*telegram.Message, error)
	DeleteMessage(ctx context.Context, chat telegram.ChatID, messageID int64) error
}

type Limiter interface {
	Admit(userID int64, now time.Time) bool
}

// Recorder receives outcome labels, e.g. for metrics.
type Recorder interface {
	UploadOutcome(result string)
	DeleteOutcome(result string)
}

type nopRecorder struct{}

func (nopRecorder) UploadOutcome(string) {}
func (nopRecorder) DeleteOutcome(string) {}

type Config struct {
	Channel       telegram.ChatID
	MaxFileSizeMB int64
}

// UploadRequest carries the attributes derived from an inbound file message.
type UploadRequest struct {
	OwnerID   int64
	FileID    string
	FileType  telegram.FileKind
	Caption   string
	SizeBytes int64
	SentAt    int64
}

// Service forwards files to the channel and owns the record lifecycle:
// absent -> active on a confirmed forward, active -> absent on a confirmed delete.
type Service struct {
	repo     Repository
	gateway  Gateway
	limiter  Limiter
	admins   *admin.Set
	cfg      Config
	recorder Recorder
	now      func() time.Time
	log      *zap.Logger
}

func NewService(repo Repository, gateway Gateway, limiter Limiter, admins *admin.Set, cfg Config, log *zap.Logger) *Service {
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		gateway:  gateway,
		limiter:  limiter,
		admins:   admins,
		cfg:      cfg,
		recorder: nopRecorder{},
		now:      time.Now,
		log:      log,
	}
}

func (s *Service) SetRecorder(r Recorder) {
	if r != nil {
		s.recorder = r
	}
}

func (s *Service) MaxFileSizeMB() int64 { return s.cfg.MaxFileSizeMB }

// Upload validates size and rate, forwards the file and records it under the
// channel message id returned by the gateway.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (Record, error) {
	if req.SizeBytes > s.cfg.MaxFileSizeMB*bytesPerMB {
		s.recorder.UploadOutcome("too_large")
		return Record{}, ErrFileTooLarge
	}

	if !s.limiter.Admit(req.OwnerID, s.now()) {
		s.recorder.UploadOutcome("rate_limited")
		return Record{}, ErrRateLimited
	}

	msg, err := s.gateway.SendFile(ctx, s.cfg.Channel, req.FileType, req.FileID, req.Caption)
	if err != nil {
		s.log.Error("forward to channel failed",
			zap.Int64("owner_id", req.OwnerID),
			zap.String("file_type", string(req.FileType)),
			zap.Error(err),
		)
		s.recorder.UploadOutcome("gateway_error")
		return Record{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	rec := Record{
		ChannelMessageID: msg.MessageID,
		FileID:           req.FileID,
		FileType:         req.FileType,
		OwnerID:          req.OwnerID,
		UploadedAt:       req.SentAt,
		Caption:          req.Caption,
		SizeMB:           SizeMB(req.SizeBytes),
	}
	if err := s.repo.Insert(rec); err != nil {
		s.log.Error("record insert failed",
			zap.Int64("channel_message_id", rec.ChannelMessageID),
			zap.Error(err),
		)
		s.recorder.UploadOutcome("duplicate")
		return Record{}, err
	}

	s.log.Info("file forwarded",
		zap.Int64("channel_message_id", rec.ChannelMessageID),
		zap.Int64("owner_id", rec.OwnerID),
		zap.String("file_type", string(rec.FileType)),
		zap.Float64("size_mb", rec.SizeMB),
	)
	s.recorder.UploadOutcome("accepted")
	return rec, nil
}

// Delete removes the channel post and then the record. The record is left untouched
// unless the remote delete succeeded.
func (s *Service) Delete(ctx context.Context, requesterID, messageID int64) error {
	rec, err := s.repo.Get(messageID)
	if err != nil {
		s.recorder.DeleteOutcome("not_found")
		return err
	}

	if requesterID != rec.OwnerID && !s.admins.Contains(requesterID) {
		s.recorder.DeleteOutcome("denied")
		return ErrPermissionDenied
	}

	if err := s.gateway.DeleteMessage(ctx, s.cfg.Channel, messageID); err != nil {
		s.log.Error("channel delete failed",
			zap.Int64("channel_message_id", messageID),
			zap.Int64("requester_id", requesterID),
			zap.Error(err),
		)
		s.recorder.DeleteOutcome("gateway_error")
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}

	if err := s.repo.Delete(messageID); err != nil {
		// another request removed it after our remote delete
		if errors.Is(err, ErrNotFound) {
			s.recorder.DeleteOutcome("not_found")
		}
		return err
	}

	s.log.Info("file deleted",
		zap.Int64("channel_message_id", messageID),
		zap.Int64("requester_id", requesterID),
	)
	s.recorder.DeleteOutcome("deleted")
	return nil
}

func (s *Service) Get(messageID int64) (Record, error) { return s.repo.Get(messageID) }
func (s *Service) Recent(n int) []Record           { return s.repo.Recent(n) }
func (s *Service) All() []Record                   { return s.repo.All() }
func (s *Service) Stats() Stats                    { return s.repo.Stats() }
func (s *Service) Len() int                        { return s.repo.Len() }

// Reset drops every record. Channel posts are not touched.
func (s *Service) Reset() {
	n := s.repo.Len()
	s.repo.Clear()
	s.log.Warn("upload ledger cleared", zap.Int("records", n))
}

func (s *Service) IsAdmin(userID int64) bool { return s.admins.Contains(userID) }

func (s *Service) PostURL(messageID int64) string {
	return telegram.PostURL(s.cfg.Channel, messageID)
}
