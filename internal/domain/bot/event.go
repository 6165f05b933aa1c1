package bot

import (
	"strings"

	"filerelay/internal/telegram"
)

// Event is the closed set of inbound updates the dispatcher understands.
// Only the types in this file implement it.
type Event interface {
	kind() string
}

// TextCommand is any text message. Command is the first token with an
// @botname suffix removed, e.g. "/start@IP_AdressBot now" -> "/start".
type TextCommand struct {
	ChatID  int64
	UserID  int64
	Command string
	Text    string
}

// FileUpload is a message carrying exactly one supported attachment.
type FileUpload struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	FileID    string
	Kind      telegram.FileKind
	Caption   string
	SizeBytes int64
	SentAt    int64
}

type ButtonPress struct {
	CallbackID string
	ChatID     int64
	MessageID  int64
	UserID     int64
	Data       string
}

// Unrecognized carries the chat to answer in, or 0 when there is none.
type Unrecognized struct {
	ChatID int64
	Reason string
}

func (TextCommand) kind() string  { return "text_command" }
func (FileUpload) kind() string   { return "file_upload" }
func (ButtonPress) kind() string  { return "button_press" }
func (Unrecognized) kind() string { return "unrecognized" }

// Kind names the event variant, for logs and metric labels.
func Kind(e Event) string {
	if e == nil {
		return "unrecognized"
	}
	return e.kind()
}

// Parse classifies an update. It is the only place that inspects the raw shape.
func Parse(u telegram.Update) Event {
	if cb := u.CallbackQuery; cb != nil {
		if cb.Message == nil {
			return Unrecognized{ChatID: cb.From.ID, Reason: "callback without message"}
		}
		return ButtonPress{
			CallbackID: cb.ID,
			ChatID:     cb.Message.Chat.ID,
			MessageID:  cb.Message.MessageID,
			UserID:     cb.From.ID,
			Data:       cb.Data,
		}
	}

	msg := u.Message
	if msg == nil {
		return Unrecognized{Reason: "no message"}
	}
	if msg.From == nil {
		return Unrecognized{ChatID: msg.Chat.ID, Reason: "no sender"}
	}

	if msg.Text != "" {
		return TextCommand{
			ChatID:  msg.Chat.ID,
			UserID:  msg.From.ID,
			Command: normalizeCommand(msg.Text),
			Text:    msg.Text,
		}
	}

	kind, meta, n := attachment(msg)
	switch {
	case n == 0:
		return Unrecognized{ChatID: msg.Chat.ID, Reason: "no supported attachment"}
	case n > 1:
		return Unrecognized{ChatID: msg.Chat.ID, Reason: "multiple attachments"}
	case meta.FileID == "":
		return Unrecognized{ChatID: msg.Chat.ID, Reason: "attachment without file id"}
	}

	return FileUpload{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		FileID:    meta.FileID,
		Kind:      kind,
		Caption:   msg.Caption,
		SizeBytes: meta.FileSize,
		SentAt:    msg.Date,
	}
}

// attachment returns the single attachment of msg and how many kinds it carries.
func attachment(msg *telegram.Message) (telegram.FileKind, telegram.FileMeta, int) {
	var (
		kind telegram.FileKind
		meta telegram.FileMeta
		n    int
	)
	if msg.Document != nil {
		kind, meta, n = telegram.KindDocument, msg.Document.FileMeta, n+1
	}
	if len(msg.Photo) > 0 {
		// sizes are ordered smallest first
		kind, meta, n = telegram.KindPhoto, msg.Photo[len(msg.Photo)-1].FileMeta, n+1
	}
	if msg.Video != nil {
		kind, meta, n = telegram.KindVideo, msg.Video.FileMeta, n+1
	}
	if msg.Audio != nil {
		kind, meta, n = telegram.KindAudio, msg.Audio.FileMeta, n+1
	}
	if msg.Voice != nil {
		kind, meta, n = telegram.KindVoice, msg.Voice.FileMeta, n+1
	}
	return kind, meta, n
}

func normalizeCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := fields[0]
	if strings.HasPrefix(cmd, "/") {
		if at := strings.IndexByte(cmd, '@'); at > 0 {
			cmd = cmd[:at]
		}
		cmd = strings.ToLower(cmd)
	}
	return cmd
}
