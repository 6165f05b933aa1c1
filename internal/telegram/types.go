package telegram

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ChatID addresses a chat either by numeric id or by "@channelusername".
type ChatID string

// ID converts a numeric chat id.
func ID(id int64) ChatID {
	return ChatID(strconv.FormatInt(id, 10))
}

// MarshalJSON encodes numeric ids as JSON numbers and usernames as strings.
func (c ChatID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(c), 10, 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(c))
}

func (c ChatID) String() string { return string(c) }

// FileKind is the attachment type a file was received as.
type FileKind string

const (
	KindDocument FileKind = "document"
	KindPhoto    FileKind = "photo"
	KindVideo    FileKind = "video"
	KindAudio    FileKind = "audio"
	KindVoice    FileKind = "voice"
)

// sendMethods maps a kind to its Bot API method and payload field.
var sendMethods = map[FileKind]struct{ method, field string }{
	KindDocument: {"sendDocument", "document"},
	KindPhoto:    {"sendPhoto", "photo"},
	KindVideo:    {"sendVideo", "video"},
	KindAudio:    {"sendAudio", "audio"},
	KindVoice:    {"sendVoice", "voice"},
}

// Valid reports whether k is one of the supported kinds.
func (k FileKind) Valid() bool {
	_, ok := sendMethods[k]
	return ok
}

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat is also what getChat returns for a private chat, so it doubles as the user profile.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// FileMeta holds the fields shared by every attachment type.
type FileMeta struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type Document struct {
	FileMeta
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type PhotoSize struct {
	FileMeta
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Video struct {
	FileMeta
	Duration int    `json:"duration,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type Audio struct {
	FileMeta
	Duration int    `json:"duration,omitempty"`
	Title    string `json:"title,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type Voice struct {
	FileMeta
	Duration int    `json:"duration,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Date      int64       `json:"date"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Document  *Document   `json:"document,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Video     *Video      `json:"video,omitempty"`
	Audio     *Audio      `json:"audio,omitempty"`
	Voice     *Voice      `json:"voice,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// Keyboard lays buttons out in rows of the given number of columns.
func Keyboard(columns int, buttons ...InlineKeyboardButton) *InlineKeyboardMarkup {
	if columns < 1 {
		columns = 1
	}
	rows := make([][]InlineKeyboardButton, 0, (len(buttons)+columns-1)/columns)
	for start := 0; start < len(buttons); start += columns {
		end := start + columns
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[start:end])
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// PostURL returns the public link of a message posted in channel.
func PostURL(channel ChatID, messageID int64) string {
	name := string(channel)
	if strings.HasPrefix(name, "@") {
		return "https://t.me/" + strings.TrimPrefix(name, "@") + "/" + strconv.FormatInt(messageID, 10)
	}
	// private channels are addressed as -100<internal id>
	return "https://t.me/c/" + strings.TrimPrefix(name, "-100") + "/" + strconv.FormatInt(messageID, 10)
}
