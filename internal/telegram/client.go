package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAPIURL  = "https://api.telegram.org"
	DefaultTimeout = 30 * time.Second

	ActionTyping = "typing"
)

// Observer is notified after every Bot API call.
type Observer func(method string, err error)

// Client is a thin JSON client for the Bot API. It never retries.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *zap.Logger
	observer Observer
}

type Option func(*Client)

func WithAPIURL(apiURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(apiURL, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultAPIURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = c.baseURL + "/bot" + token
	return c
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type sendMessageRequest struct {
	ChatID                ChatID                `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage posts an HTML formatted message.
func (c *Client) SendMessage(ctx context.Context, chat ChatID, text string, markup *InlineKeyboardMarkup) (*Message, error) {
	var msg Message
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chat,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		ReplyMarkup:           markup,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type editMessageTextRequest struct {
	ChatID      ChatID                `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText replaces the text and keyboard of a message. A nil markup removes the keyboard.
func (c *Client) EditMessageText(ctx context.Context, chat ChatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	return c.call(ctx, "editMessageText", editMessageTextRequest{
		ChatID:      chat,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	}, nil)
}

// SendFile re-posts an already uploaded file by its file_id.
func (c *Client) SendFile(ctx context.Context, chat ChatID, kind FileKind, fileID, caption string) (*Message, error) {
	m, ok := sendMethods[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	payload := map[string]any{
		"chat_id": chat,
		m.field:   fileID,
	}
	if caption != "" {
		payload["caption"] = caption
		payload["parse_mode"] = "HTML"
	}

	var msg Message
	if err := c.call(ctx, m.method, payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

type messageRef struct {
	ChatID    ChatID `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

func (c *Client) DeleteMessage(ctx context.Context, chat ChatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", messageRef{ChatID: chat, MessageID: messageID}, nil)
}

type chatRef struct {
	ChatID ChatID `json:"chat_id"`
}

// GetChat fetches the profile of a user (or any chat) by id.
func (c *Client) GetChat(ctx context.Context, id int64) (*Chat, error) {
	var chat Chat
	if err := c.call(ctx, "getChat", chatRef{ChatID: ID(id)}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

type chatActionRequest struct {
	ChatID ChatID `json:"chat_id"`
	Action string `json:"action"`
}

func (c *Client) SendChatAction(ctx context.Context, chat ChatID, action string) error {
	return c.call(ctx, "sendChatAction", chatActionRequest{ChatID: chat, Action: action}, nil)
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// AnswerCallbackQuery acknowledges a button press so the client stops its spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID, Text: text}, nil)
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
	SecretToken    string   `json:"secret_token,omitempty"`
}

// SetWebhook (re)registers the callback URL. Calling it repeatedly with the same URL is harmless.
func (c *Client) SetWebhook(ctx context.Context, url string, allowedUpdates []string, secret string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{
		URL:            url,
		AllowedUpdates: allowedUpdates,
		SecretToken:    secret,
	}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload, out any) (err error) {
	defer func() {
		if c.observer != nil {
			c.observer(method, err)
		}
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Method: method, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return &Error{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Method: method, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Method: method, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.OK || resp.StatusCode != http.StatusOK {
		return &Error{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   env.ErrorCode,
			Description: env.Description,
		}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return &Error{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
		}
	}

	c.log.Debug("telegram call ok", zap.String("method", method))
	return nil
}
