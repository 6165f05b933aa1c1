package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LoginUser is the identity carried by a Telegram Login Widget callback.
type LoginUser struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	AuthDate  time.Time
}

// VerifyLogin checks the widget signature: hash = hex(HMAC-SHA256(data_check_string, SHA256(token))),
// where data_check_string is every other field as sorted "key=value" lines.
func VerifyLogin(botToken string, values url.Values, now time.Time, maxAge time.Duration) (*LoginUser, error) {
	got := values.Get("hash")
	if got == "" {
		return nil, ErrInvalidLogin
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(got))) {
		return nil, ErrInvalidLogin
	}

	id, err := strconv.ParseInt(values.Get("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidLogin
	}
	authUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidLogin
	}
	authDate := time.Unix(authUnix, 0)
	if maxAge > 0 && now.Sub(authDate) > maxAge {
		return nil, ErrLoginExpired
	}

	return &LoginUser{
		ID:        id,
		FirstName: values.Get("first_name"),
		LastName:  values.Get("last_name"),
		Username:  values.Get("username"),
		AuthDate:  authDate,
	}, nil
}
