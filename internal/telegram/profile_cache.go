package telegram

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Profile is the display identity of a user.
type Profile struct {
	Username  string
	FirstName string
}

// UnknownProfile is shown when a profile cannot be fetched.
var UnknownProfile = Profile{Username: "Unknown", FirstName: "User"}

type ChatGetter interface {
	GetChat(ctx context.Context, id int64) (*Chat, error)
}

// ProfileCache keeps recently fetched profiles so listings do not call getChat once per row.
type ProfileCache struct {
	source ChatGetter
	cache  *expirable.LRU[int64, Profile]
	fetch  singleflight.Group
	log    *zap.Logger
}

func NewProfileCache(source ChatGetter, size int, ttl time.Duration, log *zap.Logger) *ProfileCache {
	if size <= 0 {
		size = 256
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileCache{
		source: source,
		cache:  expirable.NewLRU[int64, Profile](size, nil, ttl),
		log:    log,
	}
}

// Lookup never fails; errors are logged and yield UnknownProfile, which is not cached.
func (p *ProfileCache) Lookup(ctx context.Context, userID int64) Profile {
	if prof, ok := p.cache.Get(userID); ok {
		return prof
	}

	// concurrent lookups of one user share a single getChat
	v, err, _ := p.fetch.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		chat, err := p.source.GetChat(ctx, userID)
		if err != nil {
			return nil, err
		}
		prof := Profile{Username: chat.Username, FirstName: chat.FirstName}
		if prof.Username == "" {
			prof.Username = UnknownProfile.Username
		}
		if prof.FirstName == "" {
			prof.FirstName = UnknownProfile.FirstName
		}
		p.cache.Add(userID, prof)
		return prof, nil
	})
	if err != nil {
		p.log.Warn("profile lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return UnknownProfile
	}
	return v.(Profile)
}
