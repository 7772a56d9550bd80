package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/prevanet/prevention-server/internal/database"
	"github.com/prevanet/prevention-server/internal/engine"
)

// Profiles is a read-through, write-through Redis cache in front of the
// baseline profile store. The engine sees it as a plain ProfileStore.
type Profiles struct {
	redis *redis.Client
	store engine.ProfileStore
	ttl   time.Duration
}

// NewProfiles creates a new profile cache over the given store.
func NewProfiles(redisClient *redis.Client, store engine.ProfileStore, ttl time.Duration) *Profiles {
	return &Profiles{
		redis: redisClient,
		store: store,
		ttl:   ttl,
	}
}

func profileKey(userID string) string {
	return fmt.Sprintf("baseline_profile:%s", userID)
}

// Profile retrieves a profile, hitting Redis first and falling back to the
// underlying store on a miss. Cache errors degrade to store reads.
func (p *Profiles) Profile(ctx context.Context, userID string) (*database.BaselineProfile, error) {
	key := profileKey(userID)

	data, err := p.redis.Get(ctx, key).Result()
	if err == nil {
		var profile database.BaselineProfile
		if err := json.Unmarshal([]byte(data), &profile); err == nil {
			return &profile, nil
		}
		// Unreadable cache entry, fall through to the store.
		p.redis.Del(ctx, key)
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Profile cache read failed")
	}

	profile, err := p.store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	p.cache(ctx, profile)
	return profile, nil
}

// SaveProfile writes through to the underlying store and refreshes the
// cached copy.
func (p *Profiles) SaveProfile(ctx context.Context, profile *database.BaselineProfile) error {
	if err := p.store.SaveProfile(ctx, profile); err != nil {
		return err
	}
	p.cache(ctx, profile)
	return nil
}

// Invalidate drops the cached copy for a user.
func (p *Profiles) Invalidate(ctx context.Context, userID string) error {
	return p.redis.Del(ctx, profileKey(userID)).Err()
}

func (p *Profiles) cache(ctx context.Context, profile *database.BaselineProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := p.redis.Set(ctx, profileKey(profile.UserID), data, p.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", profile.UserID).Msg("Profile cache write failed")
	}
}
