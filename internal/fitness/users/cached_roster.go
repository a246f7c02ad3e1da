package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const rosterCacheKey = "fittracker::roster"

var _ Lister = (*CachedRoster)(nil)

// CachedRoster keeps the roster JSON in redis for ttl. Redis failures are
// logged and fall through to the underlying lister.
type CachedRoster struct {
	lister      Lister
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCachedRoster(lister Lister, redisClient *redis.Client, ttl time.Duration) *CachedRoster {
	return &CachedRoster{
		lister:      lister,
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (c *CachedRoster) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cachedRoster.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cached, err := c.redisClient.Get(ctx, rosterCacheKey).Result()
	switch {
	case err == nil:
		var users []User
		if err := json.Unmarshal([]byte(cached), &users); err == nil {
			span.SetAttributes(attribute.Bool("roster.from-cache", true))
			log.Tracef("roster served from redis cache")
			return users, nil
		} else {
			log.Errorf("unmarshal cached roster: %s", err)
		}
	case errors.Is(err, redis.Nil):
		log.Debugf("roster not found in redis cache")
	default:
		log.Errorf("get roster from redis: %s", err)
	}
	span.SetAttributes(attribute.Bool("roster.from-cache", false))

	users, err := c.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	usersJson, err := json.Marshal(users)
	if err != nil {
		log.Errorf("marshal roster for cache: %s", err)
		return users, nil
	}
	if err := c.redisClient.Set(ctx, rosterCacheKey, usersJson, c.ttl).Err(); err != nil {
		log.Errorf("cache roster in redis: %s", err)
	}

	return users, nil
}

// Invalidate drops the cached roster, e.g. after seeding new users.
func (c *CachedRoster) Invalidate(ctx context.Context) error {
	return c.redisClient.Del(ctx, rosterCacheKey).Err()
}
