package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
)

const (
	keyPrefix = "nexus:session:"
	keyActive = "nexus:sessions:active"
)

// RedisStore keeps each session as a JSON blob under nexus:session:<id> with
// a TTL, plus an active-id index set for the lobby listing.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects and pings. The TTL is a hard upper bound on session
// lifetime; normal teardown deletes records explicitly.
func NewRedis(redisURL string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// NewRedisWithClient wires an existing client; tests use this with miniredis.
func NewRedisWithClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func sessionKey(id string) string { return keyPrefix + strings.TrimSpace(id) }

func (r *RedisStore) Create(ctx context.Context, s *game.Session) error {
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, sessionKey(s.ID), raw, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	if err := r.rdb.SAdd(ctx, keyActive, s.ID).Err(); err != nil {
		return err
	}
	return nil
}

func (r *RedisStore) Save(ctx context.Context, s *game.Session) error {
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, sessionKey(s.ID), raw, r.ttl).Err(); err != nil {
		return err
	}
	// keep the index covering records written before a restart
	_ = r.rdb.SAdd(ctx, keyActive, s.ID).Err()
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*game.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return err
	}
	return r.rdb.SRem(ctx, keyActive, id).Err()
}

func (r *RedisStore) ListActive(ctx context.Context) ([]*game.Session, error) {
	ids, err := r.rdb.SMembers(ctx, keyActive).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*game.Session, 0, len(ids))
	for _, id := range ids {
		s, gerr := r.Get(ctx, id)
		if gerr != nil {
			obslog.L().Warn("session_index_decode_error", zap.String("session_id", id), zap.Error(gerr))
			continue
		}
		if s == nil {
			// record expired under TTL; drop the dangling index entry
			_ = r.rdb.SRem(ctx, keyActive, id).Err()
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
