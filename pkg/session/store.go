package session

import (
	"context"
	"encoding/json"
	"time"

	"autocare-controlplane/pkg/config"
	"autocare-controlplane/pkg/rediskey"
	"autocare-controlplane/pkg/security"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("session",
	fx.Provide(NewCodecFromConfig, NewStore),
)

// Session is the server-side record a bearer token points at.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store struct {
	rdb   *redis.Client
	codec *TokenCodec
	ttl   time.Duration
}

type StoreParams struct {
	fx.In
	Redis  *redis.Client
	Codec  *TokenCodec
	Config *config.Config
}

func NewCodecFromConfig(cfg *config.Config) (*TokenCodec, error) {
	return NewTokenCodec(cfg.Session.Secret, cfg.AppName)
}

func NewStore(p StoreParams) *Store {
	ttl := p.Config.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: p.Redis, codec: p.Codec, ttl: ttl}
}

// Create persists a new session and returns the signed bearer token.
func (s *Store) Create(ctx context.Context, userID, tenantID, role string) (string, error) {
	id, err := security.GenerateBase64Secret(24)
	if err != nil {
		return "", err
	}

	now := time.Now()
	sess := Session{
		ID:        id,
		UserID:    userID,
		TenantID:  tenantID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, rediskey.BuildSessionKey(id), payload, s.ttl).Err(); err != nil {
		return "", err
	}

	// Track the session under its user so DestroyAll can revoke them all.
	userKey := rediskey.BuildUserSessionsKey(userID)
	if err := s.rdb.SAdd(ctx, userKey, id).Err(); err != nil {
		return "", err
	}
	_ = s.rdb.Expire(ctx, userKey, s.ttl).Err()

	return s.codec.Sign(sess.ID, sess.UserID, sess.ExpiresAt)
}

// Resolve verifies the token and loads the backing session. A missing or
// expired session yields (nil, nil).
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	id, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	payload, err := s.rdb.Get(ctx, rediskey.BuildSessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Destroy revokes the session behind a token. Invalid tokens are a no-op.
func (s *Store) Destroy(ctx context.Context, token string) error {
	id, err := s.codec.Verify(token)
	if err != nil {
		return nil
	}

	key := rediskey.BuildSessionKey(id)
	if payload, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var sess Session
		if json.Unmarshal(payload, &sess) == nil {
			_ = s.rdb.SRem(ctx, rediskey.BuildUserSessionsKey(sess.UserID), id).Err()
		}
	}

	return s.rdb.Del(ctx, key).Err()
}

// DestroyAll revokes every live session of a user. Called when an account is
// deactivated or its role changes, so stale role claims cannot outlive the
// mutation.
func (s *Store) DestroyAll(ctx context.Context, userID string) error {
	userKey := rediskey.BuildUserSessionsKey(userID)

	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, rediskey.BuildSessionKey(id))
	}
	keys = append(keys, userKey)

	return s.rdb.Del(ctx, keys...).Err()
}
