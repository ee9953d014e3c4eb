package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionStore persists one session per browser in a role-scoped Redis
// namespace. Each session occupies three keys (token, refresh token, user
// metadata), mirroring the triple the source system kept per role:
//
//	sess:<namespace>:<browserID>:token
//	sess:<namespace>:<browserID>:refresh
//	sess:<namespace>:<browserID>:user
//
// Save writes all keys in one transactional pipeline and Clear deletes all
// of them in one DEL, so a session is never observable half-written and a
// clear never leaves stale metadata behind.
type SessionStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewSessionStore creates a store over client for one role namespace.
// If ttl <= 0, defaultSessionTTL is used.
func NewSessionStore(client *redis.Client, namespace string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, namespace: namespace, ttl: ttl}
}

// sessionMeta is the stored user-metadata document. The token and refresh
// token live in their own keys and are deliberately not duplicated here.
type sessionMeta struct {
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	Borrowed    bool      `json:"borrowed,omitempty"`
}

func (s *SessionStore) Save(ctx context.Context, browserID string, sess domain.Session) error {
	meta, err := json.Marshal(sessionMeta{
		UserID:      sess.UserID,
		Role:        string(sess.Role),
		DisplayName: sess.DisplayName,
		ExpiresAt:   sess.ExpiresAt,
		Borrowed:    sess.Borrowed,
	})
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(browserID, "token"), sess.Token, s.ttl)
	if sess.RefreshToken != "" {
		pipe.Set(ctx, s.key(browserID, "refresh"), sess.RefreshToken, s.ttl)
	} else {
		pipe.Del(ctx, s.key(browserID, "refresh"))
	}
	pipe.Set(ctx, s.key(browserID, "user"), meta, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, browserID string) (domain.Session, error) {
	vals, err := s.client.MGet(ctx,
		s.key(browserID, "token"),
		s.key(browserID, "refresh"),
		s.key(browserID, "user"),
	).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	token, ok := vals[0].(string)
	if !ok || token == "" {
		return domain.Session{}, domain.ErrNoSession
	}

	sess := domain.Session{Token: token}
	if refresh, ok := vals[1].(string); ok {
		sess.RefreshToken = refresh
	}
	if raw, ok := vals[2].(string); ok {
		var meta sessionMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return domain.Session{}, fmt.Errorf("decode session meta: %w", err)
		}
		sess.UserID = meta.UserID
		sess.Role = domain.Role(meta.Role)
		sess.DisplayName = meta.DisplayName
		sess.ExpiresAt = meta.ExpiresAt
		sess.Borrowed = meta.Borrowed
	}
	return sess, nil
}

func (s *SessionStore) Clear(ctx context.Context, browserID string) error {
	err := s.client.Del(ctx,
		s.key(browserID, "token"),
		s.key(browserID, "refresh"),
		s.key(browserID, "user"),
	).Err()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(browserID, field string) string {
	return fmt.Sprintf("sess:%s:%s:%s", s.namespace, browserID, field)
}
