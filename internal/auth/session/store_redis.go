package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cli:session:"

// completeScript flips a session to completed if and only if it exists and is
// still pending. Running it as a Lua script makes the single-use transition
// atomic even with two browser tabs submitting the same session concurrently.
var completeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return "missing"
end
if redis.call("HGET", KEYS[1], "status") == "completed" then
  return "completed"
end
redis.call("HSET", KEYS[1], "status", "completed", "user_id", ARGV[1], "token", ARGV[2])
return "ok"
`)

// RedisStore implements Store on Redis. Expiry is delegated to Redis TTLs, so
// an expired session is genuinely gone by the time anyone reads it — no stale
// rows accumulate.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Create stores a fresh pending session with the given TTL.
func (s *RedisStore) Create(ctx context.Context, id string, ttl time.Duration) error {
	now := time.Now()
	key := sessionKey(id)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"status", string(StatusPending),
		"user_id", "",
		"token", "",
		"created_at", now.Format(time.RFC3339Nano),
		"expires_at", now.Add(ttl).Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session create failed: %w", err)
	}
	return nil
}

// Get retrieves a session. Absent or expired sessions yield ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis session get failed: %w", err)
	}
	if len(fields) == 0 {
		// HGETALL returns an empty map for missing keys, which covers both
		// never-created and TTL-expired sessions.
		return nil, ErrNotFound
	}

	sess := &Session{
		ID:     id,
		Status: Status(fields["status"]),
		UserID: fields["user_id"],
		Token:  fields["token"],
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		sess.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["expires_at"]); err == nil {
		sess.ExpiresAt = t
	}
	return sess, nil
}

// Complete marks a pending session completed, attaching the owning user and
// the freshly minted raw CLI token.
func (s *RedisStore) Complete(ctx context.Context, id, userID, token string) error {
	result, err := completeScript.Run(ctx, s.client, []string{sessionKey(id)}, userID, token).Text()
	if err != nil {
		return fmt.Errorf("redis session complete failed: %w", err)
	}

	switch result {
	case "ok":
		return nil
	case "missing":
		return ErrNotFound
	case "completed":
		return ErrAlreadyCompleted
	default:
		return fmt.Errorf("redis session complete: unexpected script result %q", result)
	}
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis session delete failed: %w", err)
	}
	return nil
}
