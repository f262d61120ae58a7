package redis

import (
	"context"
	"fmt"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// One code per user. TTL enforces expiry server-side; the attempt
// counter clears the code after too many wrong guesses.
const maxCodeAttempts = 5

// consumeScript compares and deletes in one atomic step. A match
// clears both keys; a mismatch increments the attempt counter and
// clears the code once the budget is exhausted.
var consumeScript = goredis.NewScript(`
local code = redis.call('GET', KEYS[1])
if not code then
	return 'missing'
end
if code == ARGV[1] then
	redis.call('DEL', KEYS[1], KEYS[2])
	return 'ok'
end
local attempts = redis.call('INCR', KEYS[2])
redis.call('EXPIRE', KEYS[2], ARGV[2])
if attempts >= tonumber(ARGV[3]) then
	redis.call('DEL', KEYS[1], KEYS[2])
end
return 'mismatch'
`)

// CodeStore implements ports.CodeStore on Redis.
type CodeStore struct {
	client *goredis.Client
	prefix string
}

// NewCodeStore creates a new Redis-backed verification code store.
func NewCodeStore(client *goredis.Client) *CodeStore {
	return &CodeStore{
		client: client,
		prefix: "verify:",
	}
}

func (s *CodeStore) codeKey(userID uuid.UUID) string {
	return s.prefix + "code:" + userID.String()
}

func (s *CodeStore) attemptsKey(userID uuid.UUID) string {
	return s.prefix + "attempts:" + userID.String()
}

// Put stores the active code for a user, replacing any previous one
// and resetting the attempt counter.
func (s *CodeStore) Put(ctx context.Context, userID uuid.UUID, code string, channel domain.Channel, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.codeKey(userID), code, ttl)
	pipe.Del(ctx, s.attemptsKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store code: %w", err)
	}
	return nil
}

// ConsumeIfMatch atomically compares and deletes the user's code.
func (s *CodeStore) ConsumeIfMatch(ctx context.Context, userID uuid.UUID, code string) (ports.CodeConsumeResult, error) {
	ttlSeconds := int64((5 * time.Minute).Seconds())
	result, err := consumeScript.Run(ctx, s.client,
		[]string{s.codeKey(userID), s.attemptsKey(userID)},
		code, ttlSeconds, maxCodeAttempts,
	).Text()
	if err != nil {
		return ports.CodeConsumeMissing, fmt.Errorf("redis consume code: %w", err)
	}

	switch result {
	case "ok":
		return ports.CodeConsumeOK, nil
	case "missing":
		return ports.CodeConsumeMissing, nil
	default:
		return ports.CodeConsumeMismatch, nil
	}
}
