// Package slotlock serializes concurrent bookings of the same (date, time)
// slot across API instances. The partial unique index on appointments is
// still the final guard; the lock only keeps losers from reaching the
// payment gateway.
package slotlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrNotAcquired = errors.New("slotlock: slot is being booked")

type Locker interface {
	// Acquire devolve a função de liberação. ErrNotAcquired quando outro
	// processo já segura o slot.
	Acquire(ctx context.Context, date, slot string) (release func(), err error)
}

func Key(date, slot string) string {
	return fmt.Sprintf("slotlock:%s:%s", date, slot)
}

// ===============================
// Redis
// ===============================

// só apaga se o valor ainda for o nosso token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Connect abre o cliente a partir de uma URL redis:// e valida com PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("slotlock: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("slotlock: ping redis: %w", err)
	}
	return client, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, date, slot string) (func(), error) {
	key := Key(date, slot)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("slotlock: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func() {
		// o ctx da requisição pode já ter sido cancelado
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
	}
	return release, nil
}

// ===============================
// Noop
// ===============================

// Noop é usado quando REDIS_URL não está configurado.
type Noop struct{}

func (Noop) Acquire(context.Context, string, string) (func(), error) {
	return func() {}, nil
}

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = Noop{}
)
