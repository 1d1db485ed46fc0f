// Package lock candado distribuido sobre Redis para que varias instancias de la API no generen
// corridas de reposición en paralelo.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/Repuestos-api/internal/application/ports"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ ports.Locker = (*RedisLocker)(nil)

// RedisLocker implementa ports.Locker con bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewRedisLocker ttl es la vida máxima del candado; wait cuánto se reintenta antes de rendirse
// (0 = un solo intento).
func NewRedisLocker(rdb redis.UniversalClient, ttl, wait time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		log:    log,
	}
}

// Lock obtiene "lock:<key>". Si otro proceso lo tiene devuelve domain.ErrConflict.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	opts := &redislock.Options{}
	if l.wait > 0 {
		opts.RetryStrategy = redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(l.wait/(100*time.Millisecond)))
	}
	lk, err := l.client.Obtain(ctx, lockKey, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Warn().Str("key", lockKey).Msg("candado ocupado por otra instancia")
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", lockKey, err)
	}
	return func() {
		// contexto propio: el del request puede estar cancelado al liberar
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", lockKey).Msg("no se pudo liberar el candado")
		}
	}, nil
}
