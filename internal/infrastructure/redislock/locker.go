// Package redislock implementa la exclusión mutua por sesión de inventario entre
// varias instancias del servicio con SET NX PX y liberación atómica vía Lua.
package redislock

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

//go:embed scripts/unlock.lua
var unlockScript string

const (
	keyPrefix     = "magazzino:lock:"
	defaultTTL    = 30 * time.Second
	retryInterval = 25 * time.Millisecond
)

var _ inventory.SessionLocker = (*Locker)(nil)

// Locker lock distribuido sobre Redis. El TTL acota cuánto sobrevive un lock
// huérfano si la instancia que lo tomó muere.
type Locker struct {
	rdb    *redis.Client
	unlock *redis.Script
	ttl    time.Duration
	log    *logger.Logger
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// New construye el locker. ttl <= 0 usa 30 s.
func New(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{
		rdb:    rdb,
		unlock: redis.NewScript(unlockScript),
		ttl:    ttl,
		log:    log.Component("redislock"),
	}
}

// Lock reintenta SET NX hasta obtener la clave o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// contexto propio: el del request puede estar cancelado al liberar
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.unlock.Run(ctx, l.rdb, []string{redisKey}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock; expira por TTL")
		}
	}, nil
}
