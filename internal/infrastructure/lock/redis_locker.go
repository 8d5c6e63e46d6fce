// Package lock candados por clave para serializar operaciones fiscales sobre una misma factura.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
)

const defaultKeyPrefix = "ventas:lock:"

// releaseScript borra la clave solo si el token sigue siendo el del dueño.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisLocker candado distribuido con SET NX PX; sirve para varias instancias de la API.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLocker conecta y verifica con PING.
func NewRedisLocker(cfg RedisConfig) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewRedisLockerWithClient(client, ""), nil
}

// NewRedisLockerWithClient usa un cliente existente.
func NewRedisLockerWithClient(client *redis.Client, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

// Acquire toma el candado sin esperar. Si otro proceso lo tiene devuelve domain.ErrStampInProgress.
// El TTL libera el candado si el proceso dueño muere.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (billing.Release, error) {
	full := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("tomar candado %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStampInProgress, key)
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{full}, token).Err(); err != nil {
			return fmt.Errorf("liberar candado %s: %w", key, err)
		}
		return nil
	}, nil
}

// Close cierra el cliente.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

var _ billing.Locker = (*RedisLocker)(nil)
