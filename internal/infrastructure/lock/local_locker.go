package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
)

// LocalLocker candado en proceso para una sola instancia (o tests).
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localEntry
	now   func() time.Time
	count uint64
}

type localEntry struct {
	token   uint64
	expires time.Time
}

// NewLocalLocker crea el candado en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localEntry), now: time.Now}
}

// Acquire mismas reglas que RedisLocker: sin espera y con expiración.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (billing.Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, fmt.Errorf("%w: %s", domain.ErrStampInProgress, key)
	}
	l.count++
	token := l.count
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.held[key]; ok && e.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

var _ billing.Locker = (*LocalLocker)(nil)
