package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
)

func TestLocalLocker_Exclusivo(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "invoice:1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "invoice:1", time.Minute)
	require.ErrorIs(t, err, domain.ErrStampInProgress)

	// otra clave no se bloquea
	other, err := l.Acquire(ctx, "invoice:2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := l.Acquire(ctx, "invoice:1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestLocalLocker_CandadoVencidoSePuedeTomar(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "invoice:1", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(ctx, "invoice:1", time.Minute)
	require.NoError(t, err)

	// liberar el candado vencido no suelta al nuevo dueño
	require.NoError(t, stale(ctx))
	_, err = l.Acquire(ctx, "invoice:1", time.Minute)
	assert.ErrorIs(t, err, domain.ErrStampInProgress)
	require.NoError(t, fresh(ctx))
}
