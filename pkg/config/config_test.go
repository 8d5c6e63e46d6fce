package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("PAC_MODE", "dev")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PAC.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Fiscal.LockTTL)
	assert.Equal(t, "1", cfg.Fiscal.MinAmount.String())
	assert.Equal(t, "500000", cfg.Fiscal.MaxAmount.String())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("PAC_MODE", "PROD")
	t.Setenv("PAC_TIMEOUT_SECONDS", "12")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("FISCAL_MAX_AMOUNT", "100000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.PAC.Mode)
	assert.Equal(t, 12*time.Second, cfg.PAC.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "100000", cfg.Fiscal.MaxAmount.String())
}

func TestLoad_Invalida(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"modo desconocido", map[string]string{"PAC_MODE": "staging"}},
		{"timeout cero", map[string]string{"PAC_TIMEOUT_SECONDS": "0"}},
		{"candado menor que timeout", map[string]string{"PAC_TIMEOUT_SECONDS": "60", "FISCAL_LOCK_TTL_SECONDS": "30"}},
		{"montos invertidos", map[string]string{"FISCAL_MIN_AMOUNT": "10", "FISCAL_MAX_AMOUNT": "5"}},
		{"monto no numérico", map[string]string{"FISCAL_MAX_AMOUNT": "mucho"}},
		{"pool inválido", map[string]string{"DB_MIN_CONNS": "10", "DB_MAX_CONNS": "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "ventas", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ventas?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
