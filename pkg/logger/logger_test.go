package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/pkg/logger"
)

func TestComponent_AgregaCampos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "ventas-cfdi", Out: &buf})

	pacLog := log.Component("pac")
	pacLog.Info().Str("invoice_id", "inv-1").Msg("timbrado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "ventas-cfdi", entry["service"])
	assert.Equal(t, "pac", entry["component"])
	assert.Equal(t, "inv-1", entry["invoice_id"])
	assert.Equal(t, "timbrado", entry["message"])
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "WARN", Out: &buf})

	log.Info().Msg("oculto")
	log.Warn().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "oculto")
	assert.Contains(t, out, "visible")
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "verbose", Out: &buf})

	log.Debug().Msg("debug")
	log.Info().Msg("info")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
