// Package pac adaptadores del proveedor autorizado de certificación (PAC): armado y sellado
// del CFDI, cliente HTTP del PAC y un PAC local para desarrollo.
package pac

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
)

// Modos de operación.
const (
	ModeDev  = "dev"  // PAC local, sin red
	ModeTest = "test" // ambiente de pruebas del PAC
	ModeProd = "prod" // producción (salvo empresas marcadas en modo prueba)
)

// Config configuración del gateway.
type Config struct {
	Mode            string
	SandboxURL      string
	ProductionURL   string
	User            string
	Password        string
	Timeout         time.Duration
	VerificationURL string
}

// NewGateway elige la implementación según el modo.
func NewGateway(cfg Config, log zerolog.Logger) (billing.PACGateway, error) {
	switch cfg.Mode {
	case ModeDev, "":
		log.Warn().Msg("PAC en modo dev: los timbres son locales y no tienen validez fiscal")
		return NewSandboxGateway(cfg.VerificationURL), nil
	case ModeTest, ModeProd:
		if cfg.SandboxURL == "" || (cfg.Mode == ModeProd && cfg.ProductionURL == "") {
			return nil, fmt.Errorf("pac: faltan URLs para el modo %q", cfg.Mode)
		}
		return NewHTTPClient(cfg, log), nil
	}
	return nil, fmt.Errorf("pac: modo desconocido %q (usar dev, test o prod)", cfg.Mode)
}
