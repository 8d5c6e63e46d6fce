// migrate aplica las migraciones embebidas del esquema.
//
// Uso: go run ./cmd/migrate [up|down|version|steps N]
// Toma la conexión de DATABASE_URL o DB_HOST, DB_PORT, etc.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-cfdi/pkg/config"
	"github.com/jhoicas/ventas-cfdi/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrate"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir migraciones")
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "steps":
		if len(os.Args) < 3 {
			log.Fatal().Msg("uso: migrate steps N")
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatal().Err(convErr).Msg("N debe ser un entero")
		}
		err = mg.Steps(n)
	case "version":
		v, dirty, verr := mg.Version()
		if verr != nil {
			log.Fatal().Err(verr).Msg("leer versión")
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return
	default:
		log.Fatal().Str("cmd", cmd).Msg("comando desconocido (up, down, version, steps N)")
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}
}
