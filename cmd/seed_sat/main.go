// seed_sat genera el script SQL del catálogo SAT de claves de unidad (c_ClaveUnidad)
// a partir del CSV exportado del catálogo oficial (Latin-1).
//
// Uso: go run ./cmd/seed_sat [ruta/c_ClaveUnidad.csv]
// Escribe: internal/infrastructure/postgres/migrations/000002_seed_sat_units.{up,down}.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type unitKey struct {
	code        string
	name        string
	description string
	symbol      string
}

func main() {
	csvPath := "c_ClaveUnidad.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	units, err := parseUnits(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}
	if len(units) == 0 {
		fmt.Fprintln(os.Stderr, "El catálogo no contiene claves")
		os.Exit(1)
	}

	dir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations")
	upPath := filepath.Join(dir, "000002_seed_sat_units.up.sql")
	if err := os.WriteFile(upPath, []byte(renderUpSQL(units)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", upPath, err)
		os.Exit(1)
	}
	downPath := filepath.Join(dir, "000002_seed_sat_units.down.sql")
	if err := os.WriteFile(downPath, []byte("DELETE FROM sat_unit_keys;\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", downPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d claves de unidad\n", upPath, len(units))
}

// parseUnits lee el CSV ya decodificado a UTF-8. Busca la fila de encabezado
// (primera columna c_ClaveUnidad) y descarta las filas previas del catálogo.
func parseUnits(r io.Reader) ([]unitKey, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var cols map[string]int
	seen := make(map[string]bool)
	var units []unitKey
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if cols == nil {
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "c_ClaveUnidad") {
				cols = headerIndex(rec)
			}
			continue
		}
		code := field(rec, cols, "c_claveunidad")
		if code == "" || seen[code] {
			continue
		}
		// Claves con fin de vigencia ya no se aceptan en CFDI 4.0.
		if field(rec, cols, "fechadefindevigencia") != "" {
			continue
		}
		seen[code] = true
		units = append(units, unitKey{
			code:        code,
			name:        field(rec, cols, "nombre"),
			description: field(rec, cols, "descripción"),
			symbol:      field(rec, cols, "símbolo"),
		})
	}
	if cols == nil {
		return nil, errors.New("encabezado c_ClaveUnidad no encontrado")
	}
	sort.Slice(units, func(i, j int) bool { return units[i].code < units[j].code })
	return units, nil
}

func headerIndex(rec []string) map[string]int {
	cols := make(map[string]int, len(rec))
	for i, h := range rec {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func renderUpSQL(units []unitKey) string {
	var b strings.Builder
	b.WriteString("-- Catálogo SAT c_ClaveUnidad (claves vigentes)\n")
	b.WriteString("-- Generado por cmd/seed_sat\n\n")
	b.WriteString("INSERT INTO sat_unit_keys (code, name, description, symbol) VALUES\n")
	for i, u := range units {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s')", escapeSQL(u.code), escapeSQL(u.name),
			escapeSQL(u.description), escapeSQL(u.symbol))
		if i < len(units)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name,\n")
	b.WriteString("  description = EXCLUDED.description, symbol = EXCLUDED.symbol;\n")
	return b.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
