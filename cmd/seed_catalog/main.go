// seed_catalog genera un script SQL para poblar bodegas, ubicaciones e ítems
// a partir del XML de catálogo exportado por el ERP (suele venir en ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/Catalogo.xml] [ruta/salida.sql]
// Por defecto lee Catalogo.xml del directorio actual y escribe
// internal/infrastructure/postgres/seeds/catalog_seed.sql.
//
// El script es idempotente (ON CONFLICT) y no toca stock_transactions.
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type catalogo struct {
	Bodegas []bodega `xml:"bodegas>bodega"`
	Items   []item   `xml:"items>item"`
}

type bodega struct {
	Cod         string      `xml:"cod,attr"`
	Nombre      string      `xml:"nombre,attr"`
	Direccion   string      `xml:"direccion,attr"`
	Ubicaciones []ubicacion `xml:"ubicacion"`
}

type ubicacion struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
}

type item struct {
	Cod       string `xml:"cod,attr"`
	SKU       string `xml:"sku,attr"`
	Nombre    string `xml:"nombre,attr"`
	Unidad    string `xml:"unidad,attr"`
	Categoria string `xml:"categoria,attr"`
	Proveedor string `xml:"proveedor,attr"`
}

func main() {
	xmlPath := "Catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "seeds", "catalog_seed.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	c, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	stats, err := writeSQL(out, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d bodegas, %d ubicaciones, %d ítems\n", outPath, stats.warehouses, stats.locations, stats.items)
}

// parseCatalog decodifica el XML aceptando ISO-8859-1 y Windows-1252 además de UTF-8.
func parseCatalog(r io.Reader) (*catalogo, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "iso-8859-1", "iso8859-1", "latin1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "windows-1252", "cp1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

type seedStats struct {
	warehouses, locations, items int
}

// writeSQL escribe bodegas, luego ubicaciones y al final ítems. Registros sin código o nombre se omiten.
func writeSQL(w io.Writer, c *catalogo) (seedStats, error) {
	var stats seedStats
	var b strings.Builder

	b.WriteString("-- Catálogo de bodegas, ubicaciones e ítems\n")
	b.WriteString("-- Generado desde Catalogo.xml (ERP)\n\n")

	bodegas := append([]bodega(nil), c.Bodegas...)
	sort.Slice(bodegas, func(i, j int) bool { return bodegas[i].Cod < bodegas[j].Cod })

	b.WriteString("-- 1. Bodegas\n")
	for _, bg := range bodegas {
		cod, nombre := strings.TrimSpace(bg.Cod), strings.TrimSpace(bg.Nombre)
		if cod == "" || nombre == "" {
			continue
		}
		fmt.Fprintf(&b, "INSERT INTO warehouses (id, name, address) VALUES ('%s', '%s', %s)\n",
			escapeSQL(cod), escapeSQL(nombre), nullable(bg.Direccion))
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, updated_at = now();\n")
		stats.warehouses++
	}

	b.WriteString("\n-- 2. Ubicaciones\n")
	for _, bg := range bodegas {
		wh := strings.TrimSpace(bg.Cod)
		if wh == "" || strings.TrimSpace(bg.Nombre) == "" {
			continue
		}
		for _, u := range bg.Ubicaciones {
			cod, nombre := strings.TrimSpace(u.Cod), strings.TrimSpace(u.Nombre)
			if cod == "" || nombre == "" {
				continue
			}
			fmt.Fprintf(&b, "INSERT INTO locations (id, warehouse_id, name) VALUES ('%s', '%s', '%s')\n",
				escapeSQL(cod), escapeSQL(wh), escapeSQL(nombre))
			b.WriteString("ON CONFLICT (id) DO UPDATE SET warehouse_id = EXCLUDED.warehouse_id, name = EXCLUDED.name, updated_at = now();\n")
			stats.locations++
		}
	}

	b.WriteString("\n-- 3. Ítems\n")
	for _, it := range c.Items {
		cod, sku, nombre, unidad := strings.TrimSpace(it.Cod), strings.TrimSpace(it.SKU), strings.TrimSpace(it.Nombre), strings.TrimSpace(it.Unidad)
		if cod == "" || sku == "" || nombre == "" || unidad == "" {
			continue
		}
		fmt.Fprintf(&b, "INSERT INTO items (id, sku, name, unit, category_id, supplier) VALUES ('%s', '%s', '%s', '%s', %s, %s)\n",
			escapeSQL(cod), escapeSQL(sku), escapeSQL(nombre), escapeSQL(unidad), nullable(it.Categoria), nullable(it.Proveedor))
		b.WriteString("ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name, unit = EXCLUDED.unit,\n")
		b.WriteString("  category_id = EXCLUDED.category_id, supplier = EXCLUDED.supplier, updated_at = now();\n")
		stats.items++
	}

	_, err := io.WriteString(w, b.String())
	return stats, err
}

func nullable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
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
