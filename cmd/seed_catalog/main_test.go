package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const catalogXML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<catalogo>
  <bodegas>
    <bodega cod="WH2" nombre="Bodega Norte">
      <ubicacion cod="N-01" nombre="Pasillo 1"/>
    </bodega>
    <bodega cod="WH1" nombre="Bodega Central" direccion="Calle 10 # 4-20">
      <ubicacion cod="C-01" nombre="Estantería A"/>
      <ubicacion cod="" nombre="sin código"/>
    </bodega>
  </bodegas>
  <items>
    <item cod="X" sku="SKU-X" nombre="Tornillo 1/4&quot; O'Brien" unidad="und" categoria="ferretería"/>
    <item cod="Y" sku="" nombre="sin sku" unidad="und"/>
  </items>
</catalogo>`

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func TestParseCatalog_ISO88591(t *testing.T) {
	c, err := parseCatalog(bytes.NewReader(latin1(t, catalogXML)))
	require.NoError(t, err)

	require.Len(t, c.Bodegas, 2)
	assert.Equal(t, "Estantería A", c.Bodegas[1].Ubicaciones[0].Nombre)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "ferretería", c.Items[0].Categoria)
}

func TestWriteSQL_OrdenYEscape(t *testing.T) {
	c, err := parseCatalog(bytes.NewReader(latin1(t, catalogXML)))
	require.NoError(t, err)

	var out bytes.Buffer
	stats, err := writeSQL(&out, c)
	require.NoError(t, err)

	assert.Equal(t, seedStats{warehouses: 2, locations: 2, items: 1}, stats)
	sql := out.String()
	assert.Less(t, strings.Index(sql, "'WH1'"), strings.Index(sql, "'WH2'"), "bodegas ordenadas por código")
	assert.Less(t, strings.Index(sql, "INSERT INTO warehouses"), strings.Index(sql, "INSERT INTO locations"))
	assert.Contains(t, sql, "O''Brien")
	assert.Contains(t, sql, "'Calle 10 # 4-20'")
	assert.Contains(t, sql, "'und', 'ferretería', NULL)")
	assert.NotContains(t, sql, "sin sku")
	assert.NotContains(t, sql, "sin código")
}

func TestNullable(t *testing.T) {
	assert.Equal(t, "NULL", nullable("  "))
	assert.Equal(t, "'a''b'", nullable("a'b"))
}
