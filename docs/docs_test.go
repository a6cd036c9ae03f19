package docs

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestReadDoc_RenderizaVersion(t *testing.T) {
	SwaggerInfo.Version = "9.9.9"
	t.Cleanup(func() { SwaggerInfo.Version = "1.0" })

	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	info := parsed["info"].(map[string]any)
	assert.Equal(t, "9.9.9", info["version"])
	assert.Equal(t, "Operaciones API", info["title"])
}

func TestSwaggerJSON_MismasRutasQueLaPlantilla(t *testing.T) {
	raw, err := os.ReadFile("swagger.json")
	require.NoError(t, err)
	var file map[string]any
	require.NoError(t, json.Unmarshal(raw, &file))

	var rendered map[string]any
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &rendered))

	assert.Equal(t, file["paths"], rendered["paths"])
	assert.Contains(t, file["paths"], "/api/inventory/transactions/{id}")
}
