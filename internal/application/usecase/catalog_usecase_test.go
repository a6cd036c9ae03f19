package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Operaciones-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/Operaciones-api/internal/application/usecase"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

func TestCatalogUseCase_GetItem(t *testing.T) {
	uc := usecase.NewCatalogUseCase(inventorytest.ItemCatalog{
		"X": {ID: "X", SKU: "ACPM", Name: "Diésel", Unit: "gal"},
	}, inventorytest.Locations("A"))

	got, err := uc.GetItem(context.Background(), "X")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "gal", got.Unit)

	missing, err := uc.GetItem(context.Background(), "Z")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCatalogUseCase_ListLocations(t *testing.T) {
	locs := inventorytest.Locations("A", "B")
	locs["C"] = &entity.Location{ID: "C", WarehouseID: "OTRA", Name: "C"}
	uc := usecase.NewCatalogUseCase(inventorytest.ItemCatalog{}, locs)

	list, err := uc.ListLocations(context.Background(), "WH", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 10, list.Page.Limit)

	loc, err := uc.GetLocation(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, "OTRA", loc.WarehouseID)
}
