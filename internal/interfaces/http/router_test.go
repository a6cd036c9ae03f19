package http_test

import (
	"bytes"
	"context"
	"io"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/Operaciones-api/internal/application/usecase"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Operaciones-api/internal/interfaces/http"
)

type stubVoucher struct{}

func (stubVoucher) GenerateTransactionPDF(context.Context, inventory.TransactionVoucher) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

type apiFixture struct {
	app       *fiber.App
	store     *inventorytest.MemoryStore
	publisher *inventorytest.RecordingPublisher
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := inventorytest.NewMemoryStore()
	publisher := &inventorytest.RecordingPublisher{}
	items := inventorytest.ItemCatalog{
		"X": {ID: "X", SKU: "SKU-X", Name: "Tornillo", Unit: "unidad"},
	}
	locations := inventorytest.Locations("A", "B")
	projector := inventory.NewStockLevelProjector(store, inventorytest.NewMemoryCache(), &inventorytest.MutexLocker{}, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Lifecycle: inventory.NewLifecycleUseCase(store, store, items, locations, projector, publisher, nil),
		Projector: projector,
		Voucher:   inventory.NewVoucherUseCase(store, items, locations, stubVoucher{}),
		CatalogUC: usecase.NewCatalogUseCase(items, locations),
		JWTSecret: testJWTSecret,
	})
	return &apiFixture{app: app, store: store, publisher: publisher}
}

// call envía body como JSON con el token de userID/role y devuelve la respuesta.
func (f *apiFixture) call(t *testing.T, method, path, userID, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "-" {
		req.Header.Set("Authorization", tokenFor(t, userID, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) createReceipt(t *testing.T, qty int) dto.TransactionResponse {
	t.Helper()
	resp := f.call(t, http.MethodPost, "/api/inventory/transactions", "op-1", "operator", fiber.Map{
		"type": "receipt", "item_id": "X", "quantity": qty, "destination_location_id": "A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.TransactionResponse](t, resp)
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreate_RequiereToken(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodPost, "/api/inventory/transactions", "", "-", fiber.Map{"type": "receipt"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreate_TomaRequestedByDelToken(t *testing.T) {
	f := newAPI(t)

	tx := f.createReceipt(t, 100)

	assert.Equal(t, "requested", tx.Status)
	assert.Equal(t, "op-1", tx.RequestedBy)
	assert.Equal(t, "unidad", tx.Unit)
	assert.True(t, decimal.NewFromInt(100).Equal(tx.Quantity))
	assert.ElementsMatch(t, []string{"approved", "rejected"}, tx.AllowedTransitions)
	require.Len(t, f.publisher.Events(), 1)
}

func TestCreate_ValidacionDevuelve400ConCampo(t *testing.T) {
	cases := []struct {
		name  string
		body  fiber.Map
		field string
	}{
		{"tipo desconocido", fiber.Map{"type": "loan", "item_id": "X", "quantity": 1, "destination_location_id": "A"}, "type"},
		{"sin item", fiber.Map{"type": "receipt", "quantity": 1, "destination_location_id": "A"}, "item_id"},
		{"cantidad negativa", fiber.Map{"type": "receipt", "item_id": "X", "quantity": -3, "destination_location_id": "A"}, "quantity"},
		{"transfer sin destino", fiber.Map{"type": "transfer", "item_id": "X", "quantity": 2, "source_location_id": "A"}, "location"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAPI(t)
			resp := f.call(t, http.MethodPost, "/api/inventory/transactions", "op-1", "operator", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, "VALIDATION", body.Code)
			assert.Equal(t, tc.field, body.Field)
		})
	}
}

func TestCreate_UbicacionInexistente404(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodPost, "/api/inventory/transactions", "op-1", "operator", fiber.Map{
		"type": "receipt", "item_id": "X", "quantity": 1, "destination_location_id": "Q",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransition_CicloCompletoYStock(t *testing.T) {
	f := newAPI(t)
	tx := f.createReceipt(t, 100)
	path := "/api/inventory/transactions/" + tx.ID

	resp := f.call(t, http.MethodPatch, path, "sup-1", "supervisor", fiber.Map{"status": "approved", "approved_by": "mallory"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[dto.TransactionResponse](t, resp)
	assert.Equal(t, "sup-1", approved.ApprovedBy, "el aprobador sale del token, no del body")

	resp = f.call(t, http.MethodPatch, path, "mgr-1", "manager", fiber.Map{"status": "posted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posted := decode[dto.TransactionResponse](t, resp)
	assert.Equal(t, "posted", posted.Status)
	assert.Equal(t, "mgr-1", posted.PostedBy)
	assert.Equal(t, int64(3), posted.Version)
	assert.Equal(t, []string{"void"}, posted.AllowedTransitions)

	resp = f.call(t, http.MethodGet, "/api/inventory/stock-levels/X/A", "op-1", "operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	level := decode[dto.StockLevelResponse](t, resp)
	assert.True(t, decimal.NewFromInt(100).Equal(level.Quantity), "stock en A: %s", level.Quantity)
	assert.Equal(t, 1, level.Postings)
}

func TestTransition_PoliticaDeRoles(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		status string
		want   int
	}{
		{"operator no aprueba", "operator", "approved", http.StatusForbidden},
		{"operator no rechaza", "operator", "rejected", http.StatusForbidden},
		{"supervisor aprueba", "supervisor", "approved", http.StatusOK},
		{"supervisor no contabiliza", "supervisor", "posted", http.StatusForbidden},
		{"manager no salta de requested a posted", "manager", "posted", http.StatusConflict},
		{"root rechaza", "root", "rejected", http.StatusOK},
		{"rol desconocido", "auditor", "approved", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAPI(t)
			tx := f.createReceipt(t, 10)
			resp := f.call(t, http.MethodPatch, "/api/inventory/transactions/"+tx.ID, "u-1", tc.role, fiber.Map{"status": tc.status})
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestTransition_OperatorEditaSinCambiarEstado(t *testing.T) {
	f := newAPI(t)
	tx := f.createReceipt(t, 10)

	resp := f.call(t, http.MethodPut, "/api/inventory/transactions/"+tx.ID, "op-1", "operator", fiber.Map{"quantity": 12, "notes": "recontado"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.TransactionResponse](t, resp)

	assert.Equal(t, "requested", out.Status)
	assert.True(t, decimal.NewFromInt(12).Equal(out.Quantity))
	assert.Equal(t, "recontado", out.Notes)
	assert.Equal(t, int64(2), out.Version)
}

func TestTransition_SaltoInvalido409(t *testing.T) {
	f := newAPI(t)
	tx := f.createReceipt(t, 10)
	path := "/api/inventory/transactions/" + tx.ID

	resp := f.call(t, http.MethodPatch, path, "root-1", "root", fiber.Map{"status": "rejected"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPatch, path, "root-1", "root", fiber.Map{"status": "approved"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_TRANSITION", body.Code)
}

func TestTransition_EstadoFueraDeEnum400(t *testing.T) {
	f := newAPI(t)
	tx := f.createReceipt(t, 10)
	resp := f.call(t, http.MethodPatch, "/api/inventory/transactions/"+tx.ID, "root-1", "root", fiber.Map{"status": "archived"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "status", body.Field)
}

func TestTransition_NoExiste404(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodPatch, "/api/inventory/transactions/nope", "root-1", "root", fiber.Map{"status": "approved"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetYList(t *testing.T) {
	f := newAPI(t)
	first := f.createReceipt(t, 5)
	f.createReceipt(t, 7)

	resp := f.call(t, http.MethodGet, "/api/inventory/transactions/"+first.ID, "op-1", "operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.TransactionResponse](t, resp)
	assert.Equal(t, first.ID, got.ID)

	resp = f.call(t, http.MethodGet, "/api/inventory/transactions?status=requested&item_id=X&limit=1", "op-1", "operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.TransactionListResponse](t, resp)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Limit)

	resp = f.call(t, http.MethodGet, "/api/inventory/transactions?status=archived", "op-1", "operator", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecompute_SoloRootYManager(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodPost, "/api/inventory/stock-levels/X/A/recompute", "op-1", "operator", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	f.store.Put(&entity.StockTransaction{
		ID: "seed", Type: entity.TransactionTypeReceipt, ItemID: "X", Quantity: decimal.NewFromInt(8), Unit: "unidad",
		DestinationLocationID: "A", Status: entity.StatusPosted, RequestedBy: "a", ApprovedBy: "b", PostedBy: "c", Version: 3,
	})
	resp = f.call(t, http.MethodPost, "/api/inventory/stock-levels/X/A/recompute", "mgr-1", "manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	level := decode[dto.StockLevelResponse](t, resp)
	assert.True(t, decimal.NewFromInt(8).Equal(level.Quantity))
}

func TestCatalog(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodGet, "/api/catalog/items/X", "op-1", "operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decode[dto.ItemResponse](t, resp)
	assert.Equal(t, "SKU-X", item.SKU)

	resp = f.call(t, http.MethodGet, "/api/catalog/items/Z", "op-1", "operator", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/catalog/warehouses/WH/locations", "op-1", "operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	locs := decode[dto.LocationListResponse](t, resp)
	assert.Len(t, locs.Items, 2)
}

func TestDownloadPDF(t *testing.T) {
	f := newAPI(t)
	tx := f.createReceipt(t, 3)

	resp := f.call(t, http.MethodGet, "/api/inventory/transactions/"+tx.ID+"/pdf", "op-1", "operator", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "movimiento_receipt_")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.3 stub", string(body))

	resp = f.call(t, http.MethodGet, "/api/inventory/transactions/nope/pdf", "op-1", "operator", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadPDF_SinID400(t *testing.T) {
	store := inventorytest.NewMemoryStore()
	items := inventorytest.ItemCatalog{"X": {ID: "X", SKU: "SKU-X", Name: "Tornillo", Unit: "unidad"}}
	locations := inventorytest.Locations("A", "B")
	projector := inventory.NewStockLevelProjector(store, nil, nil, nil)
	h := apphttp.NewTransactionHandler(
		inventory.NewLifecycleUseCase(store, store, items, locations, projector, nil, nil),
		inventory.NewVoucherUseCase(store, items, locations, stubVoucher{}),
	)

	app := fiber.New()
	app.Get("/pdf", h.DownloadPDF)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pdf", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "MISSING_ID", body.Code)
}
