package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/application/usecase"
)

// CatalogHandler consultas del catálogo (protegido, solo lectura).
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// GetItem godoc
// @Summary      Obtener ítem por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/items/{id} [get]
func (h *CatalogHandler) GetItem(c *fiber.Ctx) error {
	out, err := h.uc.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ítem no encontrado"})
	}
	return c.JSON(out)
}

// ListItems godoc
// @Summary      Listar ítems
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ItemListResponse
// @Router       /api/catalog/items [get]
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	if err := validateStruct(page); err != nil {
		return respondError(c, err)
	}
	page.DefaultPage()
	out, err := h.uc.ListItems(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	return c.JSON(out)
}

// GetLocation godoc
// @Summary      Obtener ubicación por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/locations/{id} [get]
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	out, err := h.uc.GetLocation(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ubicación no encontrada"})
	}
	return c.JSON(out)
}

// ListLocations godoc
// @Summary      Listar ubicaciones de una bodega
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path   string  true   "ID de la bodega"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200          {object}  dto.LocationListResponse
// @Router       /api/catalog/warehouses/{warehouseId}/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	if err := validateStruct(page); err != nil {
		return respondError(c, err)
	}
	page.DefaultPage()
	out, err := h.uc.ListLocations(c.UserContext(), c.Params("warehouseId"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	return c.JSON(out)
}
