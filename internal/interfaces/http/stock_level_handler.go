package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
)

// StockLevelHandler expone el stock proyectado por (ítem, ubicación).
type StockLevelHandler struct {
	projector *inventory.StockLevelProjector
}

func NewStockLevelHandler(projector *inventory.StockLevelProjector) *StockLevelHandler {
	return &StockLevelHandler{projector: projector}
}

// Get godoc
// @Summary      Stock de un ítem en una ubicación
// @Description  Lee la caché; si no hay entrada recalcula desde las transacciones posted.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId      path  string  true  "ID del ítem"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-levels/{itemId}/{locationId} [get]
func (h *StockLevelHandler) Get(c *fiber.Ctx) error {
	level, err := h.projector.Get(c.UserContext(), c.Params("itemId"), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockLevelResponse(level))
}

// Recompute godoc
// @Summary      Forzar recálculo del stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId      path  string  true  "ID del ítem"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-levels/{itemId}/{locationId}/recompute [post]
func (h *StockLevelHandler) Recompute(c *fiber.Ctx) error {
	level, err := h.projector.Recompute(c.UserContext(), c.Params("itemId"), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockLevelResponse(level))
}
