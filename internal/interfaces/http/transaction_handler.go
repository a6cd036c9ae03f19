package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/internal/domain/repository"
)

var (
	editRoles     = []string{entity.RoleRoot, entity.RoleManager, entity.RoleSupervisor, entity.RoleOperator}
	approvalRoles = []string{entity.RoleRoot, entity.RoleManager, entity.RoleSupervisor}
	ledgerRoles   = []string{entity.RoleRoot, entity.RoleManager}
)

// rolesForTarget roles que pueden pedir el estado target. Vacío o requested es una edición sin cambio de estado.
func rolesForTarget(target entity.TransactionStatus) []string {
	switch target {
	case entity.StatusApproved, entity.StatusRejected:
		return approvalRoles
	case entity.StatusPosted, entity.StatusVoid:
		return ledgerRoles
	default:
		return editRoles
	}
}

// TransactionHandler maneja las peticiones HTTP de transacciones de stock (protegido).
type TransactionHandler struct {
	uc      *inventory.LifecycleUseCase
	voucher *inventory.VoucherUseCase
}

// NewTransactionHandler construye el handler. voucher puede ser nil si no se expone el PDF.
func NewTransactionHandler(uc *inventory.LifecycleUseCase, voucher *inventory.VoucherUseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc, voucher: voucher}
}

// Create godoc
// @Summary      Crear transacción de stock
// @Description  Queda en estado requested; requested_by se toma del token.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "type, item_id, quantity y ubicaciones según el tipo"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	tx, err := h.uc.CreateTransaction(c.UserContext(), inventory.CreateInput{
		Type:                  in.Type,
		ItemID:                in.ItemID,
		Quantity:              in.Quantity,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Reference:             in.Reference,
		Notes:                 in.Notes,
	}, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

// GetByID godoc
// @Summary      Obtener transacción por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	tx, err := h.uc.GetTransaction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx))
}

// List godoc
// @Summary      Listar transacciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "requested|approved|posted|rejected|void"
// @Param        type         query  string  false  "receipt|issue|transfer|adjustment"
// @Param        item_id      query  string  false  "Ítem"
// @Param        location_id  query  string  false  "Ubicación (origen o destino)"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var q dto.TransactionFilterQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validateStruct(q); err != nil {
		return respondError(c, err)
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()

	list, err := h.uc.ListTransactions(c.UserContext(), repository.TransactionFilter{
		Status:     entity.TransactionStatus(q.Status),
		Type:       entity.TransactionType(q.Type),
		ItemID:     q.ItemID,
		LocationID: q.LocationID,
	}, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, dto.NewTransactionResponse(tx))
	}
	return c.JSON(dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Transition godoc
// @Summary      Cambiar estado o editar una transacción
// @Description  status vacío edita sin cambiar de estado. approved_by y posted_by del body se ignoran.
// @Description  Con status=posted (o void desde posted) el stock de las ubicaciones se recalcula antes de responder.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la transacción"
// @Param        body  body  dto.TransitionRequest  true  "status destino y campos a modificar"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id} [patch]
func (h *TransactionHandler) Transition(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}

	target := entity.TransactionStatus(in.Status)
	role := GetRole(c)
	if role == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
	}
	if !hasRole(role, rolesForTarget(target)) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para pasar a " + in.Status})
	}

	tx, err := h.uc.Transition(c.UserContext(), id, target, inventory.Patch{
		Quantity:              in.Quantity,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Reference:             in.Reference,
		Notes:                 in.Notes,
		ApprovedBy:            in.ApprovedBy,
		PostedBy:              in.PostedBy,
	}, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(tx))
}

// DownloadPDF godoc
// @Summary      Descargar comprobante PDF de la transacción
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id}/pdf [get]
func (h *TransactionHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	pdfBytes, filename, err := h.voucher.DownloadVoucher(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
