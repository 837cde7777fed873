package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de movimientos de estoque (protegido).
type InventoryHandler struct {
	uc    *inventory.RegisterMovementUseCase
	query *inventory.MovementQueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, query *inventory.MovementQueryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, query: query}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de estoque
// @Description  in exige destination_stock_id, out exige origin_stock_id, transfer exige ambos y distintos.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, movement_type (in|out|transfer), quantity, origen/destino"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stocks/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RegisterMovementFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.StockMovementListResponse
// @Router       /api/stocks/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := page(c, dto.DefaultLimit)
	out, err := h.query.List(c.UserContext(), limit, offset)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/movements/product/{id} [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	out, err := h.query.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
