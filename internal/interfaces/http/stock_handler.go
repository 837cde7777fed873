package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/usecase"
)

// StockHandler estoques y asignación de productos.
type StockHandler struct {
	uc *usecase.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *usecase.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Create godoc
// @Summary      Crear estoque
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "Datos del estoque"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener estoque con sus existencias
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del estoque"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar estoques
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        created_by  query  string  false  "Filtrar por creador"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c, dto.DefaultLimit)
	out, err := h.uc.List(c.UserContext(), c.Query("created_by"), limit, offset)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar estoque
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del estoque"
// @Param        body  body  dto.UpdateStockRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [put]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar estoque
// @Tags         stocks
// @Security     Bearer
// @Param        id   path  string  true  "ID del estoque"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [delete]
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddProduct godoc
// @Summary      Agregar producto a un estoque
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddProductToStockRequest  true  "product_id, stock_id, quantity"
// @Success      201   {object}  dto.HoldingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stocks/product [post]
func (h *StockHandler) AddProduct(c *fiber.Ctx) error {
	var in dto.AddProductToStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddProduct(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
