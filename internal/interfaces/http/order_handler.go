package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/order"
)

// OrderHandler pedidos, ítems y liquidación (protegido).
type OrderHandler struct {
	uc *order.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido
// @Description  El pedido nace en borrador con total 0.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "store_id, order_date"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
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
// @Summary      Obtener pedido con sus ítems
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos del usuario
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c, dto.DefaultLimit)
	out, err := h.uc.List(c.UserContext(), GetUserID(c), limit, offset)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar pedido en borrador
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "store_id, order_date"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
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
// @Summary      Eliminar pedido
// @Description  Solo borradores sin ítems.
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Finalize godoc
// @Summary      Liquidar pedido
// @Description  Marca el pedido como pagado, descuenta existencias, acredita la tienda y abre un borrador nuevo.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse  "nuevo borrador"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/finalize [patch]
func (h *OrderHandler) Finalize(c *fiber.Ctx) error {
	out, err := h.uc.Finalize(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Checkout godoc
// @Summary      Encolar liquidación del pedido
// @Description  202 si quedó encolado; 200 si se liquidó en línea (sin cola configurada).
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.CheckoutResponse
// @Success      202  {object}  dto.CheckoutResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/checkout [post]
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	out, err := h.uc.Checkout(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	if out.Status == order.CheckoutQueued {
		return c.Status(fiber.StatusAccepted).JSON(out)
	}
	return c.JSON(out)
}

// RecalculateTotal godoc
// @Summary      Recalcular total del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/total [patch]
func (h *OrderHandler) RecalculateTotal(c *fiber.Ctx) error {
	out, err := h.uc.RecalculateOrderTotal(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListItems godoc
// @Summary      Ítems del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}   dto.OrderItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [get]
func (h *OrderHandler) ListItems(c *fiber.Ctx) error {
	out, err := h.uc.ListItems(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar ítem al pedido
// @Description  Si ya existe un ítem del mismo producto y estoque se suma la cantidad.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del pedido"
// @Param        body  body  dto.AddOrderItemRequest  true  "product_id, stock_id, quantity, unit_price"
// @Success      201   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddOrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddItem(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PatchItem godoc
// @Summary      Modificar ítem
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del ítem"
// @Param        body  body  dto.PatchOrderItemRequest  true  "stock_id, quantity, unit_price"
// @Success      200   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/items/{id} [patch]
func (h *OrderHandler) PatchItem(c *fiber.Ctx) error {
	var in dto.PatchOrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.PatchItem(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// DeleteItem godoc
// @Summary      Eliminar ítem
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/items/{id} [delete]
func (h *OrderHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.uc.DeleteItem(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
