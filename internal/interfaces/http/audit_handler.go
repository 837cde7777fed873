package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoques-api/internal/application/audit"
)

// AuditHandler consulta de la bitácora.
type AuditHandler struct {
	uc *audit.QueryUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.QueryUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Consultar bitácora
// @Description  Más recientes primero. kind: product, stock, stock_movement, store, order, order_item.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        kind    path   string  false  "Tipo de entidad"
// @Param        id      path   string  false  "ID de la entidad"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/auditoria/{kind}/{id} [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c, 50)
	out, err := h.uc.List(c.UserContext(), c.Params("kind"), c.Params("id"), limit, offset)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
