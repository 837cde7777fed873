package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain"
)

// handleError traduce errores de dominio a respuestas HTTP.
func handleError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusBadRequest, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// page enlaza ?limit=&offset= en dto.PageRequest. def es el límite cuando no viene;
// una query mal formada cae en los valores por defecto.
func page(c *fiber.Ctx, def int) (limit, offset int) {
	p := dto.PageRequest{Limit: def}
	if err := c.QueryParser(&p); err != nil {
		p = dto.PageRequest{Limit: def}
	}
	p.DefaultPage()
	return p.Limit, p.Offset
}
