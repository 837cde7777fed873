package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrPersistence       = errors.New("fallo de persistencia")
)

// Variantes concretas; errors.Is las resuelve contra el error base.
var (
	ErrSameLocation           = fmt.Errorf("%w: origen y destino son el mismo estoque", ErrConflict)
	ErrProductNotInStock      = fmt.Errorf("%w: producto no encontrado en el estoque de origen", ErrNotFound)
	ErrProductMissingAtOrigin = fmt.Errorf("%w: producto no encontrado en el estoque de origen para salida", ErrInvalidInput)
	ErrMissingDestination     = fmt.Errorf("%w: estoque de destino obligatorio", ErrInvalidInput)
	ErrMissingOrigin          = fmt.Errorf("%w: estoque de origen obligatorio", ErrInvalidInput)
	ErrOrderNotDraft          = fmt.Errorf("%w: el pedido no está en borrador", ErrConflict)
	ErrOrderHasItems          = fmt.Errorf("%w: el pedido tiene ítems asociados", ErrConflict)
	ErrStoreHasOrders         = fmt.Errorf("%w: la tienda tiene pedidos asociados", ErrConflict)
	ErrHoldingExists          = fmt.Errorf("%w: el producto ya está en el estoque", ErrConflict)
	ErrItemExists             = fmt.Errorf("%w: el pedido ya tiene un ítem para ese producto y estoque", ErrConflict)
)
