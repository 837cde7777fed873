package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Si StockID viene informado, el producto se agrega a ese estoque con Quantity unidades.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	StockID     string          `json:"stock_id,omitempty"`
	Quantity    int64           `json:"quantity,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto. Las cantidades solo cambian vía movimientos.
type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string            `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Image       string            `json:"image"`
	Price       decimal.Decimal   `json:"price"`
	Holdings    []HoldingResponse `json:"holdings,omitempty"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
