package dto

import "time"

// RegisterMovementRequest body para POST /api/stocks/movements.
// in: destination_stock_id; out: origin_stock_id; transfer: ambos.
type RegisterMovementRequest struct {
	ProductID          string `json:"product_id"`
	OriginStockID      string `json:"origin_stock_id,omitempty"`
	DestinationStockID string `json:"destination_stock_id,omitempty"`
	Type               string `json:"movement_type"`
	Quantity           int64  `json:"quantity"`
	Observation        string `json:"observation,omitempty"`
}

// StockMovementResponse salida de un movimiento.
type StockMovementResponse struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	OriginStockID      *string   `json:"origin_stock_id"`
	DestinationStockID *string   `json:"destination_stock_id"`
	Quantity           int64     `json:"quantity"`
	Type               string    `json:"movement_type"`
	Observation        string    `json:"observation,omitempty"`
	CreatedBy          string    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// HoldingResponse cantidad de un producto en un estoque.
type HoldingResponse struct {
	ProductID string    `json:"product_id"`
	StockID   string    `json:"stock_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}
