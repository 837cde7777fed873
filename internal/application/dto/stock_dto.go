package dto

import "time"

// CreateStockRequest entrada para crear un estoque.
type CreateStockRequest struct {
	StoreID *string `json:"store_id"`
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	City    string  `json:"city"`
	UF      string  `json:"uf"`
	ZipCode string  `json:"zip_code"`
	Address string  `json:"address"`
}

// UpdateStockRequest entrada para actualizar un estoque.
type UpdateStockRequest struct {
	StoreID *string `json:"store_id"`
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	City    *string `json:"city"`
	UF      *string `json:"uf"`
	ZipCode *string `json:"zip_code"`
	Address *string `json:"address"`
}

// AddProductToStockRequest body para POST /api/stocks/product.
type AddProductToStockRequest struct {
	ProductID string `json:"product_id"`
	StockID   string `json:"stock_id"`
	Quantity  int64  `json:"quantity"`
}

// StockResponse salida de un estoque con sus holdings.
type StockResponse struct {
	ID        string            `json:"id"`
	StoreID   *string           `json:"store_id"`
	Name      string            `json:"name"`
	City      string            `json:"city"`
	UF        string            `json:"uf"`
	ZipCode   string            `json:"zip_code"`
	Address   string            `json:"address"`
	Holdings  []HoldingResponse `json:"holdings,omitempty"`
	CreatedBy string            `json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// StockListResponse lista paginada de estoques.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
