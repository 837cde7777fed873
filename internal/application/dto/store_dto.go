package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStoreRequest entrada para crear una tienda. El saldo inicia en 0.
type CreateStoreRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	CNPJ        string `json:"cnpj" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
	UF          string `json:"uf"`
	ZipCode     string `json:"zip_code"`
	Address     string `json:"address"`
	Image       string `json:"image"`
}

// UpdateStoreRequest entrada para actualizar una tienda. El saldo no es editable.
type UpdateStoreRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	CNPJ        *string `json:"cnpj"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	City        *string `json:"city"`
	UF          *string `json:"uf"`
	ZipCode     *string `json:"zip_code"`
	Address     *string `json:"address"`
	Image       *string `json:"image"`
}

// StoreResponse salida de una tienda.
type StoreResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CNPJ        string          `json:"cnpj"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number"`
	City        string          `json:"city"`
	UF          string          `json:"uf"`
	ZipCode     string          `json:"zip_code"`
	Address     string          `json:"address"`
	Image       string          `json:"image"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StoreListResponse lista paginada de tiendas.
type StoreListResponse struct {
	Items []StoreResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
