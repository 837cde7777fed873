package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store.
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	// GetForUpdate bloquea la fila de la tienda (saldo).
	GetForUpdate(ctx context.Context, id string) (*entity.Store, error)
	// Update no modifica el saldo.
	Update(ctx context.Context, store *entity.Store) error
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
	// Delete elimina la tienda y sus estoques.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, createdBy string, limit, offset int) ([]*entity.Store, error)
	// ExistsByCNPJOrEmail ignora la tienda excludeID (vacío = ninguna).
	ExistsByCNPJOrEmail(ctx context.Context, cnpj, email, excludeID string) (bool, error)
}
