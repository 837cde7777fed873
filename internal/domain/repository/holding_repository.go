package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// HoldingRepository define el puerto para la cantidad de producto por estoque.
// Usado dentro de transacciones para garantizar consistencia.
type HoldingRepository interface {
	// Get devuelve nil, nil si el producto no está en el estoque.
	Get(ctx context.Context, productID, stockID string) (*entity.Holding, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, stockID string) (*entity.Holding, error)
	// Create falla con domain.ErrHoldingExists si ya existe.
	Create(ctx context.Context, holding *entity.Holding) error
	// LockOrCreate inserta la fila con cantidad 0 si no existe y la devuelve bloqueada.
	// Los créditos a un destino pasan por aquí: un SELECT FOR UPDATE sobre una fila
	// inexistente no bloquea nada.
	LockOrCreate(ctx context.Context, productID, stockID string, now time.Time) (*entity.Holding, error)
	// Upsert escribe la cantidad de una fila ya bloqueada en la transacción.
	Upsert(ctx context.Context, holding *entity.Holding) error
	ListByStock(ctx context.Context, stockID string) ([]*entity.Holding, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Holding, error)
}
