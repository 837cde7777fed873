package repository

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
}
