package repository

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// StockRepository define el puerto de persistencia para los estoques (ubicaciones).
type StockRepository interface {
	Create(ctx context.Context, stock *entity.Stock) error
	GetByID(ctx context.Context, id string) (*entity.Stock, error)
	Update(ctx context.Context, stock *entity.Stock) error
	// Delete elimina el estoque, sus holdings y los movimientos que lo referencian.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, createdBy string, limit, offset int) ([]*entity.Stock, error)
	ListByStore(ctx context.Context, storeID string) ([]*entity.Stock, error)
}
