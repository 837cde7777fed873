package repository

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Delete elimina el producto junto con sus holdings y movimientos.
	Delete(ctx context.Context, id string) error
	// List filtra por creador si createdBy no está vacío.
	List(ctx context.Context, createdBy string, limit, offset int) ([]*entity.Product, error)
}
