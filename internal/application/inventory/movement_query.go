package inventory

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// MovementQueryUseCase lecturas del libro de movimientos.
type MovementQueryUseCase struct {
	movements repository.StockMovementRepository
	products  repository.ProductRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(movements repository.StockMovementRepository, products repository.ProductRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movements: movements, products: products}
}

// GetByID obtiene un movimiento.
func (uc *MovementQueryUseCase) GetByID(ctx context.Context, id string) (*dto.StockMovementResponse, error) {
	mov, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return ToMovementResponse(mov), nil
}

// List lista movimientos, los más recientes primero.
func (uc *MovementQueryUseCase) List(ctx context.Context, limit, offset int) (*dto.StockMovementListResponse, error) {
	list, err := uc.movements.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListByProduct lista todos los movimientos de un producto.
func (uc *MovementQueryUseCase) ListByProduct(ctx context.Context, productID string) ([]dto.StockMovementResponse, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movements.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return items, nil
}
