package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// AddItem agrega un producto al pedido en borrador. Si ya existe un ítem para el mismo producto
// y estoque se incrementa su cantidad. La cantidad acumulada no puede superar la disponible
// en el estoque. Precio ausente o cero toma el precio del producto.
func (uc *OrderUseCase) AddItem(ctx context.Context, orderID, userID string, in dto.AddOrderItemRequest) (*dto.OrderItemResponse, error) {
	if in.ProductID == "" || in.StockID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	price, err := itemPrice(in.UnitPrice)
	if err != nil {
		return nil, err
	}

	var result *entity.OrderItem
	err = uc.txRunner.Run(ctx, func(r repository.Repos) error {
		o, err := lockDraft(ctx, r, orderID)
		if err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		stock, err := r.Stocks.GetByID(ctx, in.StockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrNotFound
		}

		existing, err := r.OrderItems.FindByProduct(ctx, o.ID, in.ProductID, in.StockID)
		if err != nil {
			return err
		}
		cumulative := in.Quantity
		if existing != nil {
			cumulative += existing.Quantity
		}
		if err := checkAvailable(ctx, r, in.ProductID, in.StockID, cumulative); err != nil {
			return err
		}

		now := uc.now()
		explicitPrice := price != nil && !price.IsZero()
		if existing != nil {
			before := existing.Snapshot()
			existing.Quantity = cumulative
			if explicitPrice {
				existing.UnitPrice = *price
			}
			existing.Recalculate()
			existing.UpdatedAt = now
			if err := r.OrderItems.Update(ctx, existing); err != nil {
				return err
			}
			if err := uc.recorder.Updated(ctx, r.Audit, entity.AuditKindOrderItem, existing.ID, before, existing, userID); err != nil {
				return err
			}
			result = existing
		} else {
			item := &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				ProductID: in.ProductID,
				StockID:   in.StockID,
				UnitPrice: product.Price,
				Quantity:  in.Quantity,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if explicitPrice {
				item.UnitPrice = *price
			}
			item.Recalculate()
			if err := r.OrderItems.Create(ctx, item); err != nil {
				return err
			}
			if err := uc.recorder.Created(ctx, r.Audit, entity.AuditKindOrderItem, item.ID, item, userID); err != nil {
				return err
			}
			result = item
		}
		return uc.applyTotal(ctx, r, o, userID)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(result), nil
}

// PatchItem actualiza parcialmente un ítem; revalida disponibilidad si cambian cantidad o estoque.
func (uc *OrderUseCase) PatchItem(ctx context.Context, itemID, userID string, in dto.PatchOrderItemRequest) (*dto.OrderItemResponse, error) {
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	price, err := itemPrice(in.UnitPrice)
	if err != nil {
		return nil, err
	}
	if in.StockID != nil && *in.StockID == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.OrderItem
	err = uc.txRunner.Run(ctx, func(r repository.Repos) error {
		item, err := r.OrderItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		o, err := lockDraft(ctx, r, item.OrderID)
		if err != nil {
			return err
		}
		before := item.Snapshot()

		recheck := false
		if in.StockID != nil && *in.StockID != item.StockID {
			stock, err := r.Stocks.GetByID(ctx, *in.StockID)
			if err != nil {
				return err
			}
			if stock == nil {
				return domain.ErrNotFound
			}
			other, err := r.OrderItems.FindByProduct(ctx, o.ID, item.ProductID, *in.StockID)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.ErrItemExists
			}
			item.StockID = *in.StockID
			recheck = true
		}
		if in.Quantity != nil && *in.Quantity != item.Quantity {
			item.Quantity = *in.Quantity
			recheck = true
		}
		if recheck {
			if err := checkAvailable(ctx, r, item.ProductID, item.StockID, item.Quantity); err != nil {
				return err
			}
		}
		if price != nil {
			item.UnitPrice = *price
		}
		item.Recalculate()
		item.UpdatedAt = uc.now()
		if err := r.OrderItems.Update(ctx, item); err != nil {
			return err
		}
		if err := uc.recorder.Updated(ctx, r.Audit, entity.AuditKindOrderItem, item.ID, before, item, userID); err != nil {
			return err
		}
		result = item
		return uc.applyTotal(ctx, r, o, userID)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(result), nil
}

// DeleteItem elimina un ítem de un pedido en borrador y recalcula el total.
func (uc *OrderUseCase) DeleteItem(ctx context.Context, itemID, userID string) error {
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		item, err := r.OrderItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		o, err := lockDraft(ctx, r, item.OrderID)
		if err != nil {
			return err
		}
		if err := r.OrderItems.Delete(ctx, itemID); err != nil {
			return err
		}
		if err := uc.recorder.Deleted(ctx, r.Audit, entity.AuditKindOrderItem, itemID, item.Snapshot(), userID); err != nil {
			return err
		}
		return uc.applyTotal(ctx, r, o, userID)
	})
}

// ListItems lista los ítems de un pedido.
func (uc *OrderUseCase) ListItems(ctx context.Context, orderID string) ([]dto.OrderItemResponse, error) {
	o, err := uc.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.repos.OrderItems.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return items, nil
}

// itemPrice valida el precio explícito de un ítem; nil si no viene.
func itemPrice(p *decimal.Decimal) (*decimal.Decimal, error) {
	if p == nil {
		return nil, nil
	}
	v, err := domain.Money(*p)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// checkAvailable falla con ErrInsufficientStock si el estoque no tiene qty unidades del producto.
func checkAvailable(ctx context.Context, r repository.Repos, productID, stockID string, qty int64) error {
	h, err := r.Holdings.Get(ctx, productID, stockID)
	if err != nil {
		return err
	}
	if h == nil || h.Quantity < qty {
		return domain.ErrInsufficientStock
	}
	return nil
}
