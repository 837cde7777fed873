package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/ports"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Las cantidades se manejan vía movimientos.
type ProductUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	recorder *audit.Recorder
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, repos repository.Repos, recorder *audit.Recorder) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repos: repos, recorder: recorder}
}

// Create crea un nuevo producto. Si in.StockID viene informado, el estoque debe existir y el
// producto se agrega a él con in.Quantity unidades.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	price, err := domain.Money(in.Price)
	if err != nil {
		return nil, err
	}
	now := domain.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
		Price:       price,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var holdings []*entity.Holding
	err = uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if err := uc.recorder.Created(ctx, r.Audit, entity.AuditKindProduct, product.ID, product, userID); err != nil {
			return err
		}
		if in.StockID == "" {
			return nil
		}
		h, err := addToStock(ctx, r, uc.recorder, product.ID, in.StockID, in.Quantity, userID)
		if err != nil {
			return err
		}
		holdings = append(holdings, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, holdings), nil
}

// GetByID obtiene un producto con sus cantidades por estoque.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	holdings, err := uc.repos.Holdings.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, holdings), nil
}

// Update actualiza un producto. No permite modificar cantidades (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var price *decimal.Decimal
	if in.Price != nil {
		p, err := domain.Money(*in.Price)
		if err != nil {
			return nil, err
		}
		price = &p
	}
	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		before := product.Snapshot()
		if in.SKU != nil {
			if strings.TrimSpace(*in.SKU) == "" {
				return domain.ErrInvalidInput
			}
			product.SKU = *in.SKU
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.ErrInvalidInput
			}
			product.Name = *in.Name
		}
		if in.Description != nil {
			product.Description = *in.Description
		}
		if in.Category != nil {
			product.Category = *in.Category
		}
		if in.Image != nil {
			product.Image = *in.Image
		}
		if price != nil {
			product.Price = *price
		}
		product.UpdatedAt = domain.Now()
		if err := r.Products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return uc.recorder.Updated(ctx, r.Audit, entity.AuditKindProduct, id, before, product, userID)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(updated, nil), nil
}

// List lista productos con paginación; createdBy vacío lista todos.
func (uc *ProductUseCase) List(ctx context.Context, createdBy string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repos.Products.List(ctx, createdBy, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto; sus holdings y movimientos se eliminan en cascada.
func (uc *ProductUseCase) Delete(ctx context.Context, id, userID string) error {
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := r.Products.Delete(ctx, id); err != nil {
			return err
		}
		return uc.recorder.Deleted(ctx, r.Audit, entity.AuditKindProduct, id, product.Snapshot(), userID)
	})
}

func toProductResponse(p *entity.Product, holdings []*entity.Holding) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Price:       p.Price,
		Holdings:    toHoldingResponses(holdings),
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toHoldingResponses(list []*entity.Holding) []dto.HoldingResponse {
	if len(list) == 0 {
		return nil
	}
	out := make([]dto.HoldingResponse, 0, len(list))
	for _, h := range list {
		out = append(out, dto.HoldingResponse{
			ProductID: h.ProductID,
			StockID:   h.StockID,
			Quantity:  h.Quantity,
			UpdatedAt: h.UpdatedAt,
		})
	}
	return out
}
