package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/estoques-api/internal/application/audit"
	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/application/ports"
	"github.com/jhoicas/estoques-api/internal/domain"
	snap "github.com/jhoicas/estoques-api/internal/domain/audit"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// StockUseCase casos de uso CRUD para estoques (ubicaciones).
type StockUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	recorder *audit.Recorder
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner ports.TxRunner, repos repository.Repos, recorder *audit.Recorder) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, repos: repos, recorder: recorder}
}

// Create crea un nuevo estoque. Si StoreID viene informado la tienda debe existir.
func (uc *StockUseCase) Create(ctx context.Context, userID string, in dto.CreateStockRequest) (*dto.StockResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := domain.Now()
	stock := &entity.Stock{
		ID:        uuid.New().String(),
		StoreID:   emptyToNil(in.StoreID),
		Name:      in.Name,
		City:      in.City,
		UF:        in.UF,
		ZipCode:   in.ZipCode,
		Address:   in.Address,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if err := ensureStore(ctx, r, stock.StoreID); err != nil {
			return err
		}
		if err := r.Stocks.Create(ctx, stock); err != nil {
			return err
		}
		return uc.recorder.Created(ctx, r.Audit, entity.AuditKindStock, stock.ID, stock, userID)
	})
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock, nil), nil
}

// GetByID obtiene un estoque con sus productos.
func (uc *StockUseCase) GetByID(ctx context.Context, id string) (*dto.StockResponse, error) {
	stock, err := uc.repos.Stocks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	holdings, err := uc.repos.Holdings.ListByStock(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock, holdings), nil
}

// Update actualiza un estoque.
func (uc *StockUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateStockRequest) (*dto.StockResponse, error) {
	var updated *entity.Stock
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		stock, err := r.Stocks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrNotFound
		}
		before := stock.Snapshot()
		if in.StoreID != nil {
			stock.StoreID = emptyToNil(in.StoreID)
			if err := ensureStore(ctx, r, stock.StoreID); err != nil {
				return err
			}
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.ErrInvalidInput
			}
			stock.Name = *in.Name
		}
		if in.City != nil {
			stock.City = *in.City
		}
		if in.UF != nil {
			stock.UF = *in.UF
		}
		if in.ZipCode != nil {
			stock.ZipCode = *in.ZipCode
		}
		if in.Address != nil {
			stock.Address = *in.Address
		}
		stock.UpdatedAt = domain.Now()
		if err := r.Stocks.Update(ctx, stock); err != nil {
			return err
		}
		updated = stock
		return uc.recorder.Updated(ctx, r.Audit, entity.AuditKindStock, id, before, stock, userID)
	})
	if err != nil {
		return nil, err
	}
	return toStockResponse(updated, nil), nil
}

// List lista estoques con paginación.
func (uc *StockUseCase) List(ctx context.Context, createdBy string, limit, offset int) (*dto.StockListResponse, error) {
	list, err := uc.repos.Stocks.List(ctx, createdBy, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStockResponse(s, nil))
	}
	return &dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un estoque; sus holdings y los movimientos que lo referencian se eliminan en cascada.
func (uc *StockUseCase) Delete(ctx context.Context, id, userID string) error {
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		stock, err := r.Stocks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrNotFound
		}
		if err := r.Stocks.Delete(ctx, id); err != nil {
			return err
		}
		return uc.recorder.Deleted(ctx, r.Audit, entity.AuditKindStock, id, stock.Snapshot(), userID)
	})
}

// AddProduct agrega un producto existente a un estoque (operación ADD_PRODUCT_TO_STOCK).
func (uc *StockUseCase) AddProduct(ctx context.Context, userID string, in dto.AddProductToStockRequest) (*dto.HoldingResponse, error) {
	if in.ProductID == "" || in.StockID == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	var h *entity.Holding
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		h, err = addToStock(ctx, r, uc.recorder, in.ProductID, in.StockID, in.Quantity, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &toHoldingResponses([]*entity.Holding{h})[0], nil
}

// addToStock crea el holding y registra ADD_PRODUCT_TO_STOCK sobre el estoque.
func addToStock(ctx context.Context, r repository.Repos, recorder *audit.Recorder, productID, stockID string, qty int64, userID string) (*entity.Holding, error) {
	stock, err := r.Stocks.GetByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	h := &entity.Holding{ProductID: productID, StockID: stockID, Quantity: qty, UpdatedAt: domain.Now()}
	if err := r.Holdings.Create(ctx, h); err != nil {
		return nil, err
	}
	after := stock.Snapshot()
	after["holding"] = h.Snapshot()
	if _, err := recorder.Record(ctx, r.Audit, entity.AuditKindStock, stockID, entity.AuditOpAddProductToStock, snap.Of(stock), after, userID); err != nil {
		return nil, err
	}
	return h, nil
}

func ensureStore(ctx context.Context, r repository.Repos, storeID *string) error {
	if storeID == nil {
		return nil
	}
	store, err := r.Stores.GetByID(ctx, *storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.ErrNotFound
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func toStockResponse(s *entity.Stock, holdings []*entity.Holding) *dto.StockResponse {
	if s == nil {
		return nil
	}
	return &dto.StockResponse{
		ID:        s.ID,
		StoreID:   s.StoreID,
		Name:      s.Name,
		City:      s.City,
		UF:        s.UF,
		ZipCode:   s.ZipCode,
		Address:   s.Address,
		Holdings:  toHoldingResponses(holdings),
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
