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

// StoreUseCase casos de uso CRUD para tiendas. El saldo solo cambia al liquidar pedidos.
type StoreUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	recorder *audit.Recorder
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(txRunner ports.TxRunner, repos repository.Repos, recorder *audit.Recorder) *StoreUseCase {
	return &StoreUseCase{txRunner: txRunner, repos: repos, recorder: recorder}
}

// Create crea una tienda con saldo 0. CNPJ y email son únicos.
func (uc *StoreUseCase) Create(ctx context.Context, userID string, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.CNPJ) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := domain.Now()
	store := &entity.Store{
		ID:          uuid.New().String(),
		Name:        in.Name,
		CNPJ:        in.CNPJ,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		City:        in.City,
		UF:          in.UF,
		ZipCode:     in.ZipCode,
		Address:     in.Address,
		Image:       in.Image,
		Balance:     decimal.Zero,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		dup, err := r.Stores.ExistsByCNPJOrEmail(ctx, store.CNPJ, store.Email, "")
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrDuplicate
		}
		if err := r.Stores.Create(ctx, store); err != nil {
			return err
		}
		return uc.recorder.Created(ctx, r.Audit, entity.AuditKindStore, store.ID, store, userID)
	})
	if err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// GetByID obtiene una tienda por ID.
func (uc *StoreUseCase) GetByID(ctx context.Context, id string) (*dto.StoreResponse, error) {
	store, err := uc.repos.Stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	return toStoreResponse(store), nil
}

// Update actualiza los datos de una tienda (no el saldo).
func (uc *StoreUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateStoreRequest) (*dto.StoreResponse, error) {
	var updated *entity.Store
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		store, err := r.Stores.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrNotFound
		}
		before := store.Snapshot()
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.ErrInvalidInput
			}
			store.Name = *in.Name
		}
		if in.CNPJ != nil {
			store.CNPJ = *in.CNPJ
		}
		if in.Email != nil {
			store.Email = *in.Email
		}
		if in.PhoneNumber != nil {
			store.PhoneNumber = *in.PhoneNumber
		}
		if in.City != nil {
			store.City = *in.City
		}
		if in.UF != nil {
			store.UF = *in.UF
		}
		if in.ZipCode != nil {
			store.ZipCode = *in.ZipCode
		}
		if in.Address != nil {
			store.Address = *in.Address
		}
		if in.Image != nil {
			store.Image = *in.Image
		}
		if in.CNPJ != nil || in.Email != nil {
			dup, err := r.Stores.ExistsByCNPJOrEmail(ctx, store.CNPJ, store.Email, store.ID)
			if err != nil {
				return err
			}
			if dup {
				return domain.ErrDuplicate
			}
		}
		store.UpdatedAt = domain.Now()
		if err := r.Stores.Update(ctx, store); err != nil {
			return err
		}
		updated = store
		return uc.recorder.Updated(ctx, r.Audit, entity.AuditKindStore, id, before, store, userID)
	})
	if err != nil {
		return nil, err
	}
	return toStoreResponse(updated), nil
}

// List lista tiendas con paginación.
func (uc *StoreUseCase) List(ctx context.Context, createdBy string, limit, offset int) (*dto.StoreListResponse, error) {
	list, err := uc.repos.Stores.List(ctx, createdBy, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStoreResponse(s))
	}
	return &dto.StoreListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una tienda y sus estoques. Prohibido si tiene pedidos.
func (uc *StoreUseCase) Delete(ctx context.Context, id, userID string) error {
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		store, err := r.Stores.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrNotFound
		}
		hasOrders, err := r.Orders.ExistsByStore(ctx, id)
		if err != nil {
			return err
		}
		if hasOrders {
			return domain.ErrStoreHasOrders
		}
		stocks, err := r.Stocks.ListByStore(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Stores.Delete(ctx, id); err != nil {
			return err
		}
		for _, s := range stocks {
			if err := uc.recorder.Deleted(ctx, r.Audit, entity.AuditKindStock, s.ID, s.Snapshot(), userID); err != nil {
				return err
			}
		}
		return uc.recorder.Deleted(ctx, r.Audit, entity.AuditKindStore, id, store.Snapshot(), userID)
	})
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	if s == nil {
		return nil
	}
	return &dto.StoreResponse{
		ID:          s.ID,
		Name:        s.Name,
		CNPJ:        s.CNPJ,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		City:        s.City,
		UF:          s.UF,
		ZipCode:     s.ZipCode,
		Address:     s.Address,
		Image:       s.Image,
		Balance:     s.Balance,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
