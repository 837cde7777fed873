package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.HoldingRepository = (*HoldingRepo)(nil)

// HoldingRepo implementación de HoldingRepository sobre la tabla product_stock.
type HoldingRepo struct {
	q Querier
}

// NewHoldingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHoldingRepository(q Querier) *HoldingRepo {
	return &HoldingRepo{q: q}
}

// Get obtiene la cantidad de un producto en un estoque.
func (r *HoldingRepo) Get(ctx context.Context, productID, stockID string) (*entity.Holding, error) {
	return r.get(ctx, productID, stockID, "")
}

// GetForUpdate obtiene el holding y bloquea la fila para update (SELECT FOR UPDATE).
func (r *HoldingRepo) GetForUpdate(ctx context.Context, productID, stockID string) (*entity.Holding, error) {
	return r.get(ctx, productID, stockID, " FOR UPDATE")
}

func (r *HoldingRepo) get(ctx context.Context, productID, stockID, lock string) (*entity.Holding, error) {
	if !validID(productID) || !validID(stockID) {
		return nil, nil
	}
	query := `
		SELECT product_id, stock_id, quantity, updated_at
		FROM product_stock WHERE product_id = $1 AND stock_id = $2` + lock
	var h entity.Holding
	err := r.q.QueryRow(ctx, query, productID, stockID).Scan(&h.ProductID, &h.StockID, &h.Quantity, &h.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("get holding", err)
	}
	return &h, nil
}

// Create inserta un holding nuevo; falla si el producto ya está en el estoque.
func (r *HoldingRepo) Create(ctx context.Context, h *entity.Holding) error {
	query := `
		INSERT INTO product_stock (product_id, stock_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, h.ProductID, h.StockID, h.Quantity, h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrHoldingExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return persistErr("insert holding", err)
	}
	return nil
}

// LockOrCreate asegura la fila (INSERT ... ON CONFLICT DO NOTHING) y luego la bloquea.
// Si otra transacción la insertó en paralelo, el SELECT FOR UPDATE espera su commit y
// lee la cantidad ya confirmada.
func (r *HoldingRepo) LockOrCreate(ctx context.Context, productID, stockID string, now time.Time) (*entity.Holding, error) {
	if !validID(productID) || !validID(stockID) {
		return nil, domain.ErrNotFound
	}
	query := `
		INSERT INTO product_stock (product_id, stock_id, quantity, updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (product_id, stock_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, stockID, now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, persistErr("ensure holding", err)
	}
	h, err := r.GetForUpdate(ctx, productID, stockID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, persistErr("ensure holding", fmt.Errorf("fila %s/%s no visible tras insertar", productID, stockID))
	}
	return h, nil
}

// Upsert escribe la cantidad (por producto y estoque) de una fila bloqueada.
func (r *HoldingRepo) Upsert(ctx context.Context, h *entity.Holding) error {
	query := `
		INSERT INTO product_stock (product_id, stock_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, stock_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, h.ProductID, h.StockID, h.Quantity, h.UpdatedAt)
	if err != nil {
		return persistErr("upsert holding", err)
	}
	return nil
}

// ListByStock lista los productos de un estoque.
func (r *HoldingRepo) ListByStock(ctx context.Context, stockID string) ([]*entity.Holding, error) {
	if !validID(stockID) {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT product_id, stock_id, quantity, updated_at
		FROM product_stock WHERE stock_id = $1 ORDER BY product_id`, stockID)
}

// ListByProduct lista los estoques donde está un producto.
func (r *HoldingRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Holding, error) {
	if !validID(productID) {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT product_id, stock_id, quantity, updated_at
		FROM product_stock WHERE product_id = $1 ORDER BY stock_id`, productID)
}

func (r *HoldingRepo) list(ctx context.Context, query string, arg string) ([]*entity.Holding, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, persistErr("list holdings", err)
	}
	defer rows.Close()
	var list []*entity.Holding
	for rows.Next() {
		var h entity.Holding
		if err := rows.Scan(&h.ProductID, &h.StockID, &h.Quantity, &h.UpdatedAt); err != nil {
			return nil, persistErr("scan holding", err)
		}
		list = append(list, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list holdings", err)
	}
	return list, nil
}
