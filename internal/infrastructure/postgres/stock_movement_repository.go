package postgres

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos. Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, origin_stock_id, destination_stock_id, quantity, movement_type, observation, created_by, created_at`

// Create registra un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.OriginStockID, m.DestinationStockID, m.Quantity, m.Type,
		m.Observation, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return persistErr("insert stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("get stock movement", err)
	}
	return m, nil
}

// List lista movimientos, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

// ListByProduct lista los movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if !validID(productID) {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1 ORDER BY created_at DESC`, productID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, persistErr("scan stock movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list stock movements", err)
	}
	return list, nil
}

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.OriginStockID, &m.DestinationStockID, &m.Quantity, &m.Type,
		&m.Observation, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
