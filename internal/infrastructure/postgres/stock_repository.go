package postgres

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository (estoques) sobre PostgreSQL.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de estoques. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, store_id, name, city, uf, zip_code, address, created_by, created_at, updated_at`

// Create persiste un nuevo estoque.
func (r *StockRepo) Create(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stocks (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.StoreID, s.Name, s.City, s.UF, s.ZipCode, s.Address,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return persistErr("insert stock", err)
	}
	return nil
}

// GetByID obtiene un estoque por ID.
func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.Stock, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("get stock", err)
	}
	return s, nil
}

// Update actualiza un estoque existente.
func (r *StockRepo) Update(ctx context.Context, s *entity.Stock) error {
	query := `
		UPDATE stocks SET store_id = $2, name = $3, city = $4, uf = $5, zip_code = $6, address = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.StoreID, s.Name, s.City, s.UF, s.ZipCode, s.Address, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return persistErr("update stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el estoque; holdings y movimientos que lo referencian caen en cascada.
func (r *StockRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM stocks WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista estoques, más recientes primero.
func (r *StockRepo) List(ctx context.Context, createdBy string, limit, offset int) ([]*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + ` FROM stocks
		WHERE ($1 = '' OR created_by = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, createdBy, limit, offset)
}

// ListByStore lista los estoques de una tienda.
func (r *StockRepo) ListByStore(ctx context.Context, storeID string) ([]*entity.Stock, error) {
	if !validID(storeID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+stockColumns+` FROM stocks WHERE store_id = $1 ORDER BY created_at`, storeID)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list stocks", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, persistErr("scan stock", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list stocks", err)
	}
	return list, nil
}

func scanStock(row rowScanner) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.StoreID, &s.Name, &s.City, &s.UF, &s.ZipCode, &s.Address,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
