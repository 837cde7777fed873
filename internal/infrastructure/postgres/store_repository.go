package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación de StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

const storeColumns = `id, name, cnpj, email, phone_number, city, uf, zip_code, address, image, balance, created_by, created_at, updated_at`

// Create persiste una nueva tienda.
func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	query := `
		INSERT INTO stores (` + storeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.CNPJ, s.Email, s.PhoneNumber, s.City, s.UF, s.ZipCode, s.Address, s.Image,
		s.Balance, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistErr("insert store", err)
	}
	return nil
}

// GetByID obtiene una tienda por ID.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la tienda y bloquea la fila (SELECT FOR UPDATE).
func (r *StoreRepo) GetForUpdate(ctx context.Context, id string) (*entity.Store, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *StoreRepo) get(ctx context.Context, id, lock string) (*entity.Store, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanStore(r.q.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`+lock, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("get store", err)
	}
	return s, nil
}

// Update actualiza los datos de la tienda sin tocar balance.
func (r *StoreRepo) Update(ctx context.Context, s *entity.Store) error {
	query := `
		UPDATE stores SET name = $2, cnpj = $3, email = $4, phone_number = $5, city = $6, uf = $7,
			zip_code = $8, address = $9, image = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, s.Name, s.CNPJ, s.Email, s.PhoneNumber, s.City, s.UF, s.ZipCode, s.Address, s.Image, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistErr("update store", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateBalance fija el saldo (usado por la liquidación, con la fila ya bloqueada).
func (r *StoreRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE stores SET balance = $2, updated_at = now() WHERE id = $1`, id, balance)
	if err != nil {
		return persistErr("update store balance", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la tienda; sus estoques caen en cascada. Los pedidos la restringen (FK RESTRICT).
func (r *StoreRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrStoreHasOrders
		}
		return persistErr("delete store", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista tiendas, más recientes primero.
func (r *StoreRepo) List(ctx context.Context, createdBy string, limit, offset int) ([]*entity.Store, error) {
	query := `
		SELECT ` + storeColumns + ` FROM stores
		WHERE ($1 = '' OR created_by = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, createdBy, limit, offset)
	if err != nil {
		return nil, persistErr("list stores", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, persistErr("scan store", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list stores", err)
	}
	return list, nil
}

// ExistsByCNPJOrEmail indica si otra tienda ya usa el CNPJ o el email.
func (r *StoreRepo) ExistsByCNPJOrEmail(ctx context.Context, cnpj, email, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stores
			WHERE (cnpj = $1 OR email = $2) AND ($3 = '' OR id::text <> $3)
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, cnpj, email, excludeID).Scan(&exists); err != nil {
		return false, persistErr("check store uniqueness", err)
	}
	return exists, nil
}

func scanStore(row rowScanner) (*entity.Store, error) {
	var s entity.Store
	err := row.Scan(
		&s.ID, &s.Name, &s.CNPJ, &s.Email, &s.PhoneNumber, &s.City, &s.UF, &s.ZipCode, &s.Address, &s.Image,
		&s.Balance, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
