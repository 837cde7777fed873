package postgres

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, user_id, store_id, status, order_date, total_value, created_at, updated_at`

// Create persiste un pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.UserID, o.StoreID, o.Status, o.OrderDate, o.TotalValue, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return persistErr("insert order", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene el pedido y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, id, lock string) (*entity.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`+lock, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("get order", err)
	}
	return o, nil
}

// Update actualiza tienda, estado, fecha y total.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET store_id = $2, status = $3, order_date = $4, total_value = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, o.ID, o.StoreID, o.Status, o.OrderDate, o.TotalValue, o.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return persistErr("update order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un pedido (los ítems caen en cascada).
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista pedidos del usuario, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, persistErr("list orders", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, persistErr("scan order", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list orders", err)
	}
	return list, nil
}

// ExistsByStore indica si la tienda tiene pedidos.
func (r *OrderRepo) ExistsByStore(ctx context.Context, storeID string) (bool, error) {
	if !validID(storeID) {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE store_id = $1)`, storeID).Scan(&exists)
	if err != nil {
		return false, persistErr("check store orders", err)
	}
	return exists, nil
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.UserID, &o.StoreID, &o.Status, &o.OrderDate, &o.TotalValue, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
