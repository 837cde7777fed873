package postgres

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ repository.OrderItemRepository = (*OrderItemRepo)(nil)

// OrderItemRepo implementación de OrderItemRepository sobre PostgreSQL.
type OrderItemRepo struct {
	q Querier
}

// NewOrderItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderItemRepository(q Querier) *OrderItemRepo {
	return &OrderItemRepo{q: q}
}

const itemColumns = `id, order_id, product_id, stock_id, unit_price, quantity, subtotal, created_at, updated_at`

// Create persiste un ítem.
func (r *OrderItemRepo) Create(ctx context.Context, it *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.OrderID, it.ProductID, it.StockID, it.UnitPrice, it.Quantity, it.Subtotal, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemExists
		}
		return persistErr("insert order item", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *OrderItemRepo) GetByID(ctx context.Context, id string) (*entity.OrderItem, error) {
	if !validID(id) {
		return nil, nil
	}
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM order_items WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("get order item", err)
	}
	return it, nil
}

// FindByProduct obtiene el ítem del pedido para el producto y estoque dados.
func (r *OrderItemRepo) FindByProduct(ctx context.Context, orderID, productID, stockID string) (*entity.OrderItem, error) {
	if !validID(orderID) || !validID(productID) || !validID(stockID) {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 AND product_id = $2 AND stock_id = $3`
	it, err := scanItem(r.q.QueryRow(ctx, query, orderID, productID, stockID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, persistErr("find order item", err)
	}
	return it, nil
}

// Update actualiza estoque, precio, cantidad y subtotal.
func (r *OrderItemRepo) Update(ctx context.Context, it *entity.OrderItem) error {
	query := `
		UPDATE order_items SET stock_id = $2, unit_price = $3, quantity = $4, subtotal = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, it.ID, it.StockID, it.UnitPrice, it.Quantity, it.Subtotal, it.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemExists
		}
		return persistErr("update order item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un ítem.
func (r *OrderItemRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete order item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOrder lista los ítems de un pedido en orden de creación.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	if !validID(orderID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, persistErr("list order items", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, persistErr("scan order item", err)
		}
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list order items", err)
	}
	return list, nil
}

func scanItem(row rowScanner) (*entity.OrderItem, error) {
	var it entity.OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.StockID, &it.UnitPrice, &it.Quantity, &it.Subtotal,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
