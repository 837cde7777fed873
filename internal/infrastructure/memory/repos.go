package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func newestFirst[T any](list []*T, created func(*T) int64) {
	slices.SortStableFunc(list, func(a, b *T) int { return cmp.Compare(created(b), created(a)) })
}

// ---- products ----

type productRepo struct{ v *view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write("products.create", func(s *state) error {
		if _, ok := s.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range s.products {
			if other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		s.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read("products.get", func(s *state) error {
		if p, ok := s.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.write("products.update", func(s *state) error {
		if _, ok := s.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		for id, other := range s.products {
			if id != p.ID && other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		s.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.v.write("products.delete", func(s *state) error {
		if _, ok := s.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(s.products, id)
		for k := range s.holdings {
			if k.productID == id {
				delete(s.holdings, k)
			}
		}
		s.movements = slices.DeleteFunc(s.movements, func(m entity.StockMovement) bool { return m.ProductID == id })
		return nil
	})
}

func (r *productRepo) List(_ context.Context, createdBy string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read("products.list", func(s *state) error {
		for _, p := range s.products {
			if createdBy == "" || p.CreatedBy == createdBy {
				out = append(out, &p)
			}
		}
		return nil
	})
	newestFirst(out, func(p *entity.Product) int64 { return p.CreatedAt.UnixNano() })
	return page(out, limit, offset), err
}

// ---- stocks ----

type stockRepo struct{ v *view }

func (r *stockRepo) Create(_ context.Context, st *entity.Stock) error {
	return r.v.write("stocks.create", func(s *state) error {
		if st.StoreID != nil {
			if _, ok := s.stores[*st.StoreID]; !ok {
				return domain.ErrNotFound
			}
		}
		s.stocks[st.ID] = *st
		return nil
	})
}

func (r *stockRepo) GetByID(_ context.Context, id string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.v.read("stocks.get", func(s *state) error {
		if st, ok := s.stocks[id]; ok {
			out = &st
		}
		return nil
	})
	return out, err
}

func (r *stockRepo) Update(_ context.Context, st *entity.Stock) error {
	return r.v.write("stocks.update", func(s *state) error {
		if _, ok := s.stocks[st.ID]; !ok {
			return domain.ErrNotFound
		}
		s.stocks[st.ID] = *st
		return nil
	})
}

func (r *stockRepo) Delete(_ context.Context, id string) error {
	return r.v.write("stocks.delete", func(s *state) error {
		if _, ok := s.stocks[id]; !ok {
			return domain.ErrNotFound
		}
		deleteStock(s, id)
		return nil
	})
}

// deleteStock aplica las cascadas de la tabla stocks.
func deleteStock(s *state, id string) {
	delete(s.stocks, id)
	for k := range s.holdings {
		if k.stockID == id {
			delete(s.holdings, k)
		}
	}
	s.movements = slices.DeleteFunc(s.movements, func(m entity.StockMovement) bool {
		return (m.OriginStockID != nil && *m.OriginStockID == id) ||
			(m.DestinationStockID != nil && *m.DestinationStockID == id)
	})
}

func (r *stockRepo) List(_ context.Context, createdBy string, limit, offset int) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := r.v.read("stocks.list", func(s *state) error {
		for _, st := range s.stocks {
			if createdBy == "" || st.CreatedBy == createdBy {
				out = append(out, &st)
			}
		}
		return nil
	})
	newestFirst(out, func(st *entity.Stock) int64 { return st.CreatedAt.UnixNano() })
	return page(out, limit, offset), err
}

func (r *stockRepo) ListByStore(_ context.Context, storeID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := r.v.read("stocks.list", func(s *state) error {
		for _, st := range s.stocks {
			if st.StoreID != nil && *st.StoreID == storeID {
				out = append(out, &st)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Stock) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}

// ---- holdings ----

type holdingRepo struct{ v *view }

func (r *holdingRepo) Get(_ context.Context, productID, stockID string) (*entity.Holding, error) {
	var out *entity.Holding
	err := r.v.read("holdings.get", func(s *state) error {
		if h, ok := s.holdings[holdingKey{productID, stockID}]; ok {
			out = &h
		}
		return nil
	})
	return out, err
}

func (r *holdingRepo) GetForUpdate(ctx context.Context, productID, stockID string) (*entity.Holding, error) {
	return r.Get(ctx, productID, stockID)
}

func (r *holdingRepo) Create(_ context.Context, h *entity.Holding) error {
	return r.v.write("holdings.create", func(s *state) error {
		key := holdingKey{h.ProductID, h.StockID}
		if _, ok := s.holdings[key]; ok {
			return domain.ErrHoldingExists
		}
		if err := checkHolding(s, h); err != nil {
			return err
		}
		s.holdings[key] = *h
		return nil
	})
}

func (r *holdingRepo) LockOrCreate(_ context.Context, productID, stockID string, now time.Time) (*entity.Holding, error) {
	var out entity.Holding
	err := r.v.write("holdings.lock_or_create", func(s *state) error {
		key := holdingKey{productID, stockID}
		h, ok := s.holdings[key]
		if !ok {
			h = entity.Holding{ProductID: productID, StockID: stockID, UpdatedAt: now}
			if err := checkHolding(s, &h); err != nil {
				return err
			}
			s.holdings[key] = h
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *holdingRepo) Upsert(_ context.Context, h *entity.Holding) error {
	return r.v.write("holdings.upsert", func(s *state) error {
		if err := checkHolding(s, h); err != nil {
			return err
		}
		s.holdings[holdingKey{h.ProductID, h.StockID}] = *h
		return nil
	})
}

// checkHolding replica las FK y el CHECK (quantity >= 0) de product_stock.
func checkHolding(s *state, h *entity.Holding) error {
	if _, ok := s.products[h.ProductID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.stocks[h.StockID]; !ok {
		return domain.ErrNotFound
	}
	if h.Quantity < 0 {
		return domain.ErrPersistence
	}
	return nil
}

func (r *holdingRepo) ListByStock(_ context.Context, stockID string) ([]*entity.Holding, error) {
	return r.list(func(h entity.Holding) bool { return h.StockID == stockID })
}

func (r *holdingRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Holding, error) {
	return r.list(func(h entity.Holding) bool { return h.ProductID == productID })
}

func (r *holdingRepo) list(match func(entity.Holding) bool) ([]*entity.Holding, error) {
	var out []*entity.Holding
	err := r.v.read("holdings.list", func(s *state) error {
		for _, h := range s.holdings {
			if match(h) {
				out = append(out, &h)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Holding) int {
		return cmp.Or(cmp.Compare(a.ProductID, b.ProductID), cmp.Compare(a.StockID, b.StockID))
	})
	return out, err
}

// ---- movements ----

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write("movements.create", func(s *state) error {
		if _, ok := s.products[m.ProductID]; !ok {
			return domain.ErrNotFound
		}
		s.movements = append(s.movements, *m)
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.v.read("movements.get", func(s *state) error {
		for _, m := range s.movements {
			if m.ID == id {
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) List(_ context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	out, err := r.list(func(entity.StockMovement) bool { return true })
	return page(out, limit, offset), err
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.list(func(m entity.StockMovement) bool { return m.ProductID == productID })
}

// list devuelve los movimientos del más reciente al más antiguo (orden de inserción inverso).
func (r *movementRepo) list(match func(entity.StockMovement) bool) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.read("movements.list", func(s *state) error {
		for i := len(s.movements) - 1; i >= 0; i-- {
			if m := s.movements[i]; match(m) {
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

// ---- stores ----

type storeRepo struct{ v *view }

func (r *storeRepo) Create(_ context.Context, st *entity.Store) error {
	return r.v.write("stores.create", func(s *state) error {
		if conflictStore(s, st.CNPJ, st.Email, "") {
			return domain.ErrDuplicate
		}
		s.stores[st.ID] = *st
		return nil
	})
}

func (r *storeRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	var out *entity.Store
	err := r.v.read("stores.get", func(s *state) error {
		if st, ok := s.stores[id]; ok {
			out = &st
		}
		return nil
	})
	return out, err
}

func (r *storeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Store, error) {
	return r.GetByID(ctx, id)
}

func (r *storeRepo) Update(_ context.Context, st *entity.Store) error {
	return r.v.write("stores.update", func(s *state) error {
		cur, ok := s.stores[st.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if conflictStore(s, st.CNPJ, st.Email, st.ID) {
			return domain.ErrDuplicate
		}
		next := *st
		next.Balance = cur.Balance
		s.stores[st.ID] = next
		return nil
	})
}

func (r *storeRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	return r.v.write("stores.update_balance", func(s *state) error {
		cur, ok := s.stores[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Balance = balance
		s.stores[id] = cur
		return nil
	})
}

func (r *storeRepo) Delete(_ context.Context, id string) error {
	return r.v.write("stores.delete", func(s *state) error {
		if _, ok := s.stores[id]; !ok {
			return domain.ErrNotFound
		}
		for _, o := range s.orders {
			if o.StoreID == id {
				return domain.ErrStoreHasOrders
			}
		}
		delete(s.stores, id)
		for sid, st := range s.stocks {
			if st.StoreID != nil && *st.StoreID == id {
				deleteStock(s, sid)
			}
		}
		return nil
	})
}

func (r *storeRepo) List(_ context.Context, createdBy string, limit, offset int) ([]*entity.Store, error) {
	var out []*entity.Store
	err := r.v.read("stores.list", func(s *state) error {
		for _, st := range s.stores {
			if createdBy == "" || st.CreatedBy == createdBy {
				out = append(out, &st)
			}
		}
		return nil
	})
	newestFirst(out, func(st *entity.Store) int64 { return st.CreatedAt.UnixNano() })
	return page(out, limit, offset), err
}

func (r *storeRepo) ExistsByCNPJOrEmail(_ context.Context, cnpj, email, excludeID string) (bool, error) {
	var exists bool
	err := r.v.read("stores.exists", func(s *state) error {
		exists = conflictStore(s, cnpj, email, excludeID)
		return nil
	})
	return exists, err
}

func conflictStore(s *state, cnpj, email, excludeID string) bool {
	for id, st := range s.stores {
		if id != excludeID && (st.CNPJ == cnpj || st.Email == email) {
			return true
		}
	}
	return false
}

// ---- orders ----

type orderRepo struct{ v *view }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.write("orders.create", func(s *state) error {
		if _, ok := s.stores[o.StoreID]; !ok {
			return domain.ErrNotFound
		}
		s.orders[o.ID] = *o
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.read("orders.get", func(s *state) error {
		if o, ok := s.orders[id]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.v.write("orders.update", func(s *state) error {
		if _, ok := s.orders[o.ID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := s.stores[o.StoreID]; !ok {
			return domain.ErrNotFound
		}
		s.orders[o.ID] = *o
		return nil
	})
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	return r.v.write("orders.delete", func(s *state) error {
		if _, ok := s.orders[id]; !ok {
			return domain.ErrNotFound
		}
		delete(s.orders, id)
		for itemID, it := range s.items {
			if it.OrderID == id {
				delete(s.items, itemID)
			}
		}
		return nil
	})
}

func (r *orderRepo) List(_ context.Context, userID string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.v.read("orders.list", func(s *state) error {
		for _, o := range s.orders {
			if userID == "" || o.UserID == userID {
				out = append(out, &o)
			}
		}
		return nil
	})
	newestFirst(out, func(o *entity.Order) int64 { return o.CreatedAt.UnixNano() })
	return page(out, limit, offset), err
}

func (r *orderRepo) ExistsByStore(_ context.Context, storeID string) (bool, error) {
	var exists bool
	err := r.v.read("orders.exists", func(s *state) error {
		for _, o := range s.orders {
			if o.StoreID == storeID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

// ---- order items ----

type orderItemRepo struct{ v *view }

func (r *orderItemRepo) Create(_ context.Context, it *entity.OrderItem) error {
	return r.v.write("order_items.create", func(s *state) error {
		if _, ok := s.orders[it.OrderID]; !ok {
			return domain.ErrNotFound
		}
		if duplicateItem(s, it) {
			return domain.ErrItemExists
		}
		s.items[it.ID] = *it
		return nil
	})
}

func (r *orderItemRepo) GetByID(_ context.Context, id string) (*entity.OrderItem, error) {
	var out *entity.OrderItem
	err := r.v.read("order_items.get", func(s *state) error {
		if it, ok := s.items[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *orderItemRepo) Update(_ context.Context, it *entity.OrderItem) error {
	return r.v.write("order_items.update", func(s *state) error {
		if _, ok := s.items[it.ID]; !ok {
			return domain.ErrNotFound
		}
		if duplicateItem(s, it) {
			return domain.ErrItemExists
		}
		s.items[it.ID] = *it
		return nil
	})
}

func (r *orderItemRepo) Delete(_ context.Context, id string) error {
	return r.v.write("order_items.delete", func(s *state) error {
		if _, ok := s.items[id]; !ok {
			return domain.ErrNotFound
		}
		delete(s.items, id)
		return nil
	})
}

func (r *orderItemRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	err := r.v.read("order_items.list", func(s *state) error {
		for _, it := range s.items {
			if it.OrderID == orderID {
				out = append(out, &it)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.OrderItem) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, err
}

func (r *orderItemRepo) FindByProduct(_ context.Context, orderID, productID, stockID string) (*entity.OrderItem, error) {
	var out *entity.OrderItem
	err := r.v.read("order_items.find", func(s *state) error {
		for _, it := range s.items {
			if it.OrderID == orderID && it.ProductID == productID && it.StockID == stockID {
				out = &it
				return nil
			}
		}
		return nil
	})
	return out, err
}

func duplicateItem(s *state, it *entity.OrderItem) bool {
	for id, other := range s.items {
		if id != it.ID && other.OrderID == it.OrderID && other.ProductID == it.ProductID && other.StockID == it.StockID {
			return true
		}
	}
	return false
}

// ---- audit ----

type auditRepo struct{ v *view }

func (r *auditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	return r.v.write("audit.create", func(s *state) error {
		s.audit = append(s.audit, *e)
		return nil
	})
}

func (r *auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	err := r.v.read("audit.list", func(s *state) error {
		for i := len(s.audit) - 1; i >= 0; i-- {
			e := s.audit[i]
			if f.EntityKind != "" && e.EntityKind != f.EntityKind {
				continue
			}
			if f.EntityID != "" && e.EntityID != f.EntityID {
				continue
			}
			if f.ChangedBy != "" && e.ChangedBy != f.ChangedBy {
				continue
			}
			out = append(out, &e)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}
