// Package memory implementa los puertos de persistencia en memoria con transacciones
// copy-on-begin: Run trabaja sobre una copia del estado y solo la publica si fn no falla.
// Las transacciones se serializan, lo que equivale a bloquear todas las filas.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/jhoicas/estoques-api/internal/application/ports"
	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

var _ ports.TxRunner = (*DB)(nil)

type holdingKey struct {
	productID string
	stockID   string
}

type state struct {
	products  map[string]entity.Product
	stocks    map[string]entity.Stock
	holdings  map[holdingKey]entity.Holding
	movements []entity.StockMovement
	stores    map[string]entity.Store
	orders    map[string]entity.Order
	items     map[string]entity.OrderItem
	audit     []entity.AuditEntry
}

func newState() *state {
	return &state{
		products: map[string]entity.Product{},
		stocks:   map[string]entity.Stock{},
		holdings: map[holdingKey]entity.Holding{},
		stores:   map[string]entity.Store{},
		orders:   map[string]entity.Order{},
		items:    map[string]entity.OrderItem{},
	}
}

func (s *state) clone() *state {
	return &state{
		products:  maps.Clone(s.products),
		stocks:    maps.Clone(s.stocks),
		holdings:  maps.Clone(s.holdings),
		movements: append([]entity.StockMovement(nil), s.movements...),
		stores:    maps.Clone(s.stores),
		orders:    maps.Clone(s.orders),
		items:     maps.Clone(s.items),
		audit:     append([]entity.AuditEntry(nil), s.audit...),
	}
}

// DB base de datos en memoria para los tests de casos de uso, handlers y consumidor.
type DB struct {
	txMu sync.Mutex // serializa transacciones
	mu   sync.RWMutex
	st   *state

	failMu sync.Mutex
	fail   map[string]error
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{st: newState(), fail: map[string]error{}}
}

// FailOn hace que la operación op (ej. "audit.create", "holdings.upsert") falle con err
// envuelto en domain.ErrPersistence. err nil elimina la falla.
func (db *DB) FailOn(op string, err error) {
	db.failMu.Lock()
	defer db.failMu.Unlock()
	if err == nil {
		delete(db.fail, op)
		return
	}
	db.fail[op] = err
}

func (db *DB) injected(op string) error {
	db.failMu.Lock()
	defer db.failMu.Unlock()
	if err, ok := db.fail[op]; ok {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}
	return nil
}

// Repos devuelve repositorios sobre el estado confirmado (equivalente al pool).
func (db *DB) Repos() repository.Repos {
	return newRepos(&view{db: db})
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no devuelve error.
func (db *DB) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	work := db.st.clone()
	db.mu.RUnlock()

	if err := fn(newRepos(&view{db: db, tx: work})); err != nil {
		return err
	}
	db.mu.Lock()
	db.st = work
	db.mu.Unlock()
	return nil
}

// view da acceso al estado: el de la transacción o el confirmado bajo lock.
type view struct {
	db *DB
	tx *state
}

func (v *view) read(op string, fn func(s *state) error) error {
	if err := v.db.injected(op); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.db.mu.RLock()
	defer v.db.mu.RUnlock()
	return fn(v.db.st)
}

func (v *view) write(op string, fn func(s *state) error) error {
	if err := v.db.injected(op); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	// Escritura fuera de transacción: autocommit sobre una copia.
	v.db.txMu.Lock()
	defer v.db.txMu.Unlock()
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	work := v.db.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	v.db.st = work
	return nil
}

func newRepos(v *view) repository.Repos {
	return repository.Repos{
		Products:   &productRepo{v},
		Stocks:     &stockRepo{v},
		Holdings:   &holdingRepo{v},
		Movements:  &movementRepo{v},
		Stores:     &storeRepo{v},
		Orders:     &orderRepo{v},
		OrderItems: &orderItemRepo{v},
		Audit:      &auditRepo{v},
	}
}
