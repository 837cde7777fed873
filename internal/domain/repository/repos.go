package repository

// Repos agrupa los repositorios atados a una misma transacción (o al pool, fuera de ella).
type Repos struct {
	Products   ProductRepository
	Stocks     StockRepository
	Holdings   HoldingRepository
	Movements  StockMovementRepository
	Stores     StoreRepository
	Orders     OrderRepository
	OrderItems OrderItemRepository
	Audit      AuditRepository
}

// Convención: GetByID y GetForUpdate devuelven nil, nil cuando la fila no existe;
// el caso de uso decide si eso es domain.ErrNotFound.
