package ports

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza que negocio y auditoría
// se confirman juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
}
