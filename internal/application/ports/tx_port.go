package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso (incluido pánico).
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// Clock fuente de la hora actual (time.Now en producción).
type Clock func() time.Time

// Locker candado distribuido opcional. Lock devuelve domain.ErrConflict si otro proceso lo tiene.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
