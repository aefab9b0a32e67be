package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio de stock atado a esa tx. Garantiza que todo lote de deltas se
// aplique de forma atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error
}

// AvailabilityCache cachea la cantidad disponible por (bodega, SKU). Las
// mutaciones del ledger invalidan las claves afectadas.
type AvailabilityCache interface {
	Get(ctx context.Context, warehouseID, skuID string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, warehouseID, skuID string, available decimal.Decimal, ttl time.Duration) error
	Invalidate(ctx context.Context, warehouseID, skuID string) error
}

// NoopCache desactiva el cacheo (tests, despliegues sin Redis).
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, string) (decimal.Decimal, bool, error) {
	return decimal.Decimal{}, false, nil
}

func (NoopCache) Set(context.Context, string, string, decimal.Decimal, time.Duration) error {
	return nil
}

func (NoopCache) Invalidate(context.Context, string, string) error { return nil }
