package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por
// bodega+SKU. GetForUpdate bloquea la fila (SELECT FOR UPDATE) para
// serializar el read-modify-write dentro de una transacción.
type StockRepository interface {
	Get(ctx context.Context, warehouseID, skuID string) (*entity.StockEntry, error)
	GetForUpdate(ctx context.Context, warehouseID, skuID string) (*entity.StockEntry, error)
	Upsert(ctx context.Context, entry *entity.StockEntry) error
}
