package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un SKU en una bodega. Una fila inexistente
// equivale a stock cero.
func (r *StockRepo) Get(ctx context.Context, warehouseID, skuID string) (*entity.StockEntry, error) {
	query := `
		SELECT warehouse_id, item_sku_id, quantity, reserved_qty, uom_code, updated_at
		FROM warehouse_stock WHERE warehouse_id = $1 AND item_sku_id = $2`
	return r.scanOne(ctx, query, warehouseID, skuID)
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE) para
// serializar el read-modify-write dentro de la transacción.
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, skuID string) (*entity.StockEntry, error) {
	query := `
		SELECT warehouse_id, item_sku_id, quantity, reserved_qty, uom_code, updated_at
		FROM warehouse_stock WHERE warehouse_id = $1 AND item_sku_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, query, warehouseID, skuID)
}

// Upsert inserta o actualiza cantidades (por bodega y SKU).
func (r *StockRepo) Upsert(ctx context.Context, entry *entity.StockEntry) error {
	query := `
		INSERT INTO warehouse_stock (warehouse_id, item_sku_id, quantity, reserved_qty, uom_code, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (warehouse_id, item_sku_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved_qty = EXCLUDED.reserved_qty,
			uom_code = EXCLUDED.uom_code, updated_at = now()`
	_, err := r.q.Exec(ctx, query, entry.WarehouseID, entry.ItemSKUID, entry.Quantity, entry.ReservedQty, entry.UOMCode)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (r *StockRepo) scanOne(ctx context.Context, query, warehouseID, skuID string) (*entity.StockEntry, error) {
	var s entity.StockEntry
	err := r.q.QueryRow(ctx, query, warehouseID, skuID).Scan(
		&s.WarehouseID, &s.ItemSKUID, &s.Quantity, &s.ReservedQty, &s.UOMCode, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{
				WarehouseID: warehouseID,
				ItemSKUID:   skuID,
				Quantity:    decimal.Zero,
				ReservedQty: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}
