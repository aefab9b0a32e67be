package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.WarehouseLookup = (*WarehouseLookupRepo)(nil)
var _ repository.SKULookup = (*SKULookupRepo)(nil)

// WarehouseLookupRepo resuelve bodegas contra las tablas del sistema
// maestro (colaborador externo del núcleo).
type WarehouseLookupRepo struct {
	q Querier
}

// NewWarehouseLookup construye el adaptador.
func NewWarehouseLookup(q Querier) *WarehouseLookupRepo {
	return &WarehouseLookupRepo{q: q}
}

// GetWarehouse devuelve la vista mínima de la bodega, o nil si no existe.
func (r *WarehouseLookupRepo) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx,
		`SELECT id, code, is_active FROM warehouses WHERE id = $1`, id).
		Scan(&w.ID, &w.Code, &w.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// SKULookupRepo resuelve la unidad base y clase de conversión de un SKU.
type SKULookupRepo struct {
	q Querier
}

// NewSKULookup construye el adaptador.
func NewSKULookup(q Querier) *SKULookupRepo {
	return &SKULookupRepo{q: q}
}

// GetSKUUnitInfo devuelve unidad base y clase del SKU, o nil si no existe.
func (r *SKULookupRepo) GetSKUUnitInfo(ctx context.Context, skuID string) (*entity.SKUUnitInfo, error) {
	var info entity.SKUUnitInfo
	err := r.q.QueryRow(ctx,
		`SELECT id, base_uom_code, uom_class_code FROM item_skus WHERE id = $1`, skuID).
		Scan(&info.SKUID, &info.BaseUOMCode, &info.UOMClassCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sku unit info: %w", err)
	}
	return &info, nil
}
