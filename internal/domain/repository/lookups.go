package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// Puertos hacia colaboradores externos del núcleo (el CRUD de bodegas, el
// catálogo de SKUs y los subsistemas de órdenes viven fuera de este módulo).

// WarehouseLookup valida que una bodega exista y esté activa.
type WarehouseLookup interface {
	GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error)
}

// SKULookup resuelve la unidad base y la clase de conversión de un SKU.
type SKULookup interface {
	GetSKUUnitInfo(ctx context.Context, skuID string) (*entity.SKUUnitInfo, error)
}

// OrderLookup consulta la posición abierta de una orden externa. El chequeo
// contra la cantidad abierta es consultivo: pertenece al subsistema de
// órdenes, no a los invariantes del ledger.
type OrderLookup interface {
	GetOpenLine(ctx context.Context, orderID, skuID string) (*entity.OpenOrderLine, error)
}
