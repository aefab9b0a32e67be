package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
)

// StockEntry es el stock actual de un SKU en una bodega. Quantity y
// ReservedQty siempre están en la unidad base del SKU; UOMCode es solo la
// unidad de despliegue. Invariantes: Quantity ≥ 0 y 0 ≤ ReservedQty ≤ Quantity.
type StockEntry struct {
	WarehouseID string
	ItemSKUID   string
	Quantity    decimal.Decimal
	ReservedQty decimal.Decimal
	UOMCode     string
	UpdatedAt   time.Time
}

// Available es la cantidad disponible (derivada, nunca almacenada).
func (s *StockEntry) Available() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQty)
}

// Apply suma un delta firmado a Quantity. Rechaza el cambio si la nueva
// cantidad cae por debajo de cero o de lo ya reservado; el estado queda
// intacto en ese caso.
func (s *StockEntry) Apply(delta decimal.Decimal) error {
	newQty := s.Quantity.Add(delta)
	if newQty.IsNegative() || newQty.LessThan(s.ReservedQty) {
		return &domain.InsufficientStockError{
			WarehouseID: s.WarehouseID,
			SKUID:       s.ItemSKUID,
			Requested:   delta.Neg(),
			Available:   s.Available(),
		}
	}
	s.Quantity = newQty
	s.UpdatedAt = time.Now()
	return nil
}

// Reserve aparta cantidad disponible; falla si excede lo disponible.
func (s *StockEntry) Reserve(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if qty.GreaterThan(s.Available()) {
		return &domain.InsufficientStockError{
			WarehouseID: s.WarehouseID,
			SKUID:       s.ItemSKUID,
			Requested:   qty,
			Available:   s.Available(),
		}
	}
	s.ReservedQty = s.ReservedQty.Add(qty)
	s.UpdatedAt = time.Now()
	return nil
}

// Release libera reserva, con tope en cero en lugar de volverse negativa.
func (s *StockEntry) Release(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	s.ReservedQty = s.ReservedQty.Sub(qty)
	if s.ReservedQty.IsNegative() {
		s.ReservedQty = decimal.Zero
	}
	s.UpdatedAt = time.Now()
	return nil
}
