package entity

import "github.com/shopspring/decimal"

// SKUUnitInfo es lo que el núcleo necesita saber de un SKU: su unidad base
// canónica y la clase de unidades que resuelve las conversiones de sus líneas.
type SKUUnitInfo struct {
	SKUID        string
	BaseUOMCode  string
	UOMClassCode string
}

// OpenOrderLine es la posición abierta de una orden externa (venta o compra)
// contra la que se valida, de forma consultiva, la cantidad solicitada.
type OpenOrderLine struct {
	OrderedQty decimal.Decimal
	ShippedQty decimal.Decimal
}

// Remaining devuelve la cantidad abierta de la posición.
func (l OpenOrderLine) Remaining() decimal.Decimal {
	return l.OrderedQty.Sub(l.ShippedQty)
}
