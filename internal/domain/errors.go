package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidState        = errors.New("operación no permitida en el estado actual")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConversionNotFound  = errors.New("conversión de unidad no registrada")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintentar la operación")
)

// InsufficientStockError indica que un débito o una reserva dejaría el stock
// por debajo de cero (o por debajo de lo ya reservado). La operación completa
// se aborta sin efecto parcial.
type InsufficientStockError struct {
	WarehouseID string
	SKUID       string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en bodega %s para sku %s: solicitado %s, disponible %s",
		e.WarehouseID, e.SKUID, e.Requested.String(), e.Available.String())
}

// Is permite errors.Is(err, domain.ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ConversionNotFoundError indica que una unidad no tiene conversión registrada
// dentro de su clase. Es un problema de datos de referencia, no transitorio.
type ConversionNotFoundError struct {
	ClassCode string
	UOMCode   string
}

func (e *ConversionNotFoundError) Error() string {
	return fmt.Sprintf("la unidad %s no tiene conversión registrada en la clase %s", e.UOMCode, e.ClassCode)
}

func (e *ConversionNotFoundError) Is(target error) bool {
	return target == ErrConversionNotFound
}
