package transaction

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios de transacción y stock atados a esa tx. El completado usa una
// sola unidad de trabajo: cambio de estado condicional + deltas de stock.
type TxRunner interface {
	RunTransaction(ctx context.Context, fn func(
		txnRepo repository.TransactionRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// EventPublisher publica eventos de movimiento tras el commit (mejor
// esfuerzo: un fallo de publicación se registra, nunca revierte stock).
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// NoopPublisher descarta los eventos (tests, despliegues sin broker).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// VoucherGenerator genera el comprobante PDF de una transacción completada.
type VoucherGenerator interface {
	GenerateVoucher(ctx context.Context, txn *entity.InventoryTransaction) ([]byte, error)
}

// XMLBuilder genera el documento XML de intercambio de una transacción.
type XMLBuilder interface {
	Build(txn *entity.InventoryTransaction) ([]byte, error)
}
