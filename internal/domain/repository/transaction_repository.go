package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
)

// TransactionRepository define el puerto de persistencia del agregado
// transacción de inventario (encabezado + líneas).
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.InventoryTransaction) error
	GetByID(ctx context.Context, id string) (*entity.InventoryTransaction, error)
	GetByPublicID(ctx context.Context, publicID string) (*entity.InventoryTransaction, error)
	UpdateHeader(ctx context.Context, txn *entity.InventoryTransaction) error
	// SyncLines aplica el diff de líneas (insert/update/delete) del agregado.
	SyncLines(ctx context.Context, headerID string, changes []diffsync.Change[entity.TransactionLine]) error
	// MarkCompleted y MarkCancelled son updates condicionales sobre el estado:
	// devuelven false si la fila ya no estaba en DRAFT (carrera de doble
	// completado o cancelación concurrente).
	MarkCompleted(ctx context.Context, id string) (bool, error)
	MarkCancelled(ctx context.Context, id string) (bool, error)
}
