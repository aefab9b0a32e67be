package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
)

// UOMClassRepository define el puerto de persistencia del agregado de clases
// de unidades (clase + unidades + conversiones en paralelo).
type UOMClassRepository interface {
	Create(ctx context.Context, class *entity.UOMClass) error
	GetByCode(ctx context.Context, code string) (*entity.UOMClass, error)
	UpdateHeader(ctx context.Context, class *entity.UOMClass) error
	// SyncMembers aplica los diffs de unidades y conversiones como una sola
	// unidad de trabajo (ambos o ninguno).
	SyncMembers(ctx context.Context, classCode string,
		unitChanges []diffsync.Change[entity.UOM],
		convChanges []diffsync.Change[entity.UOMConversion]) error
}
