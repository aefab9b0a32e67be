package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// Prefijos por tipo de transacción para el número legible.
var typePrefixes = map[string]string{
	entity.TypeGoodsReceipt:  "GR",
	entity.TypeGoodsIssue:    "GI",
	entity.TypeStockTransfer: "ST",
	entity.TypeAdjustment:    "ADJ",
}

const maxGenerateAttempts = 5

// NumberGenerator produce números de transacción únicos y crecientes por
// (tipo, mes calendario) con formato {PREFIX}-{YYYYMM}-{seq:04d}. La unicidad
// bajo concurrencia la garantiza la restricción única de la secuencia en BD:
// ante colisión se reintenta leyendo el máximo de nuevo.
type NumberGenerator struct {
	seqRepo repository.SequenceRepository
	now     func() time.Time
}

// NewNumberGenerator construye el generador.
func NewNumberGenerator(seqRepo repository.SequenceRepository) *NumberGenerator {
	return &NumberGenerator{seqRepo: seqRepo, now: time.Now}
}

// Generate devuelve el siguiente número para el tipo dado.
func (g *NumberGenerator) Generate(ctx context.Context, txnType string) (string, error) {
	prefix, ok := typePrefixes[txnType]
	if !ok {
		return "", domain.ErrInvalidInput
	}
	period := g.now().Format("200601")

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		max, err := g.seqRepo.MaxSeq(ctx, prefix, period)
		if err != nil {
			return "", fmt.Errorf("leer secuencia %s-%s: %w", prefix, period, err)
		}
		seq := max + 1
		if err := g.seqRepo.Insert(ctx, prefix, period, seq); err != nil {
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				continue // otro caller tomó este número, releer el máximo
			}
			return "", fmt.Errorf("reservar secuencia %s-%s: %w", prefix, period, err)
		}
		return fmt.Sprintf("%s-%s-%04d", prefix, period, seq), nil
	}
	return "", domain.ErrConcurrencyConflict
}
