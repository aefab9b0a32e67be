package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo persiste las secuencias de numeración por (prefijo, periodo).
// La restricción única (prefix, period, seq) es la que garantiza unicidad
// bajo concurrencia: la colisión se traduce a ErrConcurrencyConflict y el
// generador reintenta.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// MaxSeq devuelve el mayor número reservado para el prefijo+periodo (0 si no
// hay ninguno).
func (r *SequenceRepo) MaxSeq(ctx context.Context, prefix, period string) (int, error) {
	var max int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM transaction_sequences WHERE prefix = $1 AND period = $2`,
		prefix, period).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max sequence: %w", err)
	}
	return max, nil
}

// Insert reserva un número concreto; 23505 significa que otro caller llegó
// primero.
func (r *SequenceRepo) Insert(ctx context.Context, prefix, period string, seq int) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO transaction_sequences (prefix, period, seq) VALUES ($1, $2, $3)`,
		prefix, period, seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("insert sequence: %w", err)
	}
	return nil
}
