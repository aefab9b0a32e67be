package repository

import "context"

// SequenceRepository define el puerto del generador de números de
// transacción: lee el máximo vigente e inserta el siguiente apoyándose en la
// restricción única (prefix, period, seq). Una colisión concurrente se
// traduce a domain.ErrConcurrencyConflict y el caller reintenta.
type SequenceRepository interface {
	MaxSeq(ctx context.Context, prefix, period string) (int, error)
	Insert(ctx context.Context, prefix, period string, seq int) error
}
