package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
)

var _ repository.UOMClassRepository = (*UOMClassRepo)(nil)

// UOMClassRepo implementación del agregado de clases de unidades sobre
// PostgreSQL (usable con pool o tx).
type UOMClassRepo struct {
	q Querier
}

// NewUOMClassRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUOMClassRepository(q Querier) *UOMClassRepo {
	return &UOMClassRepo{q: q}
}

// Create persiste la clase con sus miembros iniciales.
func (r *UOMClassRepo) Create(ctx context.Context, class *entity.UOMClass) error {
	query := `
		INSERT INTO uom_classes (code, name, base_uom_code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, class.Code, class.Name, nullable(class.BaseUOMCode),
		class.IsActive, class.CreatedAt, class.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create uom class %s: %w", class.Code, domain.ErrDuplicate)
		}
		return fmt.Errorf("create uom class: %w", err)
	}
	for _, u := range class.Units {
		if err := r.insertUnit(ctx, class.Code, u); err != nil {
			return err
		}
	}
	for _, cv := range class.Conversions {
		if err := r.insertConversion(ctx, class.Code, cv); err != nil {
			return err
		}
	}
	return nil
}

// GetByCode carga la clase con unidades y conversiones y fija el snapshot.
func (r *UOMClassRepo) GetByCode(ctx context.Context, code string) (*entity.UOMClass, error) {
	query := `
		SELECT code, name, base_uom_code, is_active, created_at, updated_at
		FROM uom_classes WHERE code = $1`
	var c entity.UOMClass
	var baseUOM *string
	err := r.q.QueryRow(ctx, query, code).Scan(&c.Code, &c.Name, &baseUOM, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get uom class: %w", err)
	}
	c.BaseUOMCode = deref(baseUOM)

	if err := r.loadUnits(ctx, &c); err != nil {
		return nil, err
	}
	if err := r.loadConversions(ctx, &c); err != nil {
		return nil, err
	}
	c.ResetSnapshot()
	return &c, nil
}

// UpdateHeader actualiza los campos mutables de la clase.
func (r *UOMClassRepo) UpdateHeader(ctx context.Context, class *entity.UOMClass) error {
	query := `
		UPDATE uom_classes SET name = $2, base_uom_code = $3, is_active = $4, updated_at = now()
		WHERE code = $1`
	_, err := r.q.Exec(ctx, query, class.Code, class.Name, nullable(class.BaseUOMCode), class.IsActive)
	if err != nil {
		return fmt.Errorf("update uom class: %w", err)
	}
	return nil
}

// SyncMembers aplica los diffs de unidades y conversiones. Eliminar una
// unidad elimina su conversión en el mismo lote (ambas o ninguna).
func (r *UOMClassRepo) SyncMembers(ctx context.Context, classCode string,
	unitChanges []diffsync.Change[entity.UOM],
	convChanges []diffsync.Change[entity.UOMConversion]) error {

	// diffsync.Apply ejecuta los deletes de cada lista antes que sus
	// inserts/updates, así una unidad re-agregada con el mismo código no
	// choca con la fila vieja. El delete de una unidad arrastra su
	// conversión (FK) en el mismo paso.
	if err := diffsync.Apply(unitChanges,
		func(u entity.UOM) error { return r.insertUnit(ctx, classCode, u) },
		func(u entity.UOM) error { return r.updateUnit(ctx, classCode, u) },
		func(u entity.UOM) error { return r.deleteConversionThenUnit(ctx, classCode, u.Code) },
	); err != nil {
		return err
	}
	return diffsync.Apply(convChanges,
		func(cv entity.UOMConversion) error { return r.insertConversion(ctx, classCode, cv) },
		func(cv entity.UOMConversion) error { return r.updateConversion(ctx, classCode, cv) },
		func(cv entity.UOMConversion) error { return r.deleteConversion(ctx, classCode, cv.UOMCode) },
	)
}

func (r *UOMClassRepo) loadUnits(ctx context.Context, c *entity.UOMClass) error {
	rows, err := r.q.Query(ctx,
		`SELECT code, name, is_active FROM uoms WHERE class_code = $1 ORDER BY code`, c.Code)
	if err != nil {
		return fmt.Errorf("load uoms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u entity.UOM
		if err := rows.Scan(&u.Code, &u.Name, &u.IsActive); err != nil {
			return fmt.Errorf("scan uom: %w", err)
		}
		c.Units = append(c.Units, u)
	}
	return rows.Err()
}

func (r *UOMClassRepo) loadConversions(ctx context.Context, c *entity.UOMClass) error {
	rows, err := r.q.Query(ctx,
		`SELECT uom_code, to_base_factor, is_active FROM uom_conversions WHERE class_code = $1 ORDER BY uom_code`, c.Code)
	if err != nil {
		return fmt.Errorf("load uom conversions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cv entity.UOMConversion
		if err := rows.Scan(&cv.UOMCode, &cv.ToBaseFactor, &cv.IsActive); err != nil {
			return fmt.Errorf("scan uom conversion: %w", err)
		}
		c.Conversions = append(c.Conversions, cv)
	}
	return rows.Err()
}

func (r *UOMClassRepo) insertUnit(ctx context.Context, classCode string, u entity.UOM) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO uoms (class_code, code, name, is_active) VALUES ($1, $2, $3, $4)`,
		classCode, u.Code, u.Name, u.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert uom %s: %w", u.Code, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert uom: %w", err)
	}
	return nil
}

func (r *UOMClassRepo) updateUnit(ctx context.Context, classCode string, u entity.UOM) error {
	_, err := r.q.Exec(ctx,
		`UPDATE uoms SET name = $3, is_active = $4 WHERE class_code = $1 AND code = $2`,
		classCode, u.Code, u.Name, u.IsActive)
	if err != nil {
		return fmt.Errorf("update uom: %w", err)
	}
	return nil
}

func (r *UOMClassRepo) deleteConversionThenUnit(ctx context.Context, classCode, uomCode string) error {
	if err := r.deleteConversion(ctx, classCode, uomCode); err != nil {
		return err
	}
	_, err := r.q.Exec(ctx,
		`DELETE FROM uoms WHERE class_code = $1 AND code = $2`, classCode, uomCode)
	if err != nil {
		return fmt.Errorf("delete uom: %w", err)
	}
	return nil
}

func (r *UOMClassRepo) insertConversion(ctx context.Context, classCode string, cv entity.UOMConversion) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO uom_conversions (class_code, uom_code, to_base_factor, is_active) VALUES ($1, $2, $3, $4)`,
		classCode, cv.UOMCode, cv.ToBaseFactor, cv.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert uom conversion %s: %w", cv.UOMCode, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert uom conversion: %w", err)
	}
	return nil
}

func (r *UOMClassRepo) updateConversion(ctx context.Context, classCode string, cv entity.UOMConversion) error {
	_, err := r.q.Exec(ctx,
		`UPDATE uom_conversions SET to_base_factor = $3, is_active = $4 WHERE class_code = $1 AND uom_code = $2`,
		classCode, cv.UOMCode, cv.ToBaseFactor, cv.IsActive)
	if err != nil {
		return fmt.Errorf("update uom conversion: %w", err)
	}
	return nil
}

func (r *UOMClassRepo) deleteConversion(ctx context.Context, classCode, uomCode string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM uom_conversions WHERE class_code = $1 AND uom_code = $2`, classCode, uomCode)
	if err != nil {
		return fmt.Errorf("delete uom conversion: %w", err)
	}
	return nil
}
