package uom

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// ConversionService mantiene las clases de unidades y normaliza cantidades
// entre unidades de una misma clase. Las mutaciones persisten unidad y
// conversión como una sola unidad de trabajo.
type ConversionService struct {
	classRepo repository.UOMClassRepository
}

// NewConversionService construye el servicio.
func NewConversionService(classRepo repository.UOMClassRepository) *ConversionService {
	return &ConversionService{classRepo: classRepo}
}

// CreateClass crea una clase nueva con su unidad base (factor 1).
func (s *ConversionService) CreateClass(ctx context.Context, code, name, baseUOMCode, baseName string) (*entity.UOMClass, error) {
	class, err := entity.NewUOMClass(code, name, baseUOMCode, baseName)
	if err != nil {
		return nil, err
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("crear clase de unidades: %w", err)
	}
	class.ResetSnapshot()
	return class, nil
}

// Convert convierte un valor entre dos unidades de la misma clase:
// value × factor(from) / factor(to).
func (s *ConversionService) Convert(ctx context.Context, classCode, fromUOM, toUOM string, value decimal.Decimal) (decimal.Decimal, error) {
	class, err := s.loadClass(ctx, classCode)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return class.Convert(fromUOM, toUOM, value)
}

// ResolveFactor devuelve el factor a unidad base de una unidad. El motor de
// transacciones lo usa para sellar ToBaseFactor en la línea al construirla:
// es una captura inmutable, ediciones posteriores del factor de referencia no
// alteran líneas históricas.
func (s *ConversionService) ResolveFactor(ctx context.Context, classCode, uomCode string) (decimal.Decimal, error) {
	class, err := s.loadClass(ctx, classCode)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return class.FactorOf(uomCode)
}

// AddUnit registra una unidad nueva con su factor (> 0, código único).
func (s *ConversionService) AddUnit(ctx context.Context, classCode, uomCode, name string, toBaseFactor decimal.Decimal) error {
	return s.mutate(ctx, classCode, func(class *entity.UOMClass) error {
		return class.AddUnit(uomCode, name, toBaseFactor)
	})
}

// UpdateFactor cambia el factor de conversión de una unidad existente.
func (s *ConversionService) UpdateFactor(ctx context.Context, classCode, uomCode string, toBaseFactor decimal.Decimal) error {
	return s.mutate(ctx, classCode, func(class *entity.UOMClass) error {
		return class.UpdateFactor(uomCode, toBaseFactor)
	})
}

// RemoveUnit elimina la unidad y su conversión, ambas o ninguna.
func (s *ConversionService) RemoveUnit(ctx context.Context, classCode, uomCode string) error {
	return s.mutate(ctx, classCode, func(class *entity.UOMClass) error {
		return class.RemoveUnit(uomCode)
	})
}

func (s *ConversionService) loadClass(ctx context.Context, classCode string) (*entity.UOMClass, error) {
	class, err := s.classRepo.GetByCode(ctx, classCode)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, domain.ErrNotFound
	}
	return class, nil
}

func (s *ConversionService) mutate(ctx context.Context, classCode string, fn func(*entity.UOMClass) error) error {
	class, err := s.loadClass(ctx, classCode)
	if err != nil {
		return err
	}
	if err := fn(class); err != nil {
		return err
	}
	if err := s.classRepo.SyncMembers(ctx, class.Code, class.UnitChanges(), class.ConversionChanges()); err != nil {
		return fmt.Errorf("sincronizar miembros de la clase %s: %w", class.Code, err)
	}
	class.ResetSnapshot()
	return nil
}
