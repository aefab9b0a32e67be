package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
)

// UOM es una unidad de medida miembro de una clase.
type UOM struct {
	Code     string
	Name     string
	IsActive bool
}

// UOMConversion es el factor hacia la unidad base de la clase, una por
// unidad miembro.
type UOMConversion struct {
	UOMCode      string
	ToBaseFactor decimal.Decimal
	IsActive     bool
}

// UOMClass agrupa unidades convertibles entre sí vía una base compartida
// (ej. LENGTH: CM, M). Agregado de datos de referencia: unidades y
// conversiones se mantienen en paralelo, con clave por código de unidad.
type UOMClass struct {
	Code        string
	Name        string
	BaseUOMCode string
	IsActive    bool
	Units       []UOM
	Conversions []UOMConversion
	CreatedAt   time.Time
	UpdatedAt   time.Time

	loadedUnits []UOM
	loadedConvs []UOMConversion
}

// NewUOMClass crea la clase con su unidad base (factor 1).
func NewUOMClass(code, name, baseUOMCode, baseName string) (*UOMClass, error) {
	if code == "" || baseUOMCode == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	c := &UOMClass{
		Code:        code,
		Name:        name,
		BaseUOMCode: baseUOMCode,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.AddUnit(baseUOMCode, baseName, decimal.NewFromInt(1)); err != nil {
		return nil, err
	}
	return c, nil
}

// AddUnit registra una unidad y su conversión a la base como un todo:
// factor estrictamente positivo, código único dentro de la clase.
func (c *UOMClass) AddUnit(code, name string, toBaseFactor decimal.Decimal) error {
	if code == "" {
		return domain.ErrInvalidInput
	}
	if toBaseFactor.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	for _, u := range c.Units {
		if u.Code == code {
			return domain.ErrDuplicate
		}
	}
	c.Units = append(c.Units, UOM{Code: code, Name: name, IsActive: true})
	c.Conversions = append(c.Conversions, UOMConversion{UOMCode: code, ToBaseFactor: toBaseFactor, IsActive: true})
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateFactor cambia el factor de una unidad existente. No recalcula líneas
// históricas: estas capturan su factor al construirse.
func (c *UOMClass) UpdateFactor(code string, toBaseFactor decimal.Decimal) error {
	if toBaseFactor.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	for i, cv := range c.Conversions {
		if cv.UOMCode == code {
			c.Conversions[i].ToBaseFactor = toBaseFactor
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return &domain.ConversionNotFoundError{ClassCode: c.Code, UOMCode: code}
}

// RemoveUnit elimina la unidad y su conversión, ambas o ninguna.
// La unidad base de la clase no se puede eliminar.
func (c *UOMClass) RemoveUnit(code string) error {
	if code == c.BaseUOMCode {
		return domain.ErrInvalidInput
	}
	idx := -1
	for i, u := range c.Units {
		if u.Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	c.Units = append(c.Units[:idx], c.Units[idx+1:]...)
	for i, cv := range c.Conversions {
		if cv.UOMCode == code {
			c.Conversions = append(c.Conversions[:i], c.Conversions[i+1:]...)
			break
		}
	}
	c.UpdatedAt = time.Now()
	return nil
}

// FactorOf devuelve el factor a unidad base de una unidad miembro.
func (c *UOMClass) FactorOf(code string) (decimal.Decimal, error) {
	for _, cv := range c.Conversions {
		if cv.UOMCode == code && cv.IsActive {
			return cv.ToBaseFactor, nil
		}
	}
	return decimal.Decimal{}, &domain.ConversionNotFoundError{ClassCode: c.Code, UOMCode: code}
}

// Convert convierte un valor entre dos unidades de la clase:
// value × factor(from) / factor(to).
func (c *UOMClass) Convert(fromUOM, toUOM string, value decimal.Decimal) (decimal.Decimal, error) {
	fromFactor, err := c.FactorOf(fromUOM)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toFactor, err := c.FactorOf(toUOM)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return value.Mul(fromFactor).Div(toFactor), nil
}

// UnitChanges y ConversionChanges derivan las operaciones de persistencia
// contra el snapshot cargado (mismo patrón que las líneas de transacción).
func (c *UOMClass) UnitChanges() []diffsync.Change[UOM] {
	return diffsync.Diff(c.loadedUnits, c.Units,
		func(u UOM) string { return u.Code },
		func(a, b UOM) bool { return a.Name == b.Name && a.IsActive == b.IsActive })
}

func (c *UOMClass) ConversionChanges() []diffsync.Change[UOMConversion] {
	return diffsync.Diff(c.loadedConvs, c.Conversions,
		func(cv UOMConversion) string { return cv.UOMCode },
		func(a, b UOMConversion) bool { return a.ToBaseFactor.Equal(b.ToBaseFactor) && a.IsActive == b.IsActive })
}

// ResetSnapshot fija el estado actual como persistido (tras cargar o guardar).
func (c *UOMClass) ResetSnapshot() {
	c.loadedUnits = make([]UOM, len(c.Units))
	copy(c.loadedUnits, c.Units)
	c.loadedConvs = make([]UOMConversion, len(c.Conversions))
	copy(c.loadedConvs, c.Conversions)
}
