package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
)

// Tipos de transacción de inventario.
const (
	TypeGoodsReceipt  = "GOODS_RECEIPT"  // entrada de mercancía
	TypeGoodsIssue    = "GOODS_ISSUE"    // salida de mercancía
	TypeStockTransfer = "STOCK_TRANSFER" // traslado entre bodegas
	TypeAdjustment    = "ADJUSTMENT"     // ajuste con motivo
)

// Estados del ciclo de vida. Las transiciones son unidireccionales:
// DRAFT→COMPLETED, DRAFT→CANCELLED; COMPLETED y CANCELLED son terminales.
const (
	StatusDraft     = "DRAFT"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Tipos de referencia a órdenes externas.
const (
	ReferenceSalesOrder    = "SALES_ORDER"
	ReferencePurchaseOrder = "PURCHASE_ORDER"
)

// TransactionLine es una línea de la transacción. La cantidad se expresa en
// UOMCode; BaseQty es la cantidad normalizada a la unidad base del SKU con el
// factor capturado al construir la línea (no se recalcula si la conversión de
// referencia cambia después).
type TransactionLine struct {
	ID           string
	HeaderID     string
	LineNum      int
	ItemSKUID    string
	Quantity     decimal.Decimal
	UOMCode      string
	ToBaseFactor decimal.Decimal
	BaseQty      decimal.Decimal
	BaseUOMCode  string
	Note         string
}

// NewTransactionLine construye una línea normalizada. Para ADJUSTMENT la
// cantidad puede ser negativa (el signo codifica aumento/disminución); para
// el resto de tipos debe ser estrictamente positiva.
func NewTransactionLine(txnType string, lineNum int, skuID string, qty decimal.Decimal, uomCode string, toBaseFactor decimal.Decimal, baseUOMCode, note string) (TransactionLine, error) {
	if lineNum <= 0 || skuID == "" || uomCode == "" || baseUOMCode == "" {
		return TransactionLine{}, domain.ErrInvalidInput
	}
	if toBaseFactor.LessThanOrEqual(decimal.Zero) {
		return TransactionLine{}, domain.ErrInvalidInput
	}
	if txnType == TypeAdjustment {
		if qty.IsZero() {
			return TransactionLine{}, domain.ErrInvalidInput
		}
	} else if qty.LessThanOrEqual(decimal.Zero) {
		return TransactionLine{}, domain.ErrInvalidInput
	}
	return TransactionLine{
		ID:           uuid.New().String(),
		LineNum:      lineNum,
		ItemSKUID:    skuID,
		Quantity:     qty,
		UOMCode:      uomCode,
		ToBaseFactor: toBaseFactor,
		BaseQty:      qty.Mul(toBaseFactor),
		BaseUOMCode:  baseUOMCode,
		Note:         note,
	}, nil
}

// InventoryTransaction es el agregado raíz: encabezado + líneas.
type InventoryTransaction struct {
	ID              string
	PublicID        string
	TransNum        string
	Type            string
	Status          string
	FromWarehouseID string
	ToWarehouseID   string
	ReferenceType   string
	ReferenceID     string
	ReferenceNum    string
	ReasonCode      string
	TransactionDate time.Time
	Note            string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []TransactionLine

	// snapshot de líneas tal como se cargaron/guardaron, para el diff de
	// persistencia (sin flags de estado de fila en las entidades)
	loaded []TransactionLine
}

// ValidateWarehouseConfig aplica la regla de bodegas por tipo: la entrada usa
// solo destino, la salida solo origen, el traslado ambas (y distintas) y el
// ajuste origen más un código de motivo.
func ValidateWarehouseConfig(txnType, fromWarehouseID, toWarehouseID, reasonCode string) error {
	switch txnType {
	case TypeGoodsReceipt:
		if toWarehouseID == "" || fromWarehouseID != "" {
			return domain.ErrInvalidInput
		}
	case TypeGoodsIssue:
		if fromWarehouseID == "" || toWarehouseID != "" {
			return domain.ErrInvalidInput
		}
	case TypeStockTransfer:
		if fromWarehouseID == "" || toWarehouseID == "" || fromWarehouseID == toWarehouseID {
			return domain.ErrInvalidInput
		}
	case TypeAdjustment:
		if fromWarehouseID == "" || toWarehouseID != "" || reasonCode == "" {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// NewInventoryTransaction crea el agregado en estado DRAFT con la
// configuración de bodegas ya validada.
func NewInventoryTransaction(txnType, transNum, fromWarehouseID, toWarehouseID, reasonCode, createdBy string, transactionDate time.Time) (*InventoryTransaction, error) {
	if err := ValidateWarehouseConfig(txnType, fromWarehouseID, toWarehouseID, reasonCode); err != nil {
		return nil, err
	}
	if transNum == "" || createdBy == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	if transactionDate.IsZero() {
		transactionDate = now
	}
	return &InventoryTransaction{
		ID:              uuid.New().String(),
		PublicID:        uuid.New().String(),
		TransNum:        transNum,
		Type:            txnType,
		Status:          StatusDraft,
		FromWarehouseID: fromWarehouseID,
		ToWarehouseID:   toWarehouseID,
		ReasonCode:      reasonCode,
		TransactionDate: transactionDate,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AddLine agrega una línea; solo legal en DRAFT y con LineNum único.
func (t *InventoryTransaction) AddLine(line TransactionLine) error {
	if t.Status != StatusDraft {
		return domain.ErrInvalidState
	}
	for _, l := range t.Lines {
		if l.LineNum == line.LineNum {
			return domain.ErrDuplicate
		}
	}
	line.HeaderID = t.ID
	t.Lines = append(t.Lines, line)
	t.UpdatedAt = time.Now()
	return nil
}

// RemoveLine quita la línea con ese número; solo legal en DRAFT. Una línea
// nunca persistida desaparece sin rastro; una persistida queda ausente del
// estado actual y el diff la marca como delete al guardar.
func (t *InventoryTransaction) RemoveLine(lineNum int) error {
	if t.Status != StatusDraft {
		return domain.ErrInvalidState
	}
	for i, l := range t.Lines {
		if l.LineNum == lineNum {
			t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// NextLineNum devuelve el siguiente número de línea libre.
func (t *InventoryTransaction) NextLineNum() int {
	max := 0
	for _, l := range t.Lines {
		if l.LineNum > max {
			max = l.LineNum
		}
	}
	return max + 1
}

// CanComplete verifica los invariantes de completado: estado DRAFT y al
// menos una línea vigente.
func (t *InventoryTransaction) CanComplete() error {
	if t.Status != StatusDraft {
		return domain.ErrInvalidState
	}
	if len(t.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// MarkCompleted transiciona DRAFT→COMPLETED en memoria. La protección contra
// doble completado concurrente vive en el update condicional del repositorio.
func (t *InventoryTransaction) MarkCompleted() error {
	if err := t.CanComplete(); err != nil {
		return err
	}
	t.Status = StatusCompleted
	t.UpdatedAt = time.Now()
	return nil
}

// MarkCancelled transiciona DRAFT→CANCELLED. Nunca toca stock; una
// transacción COMPLETED solo se revierte con una contra-transacción.
func (t *InventoryTransaction) MarkCancelled() error {
	if t.Status != StatusDraft {
		return domain.ErrInvalidState
	}
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now()
	return nil
}

// SetReference enlaza la transacción a una orden externa.
func (t *InventoryTransaction) SetReference(refType, refID, refNum string) {
	t.ReferenceType = refType
	t.ReferenceID = refID
	t.ReferenceNum = refNum
}

// LineChanges calcula el diff de líneas contra el snapshot cargado.
func (t *InventoryTransaction) LineChanges() []diffsync.Change[TransactionLine] {
	return diffsync.Diff(t.loaded, t.Lines,
		func(l TransactionLine) string { return l.ID },
		func(a, b TransactionLine) bool {
			return a.LineNum == b.LineNum &&
				a.ItemSKUID == b.ItemSKUID &&
				a.Quantity.Equal(b.Quantity) &&
				a.UOMCode == b.UOMCode &&
				a.ToBaseFactor.Equal(b.ToBaseFactor) &&
				a.Note == b.Note
		})
}

// ResetLineSnapshot fija el estado actual como snapshot persistido. Lo llama
// el repositorio después de cargar o guardar el agregado.
func (t *InventoryTransaction) ResetLineSnapshot() {
	t.loaded = make([]TransactionLine, len(t.Lines))
	copy(t.loaded, t.Lines)
}
