package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/stock"
	"github.com/jhoicas/Bodega-api/internal/application/uom"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// LineInput es una línea entrante en la unidad que el caller prefiera.
type LineInput struct {
	ItemSKUID string
	Quantity  decimal.Decimal
	UOMCode   string
	Note      string
}

// ReferenceInput enlaza la transacción a una orden externa.
type ReferenceInput struct {
	Type string // SALES_ORDER o PURCHASE_ORDER
	ID   string
	Num  string
}

// CreateDraftInput es la solicitud completa de un borrador.
type CreateDraftInput struct {
	Type            string
	FromWarehouseID string
	ToWarehouseID   string
	ReasonCode      string
	Reference       *ReferenceInput
	TransactionDate time.Time
	Note            string
	CreatedBy       string
	Lines           []LineInput
}

// Engine es el motor de transacciones de inventario: valida la configuración
// de bodegas por tipo, normaliza las líneas a unidad base y gobierna el ciclo
// DRAFT→COMPLETED/CANCELLED. El completado aplica los deltas de stock y el
// cambio de estado en una sola unidad de trabajo.
type Engine struct {
	txRunner      TxRunner
	txnRepo       repository.TransactionRepository
	warehouses    repository.WarehouseLookup
	skus          repository.SKULookup
	orders        repository.OrderLookup // opcional: chequeo consultivo contra órdenes
	conversions   *uom.ConversionService
	ledger        *stock.Ledger
	numbers       *NumberGenerator
	publisher     EventPublisher
	log           *logger.Logger
}

// NewEngine construye el motor. orders puede ser nil si no hay subsistema de
// órdenes; publisher nil desactiva los eventos.
func NewEngine(
	txRunner TxRunner,
	txnRepo repository.TransactionRepository,
	warehouses repository.WarehouseLookup,
	skus repository.SKULookup,
	orders repository.OrderLookup,
	conversions *uom.ConversionService,
	ledger *stock.Ledger,
	numbers *NumberGenerator,
	publisher EventPublisher,
	log *logger.Logger,
) *Engine {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Engine{
		txRunner:    txRunner,
		txnRepo:     txnRepo,
		warehouses:  warehouses,
		skus:        skus,
		orders:      orders,
		conversions: conversions,
		ledger:      ledger,
		numbers:     numbers,
		publisher:   publisher,
		log:         log,
	}
}

// CreateDraft valida bodegas y líneas, resuelve los factores de conversión y
// persiste el agregado en DRAFT con su número generado.
func (e *Engine) CreateDraft(ctx context.Context, in CreateDraftInput) (*entity.InventoryTransaction, error) {
	if err := entity.ValidateWarehouseConfig(in.Type, in.FromWarehouseID, in.ToWarehouseID, in.ReasonCode); err != nil {
		return nil, err
	}
	if err := e.checkWarehouses(ctx, in.FromWarehouseID, in.ToWarehouseID); err != nil {
		return nil, err
	}

	transNum, err := e.numbers.Generate(ctx, in.Type)
	if err != nil {
		return nil, err
	}
	txn, err := entity.NewInventoryTransaction(in.Type, transNum, in.FromWarehouseID, in.ToWarehouseID, in.ReasonCode, in.CreatedBy, in.TransactionDate)
	if err != nil {
		return nil, err
	}
	txn.Note = in.Note
	if in.Reference != nil {
		txn.SetReference(in.Reference.Type, in.Reference.ID, in.Reference.Num)
	}

	for _, li := range in.Lines {
		line, err := e.buildLine(ctx, txn, li)
		if err != nil {
			return nil, err
		}
		if err := txn.AddLine(line); err != nil {
			return nil, err
		}
	}

	// Encabezado y líneas en una sola unidad de trabajo: un fallo a mitad
	// no deja un encabezado con líneas parciales.
	err = e.txRunner.RunTransaction(ctx, func(
		txnRepo repository.TransactionRepository,
		_ repository.StockRepository,
	) error {
		return txnRepo.Create(ctx, txn)
	})
	if err != nil {
		return nil, fmt.Errorf("crear transacción %s: %w", transNum, err)
	}
	txn.ResetLineSnapshot()
	e.log.Info().Str("trans_num", txn.TransNum).Str("type", txn.Type).Int("lines", len(txn.Lines)).Msg("borrador creado")
	return txn, nil
}

// AddLine agrega una línea al borrador (solo en DRAFT).
func (e *Engine) AddLine(ctx context.Context, txn *entity.InventoryTransaction, in LineInput) error {
	if txn.Status != entity.StatusDraft {
		return domain.ErrInvalidState
	}
	line, err := e.buildLine(ctx, txn, in)
	if err != nil {
		return err
	}
	return txn.AddLine(line)
}

// RemoveLine quita una línea del borrador (solo en DRAFT). Una línea nunca
// persistida se descarta; una persistida queda marcada para delete al
// guardar vía el diff del agregado.
func (e *Engine) RemoveLine(_ context.Context, txn *entity.InventoryTransaction, lineNum int) error {
	return txn.RemoveLine(lineNum)
}

// Save persiste el encabezado y sincroniza las líneas con el mínimo de
// inserts/updates/deletes derivado del snapshot, todo en una sola unidad
// de trabajo.
func (e *Engine) Save(ctx context.Context, txn *entity.InventoryTransaction) error {
	err := e.txRunner.RunTransaction(ctx, func(
		txnRepo repository.TransactionRepository,
		_ repository.StockRepository,
	) error {
		if err := txnRepo.UpdateHeader(ctx, txn); err != nil {
			return fmt.Errorf("actualizar encabezado %s: %w", txn.TransNum, err)
		}
		if err := txnRepo.SyncLines(ctx, txn.ID, txn.LineChanges()); err != nil {
			return fmt.Errorf("sincronizar líneas de %s: %w", txn.TransNum, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	txn.ResetLineSnapshot()
	return nil
}

// Complete congela la transacción y aplica sus deltas de stock como un solo
// commit. El update condicional DRAFT→COMPLETED hace el completado
// efectivamente idempotente: una segunda llamada (o una carrera) no vuelve a
// aplicar stock. Si el ledger rechaza el lote, la transacción sigue en DRAFT.
func (e *Engine) Complete(ctx context.Context, txn *entity.InventoryTransaction) ([]stock.StockDelta, error) {
	if err := txn.CanComplete(); err != nil {
		return nil, err
	}

	var deltas []stock.StockDelta
	err := e.txRunner.RunTransaction(ctx, func(
		txnRepo repository.TransactionRepository,
		stockRepo repository.StockRepository,
	) error {
		// Sincroniza líneas pendientes del borrador antes de congelar.
		if err := txnRepo.SyncLines(ctx, txn.ID, txn.LineChanges()); err != nil {
			return err
		}
		ok, err := txnRepo.MarkCompleted(ctx, txn.ID)
		if err != nil {
			return err
		}
		if !ok {
			// 0 filas afectadas: alguien más la completó o canceló.
			return domain.ErrInvalidState
		}
		deltas, err = e.ledger.ApplyInTx(ctx, stockRepo, applyInputOf(txn))
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = txn.MarkCompleted()
	txn.ResetLineSnapshot()
	e.ledger.InvalidateAvailability(ctx, deltas)
	e.publishCompleted(ctx, txn, deltas)
	return deltas, nil
}

// Cancel descarta el borrador sin tocar stock jamás.
func (e *Engine) Cancel(ctx context.Context, txn *entity.InventoryTransaction) error {
	if txn.Status != entity.StatusDraft {
		return domain.ErrInvalidState
	}
	ok, err := e.txnRepo.MarkCancelled(ctx, txn.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidState
	}
	return txn.MarkCancelled()
}

// buildLine resuelve la unidad base del SKU y sella el factor de conversión
// vigente en la línea. Si la unidad de la línea no es convertible dentro de
// la clase del SKU, la línea es inválida.
func (e *Engine) buildLine(ctx context.Context, txn *entity.InventoryTransaction, in LineInput) (entity.TransactionLine, error) {
	info, err := e.skus.GetSKUUnitInfo(ctx, in.ItemSKUID)
	if err != nil {
		return entity.TransactionLine{}, err
	}
	if info == nil {
		return entity.TransactionLine{}, domain.ErrNotFound
	}

	factor := decimal.NewFromInt(1)
	if in.UOMCode != info.BaseUOMCode {
		factor, err = e.conversions.ResolveFactor(ctx, info.UOMClassCode, in.UOMCode)
		if err != nil {
			return entity.TransactionLine{}, err
		}
	}

	if err := e.checkOpenOrder(ctx, txn, in); err != nil {
		return entity.TransactionLine{}, err
	}

	return entity.NewTransactionLine(txn.Type, txn.NextLineNum(), in.ItemSKUID, in.Quantity, in.UOMCode, factor, info.BaseUOMCode, in.Note)
}

// checkOpenOrder valida, de forma consultiva, que la cantidad solicitada no
// exceda la posición abierta de la orden referenciada.
func (e *Engine) checkOpenOrder(ctx context.Context, txn *entity.InventoryTransaction, in LineInput) error {
	if e.orders == nil || txn.ReferenceID == "" {
		return nil
	}
	open, err := e.orders.GetOpenLine(ctx, txn.ReferenceID, in.ItemSKUID)
	if err != nil {
		return err
	}
	if open == nil {
		return nil
	}
	if in.Quantity.GreaterThan(open.Remaining()) {
		return fmt.Errorf("%w: cantidad %s excede lo abierto %s de la orden %s",
			domain.ErrInvalidInput, in.Quantity.String(), open.Remaining().String(), txn.ReferenceNum)
	}
	return nil
}

func (e *Engine) checkWarehouses(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		wh, err := e.warehouses.GetWarehouse(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil || !wh.IsActive {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
	}
	return nil
}

func applyInputOf(txn *entity.InventoryTransaction) stock.ApplyInput {
	in := stock.ApplyInput{
		Type:            txn.Type,
		FromWarehouseID: txn.FromWarehouseID,
		ToWarehouseID:   txn.ToWarehouseID,
	}
	for _, l := range txn.Lines {
		in.Lines = append(in.Lines, stock.LineDelta{
			ItemSKUID:   l.ItemSKUID,
			BaseQty:     l.BaseQty,
			BaseUOMCode: l.BaseUOMCode,
		})
	}
	return in
}

func (e *Engine) publishCompleted(ctx context.Context, txn *entity.InventoryTransaction, deltas []stock.StockDelta) {
	ev := newCompletedEvent(uuid.New().String(), txn, deltas)
	if err := e.publisher.Publish(ctx, txn.PublicID, ev); err != nil {
		e.log.Warn().Err(err).Str("trans_num", txn.TransNum).Msg("publicar evento de movimiento")
	}
}
