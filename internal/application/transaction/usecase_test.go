package transaction_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/stock"
	apptxn "github.com/jhoicas/Bodega-api/internal/application/transaction"
	"github.com/jhoicas/Bodega-api/internal/application/uom"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ────────────────────────── fakes ──────────────────────────

// memStockStore emula warehouse_stock: fila ausente = cantidad cero.
type memStockStore struct {
	entries map[[2]string]entity.StockEntry
}

func newMemStockStore() *memStockStore {
	return &memStockStore{entries: make(map[[2]string]entity.StockEntry)}
}

func (m *memStockStore) seed(warehouseID, skuID, qty string) {
	m.entries[[2]string{warehouseID, skuID}] = entity.StockEntry{
		WarehouseID: warehouseID, ItemSKUID: skuID, Quantity: dec(qty), UOMCode: "EA",
	}
}

func (m *memStockStore) quantity(warehouseID, skuID string) decimal.Decimal {
	return m.entries[[2]string{warehouseID, skuID}].Quantity
}

func (m *memStockStore) Get(_ context.Context, warehouseID, skuID string) (*entity.StockEntry, error) {
	if e, ok := m.entries[[2]string{warehouseID, skuID}]; ok {
		cp := e
		return &cp, nil
	}
	return &entity.StockEntry{WarehouseID: warehouseID, ItemSKUID: skuID}, nil
}

func (m *memStockStore) GetForUpdate(ctx context.Context, warehouseID, skuID string) (*entity.StockEntry, error) {
	return m.Get(ctx, warehouseID, skuID)
}

func (m *memStockStore) Upsert(_ context.Context, entry *entity.StockEntry) error {
	m.entries[[2]string{entry.WarehouseID, entry.ItemSKUID}] = *entry
	return nil
}

func (m *memStockStore) clone() *memStockStore {
	cp := newMemStockStore()
	for k, v := range m.entries {
		cp.entries[k] = v
	}
	return cp
}

// txnRecord es la fila persistida del agregado: el estado vive en el
// registro, no en el puntero que sostiene el caller.
type txnRecord struct {
	header entity.InventoryTransaction
	status string
	lines  []entity.TransactionLine
}

type memTxnRepo struct {
	records map[string]*txnRecord

	// fallas inyectadas para verificar el rollback de la unidad de trabajo
	failCreate bool
	failSync   bool
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{records: make(map[string]*txnRecord)}
}

func (m *memTxnRepo) status(id string) string { return m.records[id].status }

func (m *memTxnRepo) Create(_ context.Context, txn *entity.InventoryTransaction) error {
	if _, ok := m.records[txn.ID]; ok {
		return domain.ErrDuplicate
	}
	h := *txn
	h.Lines = nil
	m.records[txn.ID] = &txnRecord{
		header: h,
		status: txn.Status,
		lines:  append([]entity.TransactionLine(nil), txn.Lines...),
	}
	if m.failCreate {
		// Escritura parcial: el registro quedó en este "tx" pero el insert
		// falla; el runner debe descartarlo completo.
		return assert.AnError
	}
	return nil
}

func (m *memTxnRepo) GetByID(_ context.Context, id string) (*entity.InventoryTransaction, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return rec.rebuild(), nil
}

func (m *memTxnRepo) GetByPublicID(_ context.Context, publicID string) (*entity.InventoryTransaction, error) {
	for _, rec := range m.records {
		if rec.header.PublicID == publicID {
			return rec.rebuild(), nil
		}
	}
	return nil, nil
}

func (rec *txnRecord) rebuild() *entity.InventoryTransaction {
	cp := rec.header
	cp.Status = rec.status
	cp.Lines = append([]entity.TransactionLine(nil), rec.lines...)
	cp.ResetLineSnapshot()
	return &cp
}

func (m *memTxnRepo) UpdateHeader(_ context.Context, txn *entity.InventoryTransaction) error {
	rec, ok := m.records[txn.ID]
	if !ok {
		return domain.ErrNotFound
	}
	h := *txn
	h.Lines = nil
	rec.header = h
	return nil
}

func (m *memTxnRepo) SyncLines(_ context.Context, headerID string, changes []diffsync.Change[entity.TransactionLine]) error {
	rec, ok := m.records[headerID]
	if !ok {
		return domain.ErrNotFound
	}
	err := diffsync.Apply(changes,
		func(l entity.TransactionLine) error {
			// UNIQUE (header_id, line_num)
			for _, existing := range rec.lines {
				if existing.LineNum == l.LineNum {
					return domain.ErrDuplicate
				}
			}
			rec.lines = append(rec.lines, l)
			return nil
		},
		func(l entity.TransactionLine) error {
			for i := range rec.lines {
				if rec.lines[i].ID == l.ID {
					rec.lines[i] = l
					return nil
				}
			}
			return domain.ErrNotFound
		},
		func(l entity.TransactionLine) error {
			for i := range rec.lines {
				if rec.lines[i].ID == l.ID {
					rec.lines = append(rec.lines[:i], rec.lines[i+1:]...)
					return nil
				}
			}
			return domain.ErrNotFound
		},
	)
	if err != nil {
		return err
	}
	if m.failSync {
		return assert.AnError
	}
	return nil
}

func (m *memTxnRepo) MarkCompleted(_ context.Context, id string) (bool, error) {
	rec, ok := m.records[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if rec.status != entity.StatusDraft {
		return false, nil
	}
	rec.status = entity.StatusCompleted
	return true, nil
}

func (m *memTxnRepo) MarkCancelled(_ context.Context, id string) (bool, error) {
	rec, ok := m.records[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if rec.status != entity.StatusDraft {
		return false, nil
	}
	rec.status = entity.StatusCancelled
	return true, nil
}

func (m *memTxnRepo) clone() *memTxnRepo {
	cp := newMemTxnRepo()
	cp.failCreate = m.failCreate
	cp.failSync = m.failSync
	for id, rec := range m.records {
		r := *rec
		r.lines = append([]entity.TransactionLine(nil), rec.lines...)
		cp.records[id] = &r
	}
	return cp
}

// engineTxRunner clona ambos almacenes y publica solo en commit, como el
// rollback de una transacción real.
type engineTxRunner struct {
	txns  *memTxnRepo
	store *memStockStore
}

func (r *engineTxRunner) RunTransaction(_ context.Context, fn func(
	txnRepo repository.TransactionRepository,
	stockRepo repository.StockRepository,
) error) error {
	tmpTxns := r.txns.clone()
	tmpStock := r.store.clone()
	if err := fn(tmpTxns, tmpStock); err != nil {
		return err
	}
	r.txns.records = tmpTxns.records
	r.store.entries = tmpStock.entries
	return nil
}

type stockTxRunner struct {
	store *memStockStore
}

func (r *stockTxRunner) Run(_ context.Context, fn func(repository.StockRepository) error) error {
	tmp := r.store.clone()
	if err := fn(tmp); err != nil {
		return err
	}
	r.store.entries = tmp.entries
	return nil
}

type mapWarehouses map[string]*entity.Warehouse

func (m mapWarehouses) GetWarehouse(_ context.Context, id string) (*entity.Warehouse, error) {
	return m[id], nil
}

type mapSKUs map[string]*entity.SKUUnitInfo

func (m mapSKUs) GetSKUUnitInfo(_ context.Context, skuID string) (*entity.SKUUnitInfo, error) {
	return m[skuID], nil
}

type mapOrders map[string]*entity.OpenOrderLine

func (m mapOrders) GetOpenLine(_ context.Context, orderID, skuID string) (*entity.OpenOrderLine, error) {
	return m[orderID+"/"+skuID], nil
}

// memClassRepo comparte el puntero del agregado; SyncMembers es un no-op
// porque la mutación ya quedó en el agregado en memoria.
type memClassRepo struct {
	classes map[string]*entity.UOMClass
}

func (m *memClassRepo) Create(_ context.Context, class *entity.UOMClass) error {
	if _, ok := m.classes[class.Code]; ok {
		return domain.ErrDuplicate
	}
	m.classes[class.Code] = class
	return nil
}

func (m *memClassRepo) GetByCode(_ context.Context, code string) (*entity.UOMClass, error) {
	return m.classes[code], nil
}

func (m *memClassRepo) UpdateHeader(context.Context, *entity.UOMClass) error { return nil }

func (m *memClassRepo) SyncMembers(context.Context, string,
	[]diffsync.Change[entity.UOM], []diffsync.Change[entity.UOMConversion]) error {
	return nil
}

type counterSeqRepo struct {
	maxes map[string]int
}

func (c *counterSeqRepo) MaxSeq(_ context.Context, prefix, period string) (int, error) {
	return c.maxes[prefix+period], nil
}

func (c *counterSeqRepo) Insert(_ context.Context, prefix, period string, seq int) error {
	c.maxes[prefix+period] = seq
	return nil
}

type capturePublisher struct {
	events []apptxn.TransactionCompletedEvent
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event any) error {
	if ev, ok := event.(apptxn.TransactionCompletedEvent); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

// ────────────────────────── arnés ──────────────────────────

type engineFixture struct {
	engine    *apptxn.Engine
	store     *memStockStore
	txns      *memTxnRepo
	orders    mapOrders
	publisher *capturePublisher
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	class, err := entity.NewUOMClass("COUNT", "Conteo", "EA", "Unidad")
	require.NoError(t, err)
	require.NoError(t, class.AddUnit("BOX", "Caja x12", dec("12")))
	class.ResetSnapshot()
	conversions := uom.NewConversionService(&memClassRepo{classes: map[string]*entity.UOMClass{"COUNT": class}})

	f := &engineFixture{
		store:     newMemStockStore(),
		txns:      newMemTxnRepo(),
		orders:    mapOrders{},
		publisher: &capturePublisher{},
	}
	ledger := stock.NewLedger(&stockTxRunner{store: f.store}, f.store, nil, logger.Nop())
	f.engine = apptxn.NewEngine(
		&engineTxRunner{txns: f.txns, store: f.store},
		f.txns,
		mapWarehouses{
			"w1": {ID: "w1", Code: "BOD-01", IsActive: true},
			"w2": {ID: "w2", Code: "BOD-02", IsActive: true},
			"w3": {ID: "w3", Code: "BOD-03", IsActive: false},
		},
		mapSKUs{
			"sku-1": {SKUID: "sku-1", BaseUOMCode: "EA", UOMClassCode: "COUNT"},
			"sku-2": {SKUID: "sku-2", BaseUOMCode: "EA", UOMClassCode: "COUNT"},
		},
		f.orders,
		conversions,
		ledger,
		apptxn.NewNumberGenerator(&counterSeqRepo{maxes: map[string]int{}}),
		f.publisher,
		logger.Nop(),
	)
	return f
}

func (f *engineFixture) draftReceipt(t *testing.T, lines ...apptxn.LineInput) *entity.InventoryTransaction {
	t.Helper()
	txn, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
		Type:          entity.TypeGoodsReceipt,
		ToWarehouseID: "w1",
		CreatedBy:     "tester",
		Lines:         lines,
	})
	require.NoError(t, err)
	return txn
}

func boxLine(qty string) apptxn.LineInput {
	return apptxn.LineInput{ItemSKUID: "sku-1", Quantity: dec(qty), UOMCode: "BOX"}
}

// ────────────────────────── CreateDraft ──────────────────────────

func TestCreateDraft_SellaFactorYNormaliza(t *testing.T) {
	f := newEngineFixture(t)

	txn := f.draftReceipt(t, boxLine("5"))

	assert.True(t, strings.HasPrefix(txn.TransNum, "GR-"))
	assert.Equal(t, entity.StatusDraft, txn.Status)
	require.Len(t, txn.Lines, 1)
	line := txn.Lines[0]
	assert.True(t, line.ToBaseFactor.Equal(dec("12")))
	assert.True(t, line.BaseQty.Equal(dec("60")), "5 BOX = 60 EA")
	assert.Equal(t, "EA", line.BaseUOMCode)

	// Persistido y con snapshot fijado: sin cambios pendientes.
	assert.Equal(t, entity.StatusDraft, f.txns.status(txn.ID))
	for _, ch := range txn.LineChanges() {
		assert.Equal(t, diffsync.OpUnchanged, ch.Op)
	}
}

func TestCreateDraft_UnidadBaseNoConsultaConversion(t *testing.T) {
	f := newEngineFixture(t)

	txn := f.draftReceipt(t, apptxn.LineInput{ItemSKUID: "sku-1", Quantity: dec("7"), UOMCode: "EA"})

	assert.True(t, txn.Lines[0].ToBaseFactor.Equal(dec("1")))
	assert.True(t, txn.Lines[0].BaseQty.Equal(dec("7")))
}

func TestCreateDraft_ConfiguracionInvalida(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
		Type:            entity.TypeGoodsReceipt,
		FromWarehouseID: "w1", // la entrada no lleva origen
		ToWarehouseID:   "w2",
		CreatedBy:       "tester",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateDraft_BodegaInactivaODesconocida(t *testing.T) {
	f := newEngineFixture(t)

	for _, warehouse := range []string{"w3", "nope"} {
		_, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
			Type:          entity.TypeGoodsReceipt,
			ToWarehouseID: warehouse,
			CreatedBy:     "tester",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestCreateDraft_UnidadSinConversion(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
		Type:          entity.TypeGoodsReceipt,
		ToWarehouseID: "w1",
		CreatedBy:     "tester",
		Lines:         []apptxn.LineInput{{ItemSKUID: "sku-1", Quantity: dec("1"), UOMCode: "PAL"}},
	})
	assert.ErrorIs(t, err, domain.ErrConversionNotFound)
}

func TestCreateDraft_ChequeoContraOrdenAbierta(t *testing.T) {
	f := newEngineFixture(t)
	// Orden con 10 pedidos y 4 despachados: quedan 6 abiertos.
	f.orders["so-1/sku-1"] = &entity.OpenOrderLine{OrderedQty: dec("10"), ShippedQty: dec("4")}

	in := apptxn.CreateDraftInput{
		Type:            entity.TypeGoodsIssue,
		FromWarehouseID: "w1",
		CreatedBy:       "tester",
		Reference:       &apptxn.ReferenceInput{Type: entity.ReferenceSalesOrder, ID: "so-1", Num: "SO-0001"},
		Lines:           []apptxn.LineInput{{ItemSKUID: "sku-1", Quantity: dec("8"), UOMCode: "EA"}},
	}
	_, err := f.engine.CreateDraft(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.Lines[0].Quantity = dec("5")
	txn, err := f.engine.CreateDraft(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "SO-0001", txn.ReferenceNum)
}

// ────────────────────────── Complete ──────────────────────────

func TestComplete_AplicaStockYPublica(t *testing.T) {
	f := newEngineFixture(t)
	txn := f.draftReceipt(t, boxLine("5"))

	deltas, err := f.engine.Complete(context.Background(), txn)

	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].New.Equal(dec("60")))
	assert.True(t, f.store.quantity("w1", "sku-1").Equal(dec("60")))
	assert.Equal(t, entity.StatusCompleted, txn.Status)
	assert.Equal(t, entity.StatusCompleted, f.txns.status(txn.ID))

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, txn.TransNum, ev.TransNum)
	require.Len(t, ev.Deltas, 1)
	assert.True(t, ev.Deltas[0].Applied.Equal(dec("60")))
}

func TestComplete_EsIdempotente(t *testing.T) {
	f := newEngineFixture(t)
	txn := f.draftReceipt(t, boxLine("5"))

	_, err := f.engine.Complete(context.Background(), txn)
	require.NoError(t, err)

	// Segunda llamada sobre el mismo agregado.
	_, err = f.engine.Complete(context.Background(), txn)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Carrera: otro proceso sostiene una copia que aún se cree DRAFT. El
	// update condicional del repositorio la frena sin volver a aplicar stock.
	stale := *txn
	stale.Status = entity.StatusDraft
	_, err = f.engine.Complete(context.Background(), &stale)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.True(t, f.store.quantity("w1", "sku-1").Equal(dec("60")), "el stock se aplicó una sola vez")
	assert.Len(t, f.publisher.events, 1)
}

func TestComplete_StockInsuficienteDejaDraft(t *testing.T) {
	f := newEngineFixture(t)
	f.store.seed("w1", "sku-1", "50")

	txn, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
		Type:            entity.TypeGoodsIssue,
		FromWarehouseID: "w1",
		CreatedBy:       "tester",
		Lines:           []apptxn.LineInput{{ItemSKUID: "sku-1", Quantity: dec("60"), UOMCode: "EA"}},
	})
	require.NoError(t, err)

	_, err = f.engine.Complete(context.Background(), txn)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, entity.StatusDraft, txn.Status, "sigue editable")
	assert.Equal(t, entity.StatusDraft, f.txns.status(txn.ID))
	assert.True(t, f.store.quantity("w1", "sku-1").Equal(dec("50")))
	assert.Empty(t, f.publisher.events)
}

func TestComplete_TrasladoAtomico(t *testing.T) {
	f := newEngineFixture(t)
	f.store.seed("w1", "sku-1", "100")

	txn, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
		Type:            entity.TypeStockTransfer,
		FromWarehouseID: "w1",
		ToWarehouseID:   "w2",
		CreatedBy:       "tester",
		Lines:           []apptxn.LineInput{boxLine("5")},
	})
	require.NoError(t, err)

	_, err = f.engine.Complete(context.Background(), txn)
	require.NoError(t, err)

	assert.True(t, f.store.quantity("w1", "sku-1").Equal(dec("40")))
	assert.True(t, f.store.quantity("w2", "sku-1").Equal(dec("60")))
}

func TestComplete_SinLineas(t *testing.T) {
	f := newEngineFixture(t)
	txn := f.draftReceipt(t)

	_, err := f.engine.Complete(context.Background(), txn)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ────────────────────────── Cancel ──────────────────────────

func TestCancel_NuncaTocaStock(t *testing.T) {
	f := newEngineFixture(t)
	f.store.seed("w1", "sku-1", "100")
	txn := f.draftReceipt(t, boxLine("5"))

	require.NoError(t, f.engine.Cancel(context.Background(), txn))
	assert.Equal(t, entity.StatusCancelled, txn.Status)
	assert.Equal(t, entity.StatusCancelled, f.txns.status(txn.ID))
	assert.True(t, f.store.quantity("w1", "sku-1").Equal(dec("100")))

	assert.ErrorIs(t, f.engine.Cancel(context.Background(), txn), domain.ErrInvalidState)
	_, err := f.engine.Complete(context.Background(), txn)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ────────────────────────── edición del borrador ──────────────────────────

func TestAddRemoveSave_SincronizaLineas(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	txn := f.draftReceipt(t, boxLine("5"))

	require.NoError(t, f.engine.AddLine(ctx, txn, apptxn.LineInput{ItemSKUID: "sku-2", Quantity: dec("3"), UOMCode: "EA"}))
	require.NoError(t, f.engine.RemoveLine(ctx, txn, 1))
	require.NoError(t, f.engine.Save(ctx, txn))

	reloaded, err := f.txns.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, "sku-2", reloaded.Lines[0].ItemSKUID)
	assert.Equal(t, 2, reloaded.Lines[0].LineNum)
}

// Quitar una línea persistida y agregar otra reutiliza el número liberado;
// el sync borra la fila vieja antes de insertar la nueva para no chocar con
// la restricción única (header_id, line_num).
func TestSave_ReutilizaNumeroDeLineaEliminada(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	txn := f.draftReceipt(t, boxLine("5"),
		apptxn.LineInput{ItemSKUID: "sku-2", Quantity: dec("3"), UOMCode: "EA"})

	require.NoError(t, f.engine.RemoveLine(ctx, txn, 2))
	require.NoError(t, f.engine.AddLine(ctx, txn, apptxn.LineInput{ItemSKUID: "sku-2", Quantity: dec("9"), UOMCode: "EA"}))
	require.Equal(t, 2, txn.Lines[1].LineNum, "la línea nueva reutiliza el número liberado")

	require.NoError(t, f.engine.Save(ctx, txn))

	reloaded, err := f.txns.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 2)
	assert.Equal(t, 2, reloaded.Lines[1].LineNum)
	assert.True(t, reloaded.Lines[1].Quantity.Equal(dec("9")))
}

// Un fallo a mitad de la creación no deja un encabezado con líneas parciales.
func TestCreateDraft_FallaSinDejarRastro(t *testing.T) {
	f := newEngineFixture(t)
	f.txns.failCreate = true

	_, err := f.engine.CreateDraft(context.Background(), apptxn.CreateDraftInput{
		Type:          entity.TypeGoodsReceipt,
		ToWarehouseID: "w1",
		CreatedBy:     "tester",
		Lines:         []apptxn.LineInput{boxLine("5")},
	})

	require.Error(t, err)
	assert.Empty(t, f.txns.records, "el rollback descarta encabezado y líneas")
}

// Un fallo al sincronizar líneas revierte también el encabezado, y el
// agregado conserva sus cambios pendientes para reintentar.
func TestSave_FallaSinEfectoParcial(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	txn := f.draftReceipt(t, boxLine("5"))

	require.NoError(t, f.engine.AddLine(ctx, txn, apptxn.LineInput{ItemSKUID: "sku-2", Quantity: dec("3"), UOMCode: "EA"}))
	f.txns.failSync = true

	require.Error(t, f.engine.Save(ctx, txn))

	reloaded, err := f.txns.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Lines, 1, "la línea nueva no se persistió")

	pending := 0
	for _, ch := range txn.LineChanges() {
		if ch.Op == diffsync.OpInsert {
			pending++
		}
	}
	assert.Equal(t, 1, pending, "el snapshot no se fijó: el insert sigue pendiente")
}

func TestAddLine_RechazaFueraDeDraft(t *testing.T) {
	f := newEngineFixture(t)
	txn := f.draftReceipt(t, boxLine("5"))
	_, err := f.engine.Complete(context.Background(), txn)
	require.NoError(t, err)

	err = f.engine.AddLine(context.Background(), txn, boxLine("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
