package stock

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

const availableTTL = 5 * time.Minute

// LineDelta es la cantidad base (firmada para ajustes) de una línea ya
// normalizada por el motor de transacciones.
type LineDelta struct {
	ItemSKUID   string
	BaseQty     decimal.Decimal
	BaseUOMCode string
}

// ApplyInput describe el lote de deltas de una transacción completada.
type ApplyInput struct {
	Type            string
	FromWarehouseID string
	ToWarehouseID   string
	Lines           []LineDelta
}

// StockDelta es el efecto aplicado a una fila de stock.
type StockDelta struct {
	WarehouseID string
	ItemSKUID   string
	Previous    decimal.Decimal
	Applied     decimal.Decimal
	New         decimal.Decimal
}

// Ledger aplica deltas de cantidad al stock por bodega/SKU bajo los
// invariantes de conservación y no-negatividad. Cada lote se aplica dentro
// de una transacción de BD con bloqueo de fila (SELECT FOR UPDATE); si una
// línea dejaría el stock negativo, el lote entero se aborta sin efecto.
type Ledger struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
	cache     AvailabilityCache
	log       *logger.Logger
}

// NewLedger construye el ledger. stockRepo es el repositorio atado al pool
// para lecturas fuera de transacción (GetAvailable).
func NewLedger(txRunner TxRunner, stockRepo repository.StockRepository, cache AvailabilityCache, log *logger.Logger) *Ledger {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Ledger{txRunner: txRunner, stockRepo: stockRepo, cache: cache, log: log}
}

// ApplyTransaction aplica el lote en una transacción propia.
func (l *Ledger) ApplyTransaction(ctx context.Context, in ApplyInput) ([]StockDelta, error) {
	var deltas []StockDelta
	err := l.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		var err error
		deltas, err = l.ApplyInTx(ctx, stockRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.InvalidateAvailability(ctx, deltas)
	return deltas, nil
}

// ApplyInTx aplica el lote usando el repositorio de la transacción del
// caller (el motor de transacciones lo invoca dentro de su propia unidad de
// trabajo, junto con el cambio de estado del encabezado).
func (l *Ledger) ApplyInTx(ctx context.Context, stockRepo repository.StockRepository, in ApplyInput) ([]StockDelta, error) {
	keyed, err := deltasByRow(in)
	if err != nil {
		return nil, err
	}

	deltas := make([]StockDelta, 0, len(keyed))
	for _, kd := range keyed {
		// Bloquea la fila afectada antes de recalcular (serializa
		// transacciones concurrentes sobre el mismo bodega+SKU).
		entry, err := stockRepo.GetForUpdate(ctx, kd.warehouseID, kd.skuID)
		if err != nil {
			return nil, err
		}
		if entry.UOMCode == "" {
			entry.UOMCode = kd.uomCode
		}
		previous := entry.Quantity
		if err := entry.Apply(kd.delta); err != nil {
			// Primer delta inválido: el rollback de la tx descarta lo ya
			// escrito, sin aplicación parcial.
			return nil, err
		}
		if err := stockRepo.Upsert(ctx, entry); err != nil {
			return nil, err
		}
		deltas = append(deltas, StockDelta{
			WarehouseID: kd.warehouseID,
			ItemSKUID:   kd.skuID,
			Previous:    previous,
			Applied:     kd.delta,
			New:         entry.Quantity,
		})
	}
	return deltas, nil
}

// Reserve aparta cantidad disponible de un bodega+SKU.
func (l *Ledger) Reserve(ctx context.Context, warehouseID, skuID string, qty decimal.Decimal) error {
	err := l.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		entry, err := stockRepo.GetForUpdate(ctx, warehouseID, skuID)
		if err != nil {
			return err
		}
		if err := entry.Reserve(qty); err != nil {
			return err
		}
		return stockRepo.Upsert(ctx, entry)
	})
	if err != nil {
		return err
	}
	l.invalidate(ctx, warehouseID, skuID)
	return nil
}

// Release libera reserva; nunca deja la reserva negativa.
func (l *Ledger) Release(ctx context.Context, warehouseID, skuID string, qty decimal.Decimal) error {
	err := l.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		entry, err := stockRepo.GetForUpdate(ctx, warehouseID, skuID)
		if err != nil {
			return err
		}
		if err := entry.Release(qty); err != nil {
			return err
		}
		return stockRepo.Upsert(ctx, entry)
	})
	if err != nil {
		return err
	}
	l.invalidate(ctx, warehouseID, skuID)
	return nil
}

// GetAvailable devuelve quantity − reservedQty, con lectura vía cache.
func (l *Ledger) GetAvailable(ctx context.Context, warehouseID, skuID string) (decimal.Decimal, error) {
	if available, ok, err := l.cache.Get(ctx, warehouseID, skuID); err == nil && ok {
		return available, nil
	}
	entry, err := l.stockRepo.Get(ctx, warehouseID, skuID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	available := entry.Available()
	if err := l.cache.Set(ctx, warehouseID, skuID, available, availableTTL); err != nil {
		l.log.Warn().Err(err).Str("warehouse_id", warehouseID).Str("sku_id", skuID).Msg("cachear disponible")
	}
	return available, nil
}

// InvalidateAvailability invalida el cache de las filas tocadas por un lote.
func (l *Ledger) InvalidateAvailability(ctx context.Context, deltas []StockDelta) {
	for _, d := range deltas {
		l.invalidate(ctx, d.WarehouseID, d.ItemSKUID)
	}
}

func (l *Ledger) invalidate(ctx context.Context, warehouseID, skuID string) {
	if err := l.cache.Invalidate(ctx, warehouseID, skuID); err != nil {
		l.log.Warn().Err(err).Str("warehouse_id", warehouseID).Str("sku_id", skuID).Msg("invalidar cache de disponible")
	}
}

type rowDelta struct {
	warehouseID string
	skuID       string
	uomCode     string
	delta       decimal.Decimal
}

// deltasByRow traduce el tipo de transacción a deltas firmados por fila de
// stock, acumulando líneas del mismo bodega+SKU y ordenando las filas para
// que transacciones concurrentes tomen los bloqueos en el mismo orden.
func deltasByRow(in ApplyInput) ([]rowDelta, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	acc := make(map[[2]string]*rowDelta)
	add := func(warehouseID, skuID, uomCode string, qty decimal.Decimal) {
		key := [2]string{warehouseID, skuID}
		if rd, ok := acc[key]; ok {
			rd.delta = rd.delta.Add(qty)
			return
		}
		acc[key] = &rowDelta{warehouseID: warehouseID, skuID: skuID, uomCode: uomCode, delta: qty}
	}

	for _, line := range in.Lines {
		switch in.Type {
		case entity.TypeGoodsReceipt:
			add(in.ToWarehouseID, line.ItemSKUID, line.BaseUOMCode, line.BaseQty)
		case entity.TypeGoodsIssue:
			add(in.FromWarehouseID, line.ItemSKUID, line.BaseUOMCode, line.BaseQty.Neg())
		case entity.TypeStockTransfer:
			// Débito y crédito del traslado viajan en el mismo lote: ambos o
			// ninguno.
			add(in.FromWarehouseID, line.ItemSKUID, line.BaseUOMCode, line.BaseQty.Neg())
			add(in.ToWarehouseID, line.ItemSKUID, line.BaseUOMCode, line.BaseQty)
		case entity.TypeAdjustment:
			// El signo de la cantidad del ajuste codifica aumento/disminución.
			add(in.FromWarehouseID, line.ItemSKUID, line.BaseUOMCode, line.BaseQty)
		default:
			return nil, domain.ErrInvalidInput
		}
	}

	keyed := make([]rowDelta, 0, len(acc))
	for _, rd := range acc {
		keyed = append(keyed, *rd)
	}
	sort.Slice(keyed, func(i, j int) bool {
		if keyed[i].warehouseID != keyed[j].warehouseID {
			return keyed[i].warehouseID < keyed[j].warehouseID
		}
		return keyed[i].skuID < keyed[j].skuID
	})
	return keyed, nil
}
