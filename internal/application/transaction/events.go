package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/stock"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// MovementDelta es el efecto de stock incluido en el evento.
type MovementDelta struct {
	WarehouseID string          `json:"warehouse_id"`
	ItemSKUID   string          `json:"item_sku_id"`
	Applied     decimal.Decimal `json:"applied"`
	New         decimal.Decimal `json:"new"`
}

// TransactionCompletedEvent se publica tras el commit de un completado.
type TransactionCompletedEvent struct {
	EventID    string          `json:"event_id"`
	PublicID   string          `json:"public_id"`
	TransNum   string          `json:"trans_num"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Deltas     []MovementDelta `json:"deltas"`
}

func newCompletedEvent(eventID string, txn *entity.InventoryTransaction, deltas []stock.StockDelta) TransactionCompletedEvent {
	ev := TransactionCompletedEvent{
		EventID:    eventID,
		PublicID:   txn.PublicID,
		TransNum:   txn.TransNum,
		Type:       txn.Type,
		OccurredAt: time.Now(),
	}
	for _, d := range deltas {
		ev.Deltas = append(ev.Deltas, MovementDelta{
			WarehouseID: d.WarehouseID,
			ItemSKUID:   d.ItemSKUID,
			Applied:     d.Applied,
			New:         d.New,
		})
	}
	return ev
}
