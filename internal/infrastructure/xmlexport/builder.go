// Package xmlexport genera el documento XML de intercambio de una
// transacción de inventario, para integración con ERPs externos.
package xmlexport

import (
	"fmt"

	"github.com/beevik/etree"

	apptxn "github.com/jhoicas/Bodega-api/internal/application/transaction"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

var _ apptxn.XMLBuilder = (*Builder)(nil)

// Builder construye el XML de la transacción (sin firma digital: es un
// documento de intercambio, no un documento fiscal).
type Builder struct{}

// NewBuilder crea el servicio.
func NewBuilder() *Builder { return &Builder{} }

// Build genera el []byte del documento InventoryTransaction.
func (b *Builder) Build(txn *entity.InventoryTransaction) ([]byte, error) {
	if txn == nil {
		return nil, fmt.Errorf("xmlexport: transacción nil")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("InventoryTransaction")
	root.CreateAttr("publicId", txn.PublicID)
	root.CreateAttr("type", txn.Type)
	root.CreateAttr("status", txn.Status)

	root.CreateElement("TransNum").SetText(txn.TransNum)
	root.CreateElement("TransactionDate").SetText(txn.TransactionDate.Format("2006-01-02"))
	if txn.FromWarehouseID != "" {
		root.CreateElement("FromWarehouse").SetText(txn.FromWarehouseID)
	}
	if txn.ToWarehouseID != "" {
		root.CreateElement("ToWarehouse").SetText(txn.ToWarehouseID)
	}
	if txn.ReasonCode != "" {
		root.CreateElement("ReasonCode").SetText(txn.ReasonCode)
	}
	if txn.ReferenceID != "" {
		ref := root.CreateElement("Reference")
		ref.CreateAttr("type", txn.ReferenceType)
		ref.CreateAttr("id", txn.ReferenceID)
		ref.SetText(txn.ReferenceNum)
	}

	lines := root.CreateElement("Lines")
	for _, l := range txn.Lines {
		le := lines.CreateElement("Line")
		le.CreateAttr("num", fmt.Sprintf("%d", l.LineNum))
		le.CreateElement("ItemSKU").SetText(l.ItemSKUID)
		qty := le.CreateElement("Quantity")
		qty.CreateAttr("uom", l.UOMCode)
		qty.SetText(l.Quantity.String())
		base := le.CreateElement("BaseQuantity")
		base.CreateAttr("uom", l.BaseUOMCode)
		base.CreateAttr("factor", l.ToBaseFactor.String())
		base.SetText(l.BaseQty.String())
		if l.Note != "" {
			le.CreateElement("Note").SetText(l.Note)
		}
	}

	root.CreateElement("CreatedBy").SetText(txn.CreatedBy)

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmlexport: serializar documento: %w", err)
	}
	return out, nil
}
