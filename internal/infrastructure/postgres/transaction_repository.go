package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/diffsync"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del agregado transacción de inventario
// sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste encabezado y líneas de un borrador nuevo.
func (r *TransactionRepo) Create(ctx context.Context, txn *entity.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions
			(id, public_id, trans_num, type, status, from_warehouse_id, to_warehouse_id,
			 reference_type, reference_id, reference_num, reason_code,
			 transaction_date, note, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		txn.ID, txn.PublicID, txn.TransNum, txn.Type, txn.Status,
		nullable(txn.FromWarehouseID), nullable(txn.ToWarehouseID),
		nullable(txn.ReferenceType), nullable(txn.ReferenceID), nullable(txn.ReferenceNum),
		nullable(txn.ReasonCode), txn.TransactionDate, nullable(txn.Note),
		txn.CreatedBy, txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create transaction %s: %w", txn.TransNum, err)
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	for _, line := range txn.Lines {
		if err := r.insertLine(ctx, txn.ID, line); err != nil {
			return err
		}
	}
	return nil
}

// GetByID carga el agregado completo y fija el snapshot de líneas.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.InventoryTransaction, error) {
	return r.getBy(ctx, "id", id)
}

// GetByPublicID carga el agregado por su identificador externo.
func (r *TransactionRepo) GetByPublicID(ctx context.Context, publicID string) (*entity.InventoryTransaction, error) {
	return r.getBy(ctx, "public_id", publicID)
}

// UpdateHeader actualiza los campos mutables del encabezado.
func (r *TransactionRepo) UpdateHeader(ctx context.Context, txn *entity.InventoryTransaction) error {
	query := `
		UPDATE inventory_transactions
		SET reference_type = $2, reference_id = $3, reference_num = $4,
			reason_code = $5, transaction_date = $6, note = $7, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, txn.ID,
		nullable(txn.ReferenceType), nullable(txn.ReferenceID), nullable(txn.ReferenceNum),
		nullable(txn.ReasonCode), txn.TransactionDate, nullable(txn.Note))
	if err != nil {
		return fmt.Errorf("update transaction header: %w", err)
	}
	return nil
}

// SyncLines aplica el diff de líneas del agregado: inserts, updates por
// identidad y deletes de las filas ausentes. Las líneas sin cambios no se
// tocan.
func (r *TransactionRepo) SyncLines(ctx context.Context, headerID string, changes []diffsync.Change[entity.TransactionLine]) error {
	return diffsync.Apply(changes,
		func(l entity.TransactionLine) error { return r.insertLine(ctx, headerID, l) },
		func(l entity.TransactionLine) error { return r.updateLine(ctx, l) },
		func(l entity.TransactionLine) error { return r.deleteLine(ctx, l.ID) },
	)
}

// MarkCompleted es el update condicional DRAFT→COMPLETED. Devuelve false con
// cero filas afectadas: la transacción ya no estaba en DRAFT.
func (r *TransactionRepo) MarkCompleted(ctx context.Context, id string) (bool, error) {
	return r.markStatus(ctx, id, entity.StatusCompleted)
}

// MarkCancelled es el update condicional DRAFT→CANCELLED.
func (r *TransactionRepo) MarkCancelled(ctx context.Context, id string) (bool, error) {
	return r.markStatus(ctx, id, entity.StatusCancelled)
}

func (r *TransactionRepo) markStatus(ctx context.Context, id, status string) (bool, error) {
	query := `
		UPDATE inventory_transactions SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'DRAFT'`
	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("mark transaction %s: %w", status, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TransactionRepo) getBy(ctx context.Context, column, value string) (*entity.InventoryTransaction, error) {
	query := fmt.Sprintf(`
		SELECT id, public_id, trans_num, type, status, from_warehouse_id, to_warehouse_id,
			reference_type, reference_id, reference_num, reason_code,
			transaction_date, note, created_by, created_at, updated_at
		FROM inventory_transactions WHERE %s = $1`, column)

	var t entity.InventoryTransaction
	var fromWh, toWh, refType, refID, refNum, reason, note *string
	err := r.q.QueryRow(ctx, query, value).Scan(
		&t.ID, &t.PublicID, &t.TransNum, &t.Type, &t.Status, &fromWh, &toWh,
		&refType, &refID, &refNum, &reason,
		&t.TransactionDate, &note, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	t.FromWarehouseID = deref(fromWh)
	t.ToWarehouseID = deref(toWh)
	t.ReferenceType = deref(refType)
	t.ReferenceID = deref(refID)
	t.ReferenceNum = deref(refNum)
	t.ReasonCode = deref(reason)
	t.Note = deref(note)

	if err := r.loadLines(ctx, &t); err != nil {
		return nil, err
	}
	t.ResetLineSnapshot()
	return &t, nil
}

func (r *TransactionRepo) loadLines(ctx context.Context, txn *entity.InventoryTransaction) error {
	query := `
		SELECT id, header_id, line_num, item_sku_id, quantity, uom_code,
			to_base_factor, base_qty, base_uom_code, note
		FROM inventory_transaction_lines WHERE header_id = $1
		ORDER BY line_num`
	rows, err := r.q.Query(ctx, query, txn.ID)
	if err != nil {
		return fmt.Errorf("load transaction lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.TransactionLine
		var note *string
		if err := rows.Scan(&l.ID, &l.HeaderID, &l.LineNum, &l.ItemSKUID, &l.Quantity,
			&l.UOMCode, &l.ToBaseFactor, &l.BaseQty, &l.BaseUOMCode, &note); err != nil {
			return fmt.Errorf("scan transaction line: %w", err)
		}
		l.Note = deref(note)
		txn.Lines = append(txn.Lines, l)
	}
	return rows.Err()
}

func (r *TransactionRepo) insertLine(ctx context.Context, headerID string, l entity.TransactionLine) error {
	query := `
		INSERT INTO inventory_transaction_lines
			(id, header_id, line_num, item_sku_id, quantity, uom_code,
			 to_base_factor, base_qty, base_uom_code, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, l.ID, headerID, l.LineNum, l.ItemSKUID,
		l.Quantity, l.UOMCode, l.ToBaseFactor, l.BaseQty, l.BaseUOMCode, nullable(l.Note))
	if err != nil {
		return fmt.Errorf("insert transaction line %d: %w", l.LineNum, err)
	}
	return nil
}

func (r *TransactionRepo) updateLine(ctx context.Context, l entity.TransactionLine) error {
	query := `
		UPDATE inventory_transaction_lines
		SET line_num = $2, item_sku_id = $3, quantity = $4, uom_code = $5,
			to_base_factor = $6, base_qty = $7, base_uom_code = $8, note = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, l.ID, l.LineNum, l.ItemSKUID, l.Quantity,
		l.UOMCode, l.ToBaseFactor, l.BaseQty, l.BaseUOMCode, nullable(l.Note))
	if err != nil {
		return fmt.Errorf("update transaction line %d: %w", l.LineNum, err)
	}
	return nil
}

func (r *TransactionRepo) deleteLine(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM inventory_transaction_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction line: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
