package transaction

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// DocumentUseCase genera los documentos de una transacción completada:
// comprobante PDF y XML de intercambio para sistemas externos.
type DocumentUseCase struct {
	txnRepo repository.TransactionRepository
	voucher VoucherGenerator
	xml     XMLBuilder
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(txnRepo repository.TransactionRepository, voucher VoucherGenerator, xml XMLBuilder) *DocumentUseCase {
	return &DocumentUseCase{txnRepo: txnRepo, voucher: voucher, xml: xml}
}

// GenerateVoucher devuelve el comprobante PDF de la transacción.
func (uc *DocumentUseCase) GenerateVoucher(ctx context.Context, publicID string) ([]byte, error) {
	txn, err := uc.loadCompleted(ctx, publicID)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.voucher.GenerateVoucher(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("generar comprobante de %s: %w", txn.TransNum, err)
	}
	return pdf, nil
}

// ExportXML devuelve el documento XML de intercambio de la transacción.
func (uc *DocumentUseCase) ExportXML(ctx context.Context, publicID string) ([]byte, error) {
	txn, err := uc.loadCompleted(ctx, publicID)
	if err != nil {
		return nil, err
	}
	doc, err := uc.xml.Build(txn)
	if err != nil {
		return nil, fmt.Errorf("exportar XML de %s: %w", txn.TransNum, err)
	}
	return doc, nil
}

// loadCompleted carga la transacción; los documentos solo existen para
// transacciones completadas.
func (uc *DocumentUseCase) loadCompleted(ctx context.Context, publicID string) (*entity.InventoryTransaction, error) {
	txn, err := uc.txnRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.ErrNotFound
	}
	if txn.Status != entity.StatusCompleted {
		return nil, domain.ErrInvalidState
	}
	return txn, nil
}
