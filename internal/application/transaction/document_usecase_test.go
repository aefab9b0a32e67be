package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptxn "github.com/jhoicas/Bodega-api/internal/application/transaction"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

type stubVoucher struct{ calls int }

func (s *stubVoucher) GenerateVoucher(_ context.Context, txn *entity.InventoryTransaction) ([]byte, error) {
	s.calls++
	return []byte("PDF:" + txn.TransNum), nil
}

type stubXML struct{}

func (stubXML) Build(txn *entity.InventoryTransaction) ([]byte, error) {
	return []byte("<t>" + txn.TransNum + "</t>"), nil
}

func seedTxn(t *testing.T, repo *memTxnRepo, status string) *entity.InventoryTransaction {
	t.Helper()
	txn, err := entity.NewInventoryTransaction(
		entity.TypeGoodsReceipt, "GR-202608-0001", "", "w1", "", "tester", time.Time{})
	require.NoError(t, err)
	line, err := entity.NewTransactionLine(txn.Type, 1, "sku-1", dec("5"), "BOX", dec("12"), "EA", "")
	require.NoError(t, err)
	require.NoError(t, txn.AddLine(line))
	require.NoError(t, repo.Create(context.Background(), txn))
	if status != entity.StatusDraft {
		repo.records[txn.ID].status = status
	}
	return txn
}

func TestDocumentos_SoloParaCompletadas(t *testing.T) {
	repo := newMemTxnRepo()
	txn := seedTxn(t, repo, entity.StatusDraft)
	uc := apptxn.NewDocumentUseCase(repo, &stubVoucher{}, stubXML{})
	ctx := context.Background()

	_, err := uc.GenerateVoucher(ctx, txn.PublicID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.ExportXML(ctx, txn.PublicID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.GenerateVoucher(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentos_DeTransaccionCompletada(t *testing.T) {
	repo := newMemTxnRepo()
	txn := seedTxn(t, repo, entity.StatusCompleted)
	voucher := &stubVoucher{}
	uc := apptxn.NewDocumentUseCase(repo, voucher, stubXML{})
	ctx := context.Background()

	pdf, err := uc.GenerateVoucher(ctx, txn.PublicID)
	require.NoError(t, err)
	assert.Equal(t, []byte("PDF:GR-202608-0001"), pdf)
	assert.Equal(t, 1, voucher.calls)

	doc, err := uc.ExportXML(ctx, txn.PublicID)
	require.NoError(t, err)
	assert.Equal(t, []byte("<t>GR-202608-0001</t>"), doc)
}
