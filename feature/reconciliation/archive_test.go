package reconciliation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func sampleReport(t *testing.T) reconcile.Report {
	t.Helper()
	local := reconcile.LocalSale{ID: "L1", PlatformOrderID: "A-1", TotalAmount: dec("72.45"), PurchaseDate: t0}
	platform := reconcile.PlatformSale{OrderID: "A-1", TotalAmount: dec("70.00"), PurchaseDate: t0}
	finding, err := reconcile.NewFinding(reconcile.KindAmountMismatch, &local, &platform, &reconcile.Difference{
		Field: "total_amount", LocalValue: local.TotalAmount, PlatformValue: platform.TotalAmount,
	}, "")
	require.NoError(t, err)

	end := t0.Add(time.Minute)
	return reconcile.Report{
		ID: "rep-1", EventID: "evt-1", Platform: "humanitix",
		StartTime: t0, EndTime: &end, Status: reconcile.StatusCompleted,
		TotalLocalSales: 1, TotalPlatformSales: 1,
		TotalLocalRevenue: dec("72.45"), TotalPlatformRevenue: dec("70"),
		DiscrepanciesFound: 1, SyncHealth: reconcile.HealthCritical,
		Discrepancies: []reconcile.Discrepancy{{
			ID: "d-1", ReportID: "rep-1", EventID: "evt-1", Platform: "humanitix",
			Finding: finding, Severity: reconcile.SeverityMedium, DetectedAt: t0,
		}},
	}
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook(sampleReport(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, discrepancySheet}, f.GetSheetList())

	v, err := f.GetCellValue(summarySheet, "B11")
	require.NoError(t, err)
	assert.Equal(t, "2.45", v)

	rows, err := f.GetRows(discrepancySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "amount_mismatch", rows[1][1])
	assert.Equal(t, "72.45", rows[1][5])
	assert.Equal(t, "70.00", rows[1][6])
}

func TestArchive_ArchiveReport(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archive := NewArchive(client, "reports", zap.NewNop())

	var uploaded []byte
	client.On("PutObject", ctx, "reports", "reconciliation/evt-1/rep-1.json", mock.Anything, mock.Anything,
		minio.PutObjectOptions{ContentType: contentTypeJSON}).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)
	client.On("PutObject", ctx, "reports", "reconciliation/evt-1/rep-1.xlsx", mock.Anything, mock.Anything,
		minio.PutObjectOptions{ContentType: contentTypeXLSX}).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, archive.ArchiveReport(ctx, sampleReport(t)))
	client.AssertExpectations(t)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	assert.Equal(t, "rep-1", decoded["id"])
}

func TestArchive_ArchiveReportUploadFails(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archive := NewArchive(client, "reports", zap.NewNop())

	client.On("PutObject", ctx, "reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	err := archive.ArchiveReport(ctx, sampleReport(t))
	assert.ErrorContains(t, err, "access denied")
}

func TestArchive_ListAndRead(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archive := NewArchive(client, "reports", zap.NewNop())

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "reconciliation/evt-1/rep-2.json"}
	ch <- minio.ObjectInfo{Key: "reconciliation/evt-1/rep-1.json"}
	close(ch)
	client.On("ListObjects", ctx, "reports", minio.ListObjectsOptions{Prefix: "reconciliation/evt-1/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	names, err := archive.List(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reconciliation/evt-1/rep-1.json", "reconciliation/evt-1/rep-2.json"}, names)

	client.On("GetObject", ctx, "reports", "reconciliation/evt-1/rep-1.json", minio.GetObjectOptions{}).
		Return(io.NopCloser(bytes.NewBufferString(`{"id":"rep-1"}`)), nil)

	data, err := archive.Read(ctx, "evt-1", "rep-1", "JSON")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"rep-1"}`, string(data))

	_, err = archive.Read(ctx, "evt-1", "rep-1", "csv")
	var verr *reconcile.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestArchive_ReadMissing(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	archive := NewArchive(client, "reports", zap.NewNop())

	client.On("GetObject", ctx, "reports", "reconciliation/evt-1/nope.xlsx", minio.GetObjectOptions{}).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."})

	_, err := archive.Read(ctx, "evt-1", "nope", "xlsx")
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
}
