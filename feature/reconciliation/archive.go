package reconciliation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	archivePrefix    = "reconciliation"
	summarySheet     = "Summary"
	discrepancySheet = "Discrepancies"

	contentTypeJSON = "application/json"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Archive stores finished reports in object storage as JSON and XLSX.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// ObjectName returns the key of an archived report in the given format (json or xlsx).
func ObjectName(eventID, reportID, format string) string {
	return path.Join(archivePrefix, eventID, reportID+"."+format)
}

// ArchiveReport implements reconcile.Archiver.
func (a *Archive) ArchiveReport(ctx context.Context, report reconcile.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := a.put(ctx, ObjectName(report.EventID, report.ID, "json"), data, contentTypeJSON); err != nil {
		return err
	}

	sheet, err := Workbook(report)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	if err := a.put(ctx, ObjectName(report.EventID, report.ID, "xlsx"), sheet, contentTypeXLSX); err != nil {
		return err
	}

	a.logger.Debug("Report archived",
		zap.String("report_id", report.ID),
		zap.String("bucket", a.bucket))
	return nil
}

func (a *Archive) put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// List returns the archived object names of an event in sorted order.
func (a *Archive) List(ctx context.Context, eventID string) ([]string, error) {
	prefix := path.Join(archivePrefix, eventID) + "/"
	var names []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archive: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of an archived report.
func (a *Archive) Read(ctx context.Context, eventID, reportID, format string) ([]byte, error) {
	format = strings.ToLower(format)
	if format != "json" && format != "xlsx" {
		return nil, &reconcile.ValidationError{Field: "format", Reason: "must be json or xlsx"}
	}

	name := ObjectName(eventID, reportID, format)
	rc, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, archiveError(name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, archiveError(name, err)
	}
	return data, nil
}

func archiveError(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", reconcile.ErrNotFound, name)
	}
	return fmt.Errorf("failed to read %s: %w", name, err)
}

// ContentType returns the MIME type of an archive format.
func ContentType(format string) string {
	if strings.EqualFold(format, "xlsx") {
		return contentTypeXLSX
	}
	return contentTypeJSON
}

// Workbook renders a report as an XLSX file with a summary and a discrepancy sheet.
func Workbook(report reconcile.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	end := ""
	if report.EndTime != nil {
		end = report.EndTime.Format("2006-01-02 15:04:05")
	}
	summary := [][]any{
		{"Report ID", report.ID},
		{"Event ID", report.EventID},
		{"Platform", report.Platform},
		{"Status", string(report.Status)},
		{"Start", report.StartTime.Format("2006-01-02 15:04:05")},
		{"End", end},
		{"Local Sales", report.TotalLocalSales},
		{"Platform Sales", report.TotalPlatformSales},
		{"Local Revenue", report.TotalLocalRevenue.StringFixed(2)},
		{"Platform Revenue", report.TotalPlatformRevenue.StringFixed(2)},
		{"Revenue Difference", report.RevenueDifference().StringFixed(2)},
		{"Discrepancies Found", report.DiscrepanciesFound},
		{"Discrepancies Resolved", report.DiscrepanciesResolved},
		{"Sync Health", string(report.SyncHealth)},
		{"Error", report.Error},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(discrepancySheet); err != nil {
		return nil, err
	}
	header := []any{"ID", "Type", "Severity", "Sale ID", "Order ID", "Local Amount", "Platform Amount", "Resolution", "Detected At", "Notes"}
	if err := setRow(f, discrepancySheet, 1, header); err != nil {
		return nil, err
	}

	for i, d := range report.Discrepancies {
		saleID, orderID, localAmount, platformAmount := "", "", "", ""
		if l := d.LocalData(); l != nil {
			saleID = l.ID
			orderID = l.PlatformOrderID
			localAmount = l.TotalAmount.StringFixed(2)
		}
		if p := d.PlatformData(); p != nil {
			orderID = p.OrderID
			platformAmount = p.TotalAmount.StringFixed(2)
		}
		row := []any{
			d.ID, string(d.Kind()), string(d.Severity), saleID, orderID,
			localAmount, platformAmount, string(d.Resolution),
			d.DetectedAt.Format("2006-01-02 15:04:05"), d.Notes,
		}
		if err := setRow(f, discrepancySheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
