package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"github.com/xuri/excelize/v2"
)

var agingExportHeadings = []string{
	"Name", "Documents", "Current", "1-30 Days", "31-60 Days", "61-90 Days", "90+ Days", "Total",
}

func writeAgingSheet(f *excelize.File, sheetName string, rows [][]interface{}) error {
	for col, h := range agingExportHeadings {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportReceivableAgingExcel streams the receivable aging summary as an XLSX
// workbook. The last row repeats the bucket totals and the grand total.
func ExportReceivableAgingExcel(ctx context.Context, asOfDate models.MyDateString, w io.Writer) error {
	report, err := GetReceivableAgingSummary(ctx, asOfDate)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(report.Rows)+1)
	for _, r := range report.Rows {
		rows = append(rows, []interface{}{
			r.CustomerName, r.DocumentCount,
			r.Current.InexactFloat64(), r.Int1to30.InexactFloat64(),
			r.Int31to60.InexactFloat64(), r.Int61to90.InexactFloat64(),
			r.Int90plus.InexactFloat64(), r.Total.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{
		"Total", len(report.Rows),
		report.Current.InexactFloat64(), report.Int1to30.InexactFloat64(),
		report.Int31to60.InexactFloat64(), report.Int61to90.InexactFloat64(),
		report.Int90plus.InexactFloat64(), report.GrandTotal.InexactFloat64(),
	})

	return writeAgingWorkbook("Receivable Aging", rows, w)
}

// ExportPayableAgingExcel is the supplier-side mirror.
func ExportPayableAgingExcel(ctx context.Context, asOfDate models.MyDateString, w io.Writer) error {
	report, err := GetPayableAgingSummary(ctx, asOfDate)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(report.Rows)+1)
	for _, r := range report.Rows {
		rows = append(rows, []interface{}{
			r.SupplierName, r.DocumentCount,
			r.Current.InexactFloat64(), r.Int1to30.InexactFloat64(),
			r.Int31to60.InexactFloat64(), r.Int61to90.InexactFloat64(),
			r.Int90plus.InexactFloat64(), r.Total.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{
		"Total", len(report.Rows),
		report.Current.InexactFloat64(), report.Int1to30.InexactFloat64(),
		report.Int31to60.InexactFloat64(), report.Int61to90.InexactFloat64(),
		report.Int90plus.InexactFloat64(), report.GrandTotal.InexactFloat64(),
	})

	return writeAgingWorkbook("Payable Aging", rows, w)
}

func writeAgingWorkbook(sheetName string, rows [][]interface{}, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := writeAgingSheet(f, sheetName, rows); err != nil {
		return err
	}

	return f.Write(w)
}

// AgingExportFileName names the download, e.g. receivable-aging-2024-05-31.xlsx.
func AgingExportFileName(prefix string, asOfDate models.MyDateString) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, time.Time(asOfDate).Format("2006-01-02"))
}
