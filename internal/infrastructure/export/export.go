// Package export renders report data as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"trackiq/internal/domain/reports"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// Sheet is one worksheet: a bold header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Write renders sheets into a single workbook.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("export: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s, header); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.Name, "A1", &s.Headers); err != nil {
		return fmt.Errorf("write header of %q: %w", s.Name, err)
	}
	if err := f.SetRowStyle(s.Name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header of %q: %w", s.Name, err)
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, s.Name, err)
		}
	}
	if len(s.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(s.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, "A", last, 18); err != nil {
			return fmt.Errorf("size columns of %q: %w", s.Name, err)
		}
	}
	return nil
}

// cellValue turns decimals into numbers so spreadsheets can sum them.
func cellValue(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

// FileName builds an attachment name such as "inventory-value-20260115.xlsx".
func FileName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, at.Format("20060102"))
}

// InventorySheets renders the inventory value report: a per-item sheet and a per-type summary.
func InventorySheets(r *reports.InventoryValueReport) []Sheet {
	items := Sheet{
		Name: "Inventory",
		Headers: []string{
			"Brand", "Item Type", "Code", "Name", "Current Stock", "Unit",
			"Reorder Point", "Average Cost", "Total Value", "Low",
		},
		Rows: make([][]any, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		items.Rows = append(items.Rows, []any{
			it.BrandCode, string(it.ItemType), it.Code, it.Name, it.CurrentStock, string(it.Unit),
			it.ReorderPoint, it.AverageCost, it.TotalValue, yesNo(it.Low()),
		})
	}

	summary := Sheet{
		Name:    "Summary",
		Headers: []string{"Item Type", "Items", "Total Value"},
	}
	for _, s := range r.ByType {
		summary.Rows = append(summary.Rows, []any{string(s.ItemType), s.Items, s.TotalValue})
	}
	summary.Rows = append(summary.Rows, []any{"total", len(r.Items), r.TotalValue})

	return []Sheet{items, summary}
}

// ProductionSummarySheet renders the production summary grouped by product.
func ProductionSummarySheet(r *reports.ProductionSummaryReport) Sheet {
	s := Sheet{
		Name: "Production",
		Headers: []string{
			"Product Code", "Product", "Batches", "Planned", "Produced", "Rejected",
			"Efficiency %", "Total Cost",
		},
		Rows: make([][]any, 0, len(r.Rows)+1),
	}
	for _, row := range r.Rows {
		s.Rows = append(s.Rows, []any{
			row.ProductCode, row.ProductName, row.Batches, row.Planned, row.Produced, row.Rejected,
			row.Efficiency(), row.TotalCost,
		})
	}
	t := r.Totals
	s.Rows = append(s.Rows, []any{
		"TOTAL", "", t.Batches, t.Planned, t.Produced, t.Rejected, t.Efficiency, t.TotalCost,
	})
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
