package workbook

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// schema is the fixed layout of one sheet.
type schema struct {
	sheet  string
	header []string
	widths []float64
}

const (
	SheetExpenses = "Expenses"
	SheetPayments = "Payments"
)

var expenseSchema = schema{
	sheet: SheetExpenses,
	header: []string{
		colID, colDescription, colAmount, colDate, colUnitReference,
		colCreatedBy, colCreatedAt, colModifiedBy, colModifiedAt, colDeleted, colNotes,
	},
	widths: []float64{38, 40, 15, 12, 14, 20, 32, 20, 32, 10, 30},
}

var paymentSchema = schema{
	sheet: SheetPayments,
	header: []string{
		colID, colUnitReference, colAmount, colDate, colPaymentMode,
		colCreatedBy, colCreatedAt, colModifiedBy, colModifiedAt, colDeleted, colReferenceNumber,
	},
	widths: []float64{38, 14, 15, 12, 15, 20, 32, 20, 32, 10, 20},
}

// schemas lists the sheets of a new workbook, in tab order.
var schemas = []schema{expenseSchema, paymentSchema}

const (
	colID              = "id"
	colAmount          = "amount"
	colDate            = "date"
	colCreatedBy       = "created_by"
	colCreatedAt       = "created_at"
	colModifiedBy      = "modified_by"
	colModifiedAt      = "modified_at"
	colDeleted         = "deleted"
	colDescription     = "description"
	colUnitReference   = "unit_reference"
	colNotes           = "notes"
	colPaymentMode     = "payment_mode"
	colReferenceNumber = "reference_number"
)

var errCorrupt = errors.New("corrupt sheet")

func writeHeader(wb *excelize.File, s schema, style int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := wb.SetSheetRow(s.sheet, "A1", &header); err != nil {
		return fmt.Errorf("header %s: %w", s.sheet, err)
	}
	if err := wb.SetRowStyle(s.sheet, 1, 1, style); err != nil {
		return fmt.Errorf("header style %s: %w", s.sheet, err)
	}
	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.SetColWidth(s.sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// sheetRows is one sheet as read from a workbook: raw cell text plus the
// column slots resolved from the header row, so columns may appear in any
// order in the file.
type sheetRows struct {
	schema schema
	slot   map[string]int
	rows   [][]string // rows[0] is the header
}

func readSheet(wb *excelize.File, s schema) (*sheetRows, error) {
	if idx, err := wb.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		return emptySheet(s), nil
	}

	rows, err := wb.GetRows(s.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorrupt, s.sheet, err)
	}
	if len(rows) == 0 {
		return emptySheet(s), nil
	}

	slot := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		if name != "" {
			slot[name] = i
		}
	}
	for _, col := range s.header {
		if _, ok := slot[col]; !ok {
			return nil, fmt.Errorf("%w %s: missing column %q", errCorrupt, s.sheet, col)
		}
	}

	return &sheetRows{schema: s, slot: slot, rows: rows}, nil
}

func emptySheet(s schema) *sheetRows {
	slot := make(map[string]int, len(s.header))
	for i, col := range s.header {
		slot[col] = i
	}
	return &sheetRows{schema: s, slot: slot, rows: [][]string{s.header}}
}

// cells returns an accessor for data row i (1-based over data rows).
func (s *sheetRows) cells(i int) func(col string) string {
	row := s.rows[i]
	return func(col string) string {
		j, ok := s.slot[col]
		if !ok || j >= len(row) {
			return ""
		}
		return row[j]
	}
}

// dataRows is the number of rows below the header, blank rows included.
func (s *sheetRows) dataRows() int {
	return len(s.rows) - 1
}

// put writes values (in schema header order) to spreadsheet row rowNum.
// A missing sheet is created first.
func (s *sheetRows) put(wb *excelize.File, rowNum int, values []any) error {
	if idx, err := wb.GetSheetIndex(s.schema.sheet); err != nil || idx < 0 {
		if _, err := wb.NewSheet(s.schema.sheet); err != nil {
			return err
		}
		bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		if err := writeHeader(wb, s.schema, bold); err != nil {
			return err
		}
	}

	for i, col := range s.schema.header {
		cell, err := excelize.CoordinatesToCellName(s.slot[col]+1, rowNum)
		if err != nil {
			return err
		}
		if err := wb.SetCellValue(s.schema.sheet, cell, values[i]); err != nil {
			return fmt.Errorf("set %s!%s: %w", s.schema.sheet, cell, err)
		}
	}

	return nil
}
