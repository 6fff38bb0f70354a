package workbook

import (
	"context"
	"fmt"
	"iter"

	"github.com/xuri/excelize/v2"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

// Table is one sheet of a File, typed by its record R and patch P.
type Table[R, P any] struct {
	file  *File
	codec codec[R, P]
}

// Expenses returns the outflow table of f.
func Expenses(f *File) *Table[models.Expense, models.ExpensePatch] {
	return &Table[models.Expense, models.ExpensePatch]{file: f, codec: expenseCodec{}}
}

// Payments returns the inflow table of f.
func Payments(f *File) *Table[models.Payment, models.PaymentPatch] {
	return &Table[models.Payment, models.PaymentPatch]{file: f, codec: paymentCodec{}}
}

func (t *Table[R, P]) Sheet() string { return t.codec.schema().sheet }

// Create appends a new record built from fields. Identity and bookkeeping
// fields of the argument are ignored and assigned here.
func (t *Table[R, P]) Create(ctx context.Context, fields R, actor string) (R, error) {
	var zero R

	rec := fields
	e := t.codec.entry(&rec)
	e.ID = ""
	e.CreatedBy = actor
	e.ModifiedBy = nil
	e.ModifiedAt = nil
	e.Deleted = false

	if err := t.codec.validate(rec); err != nil {
		return zero, err
	}

	err := t.file.mutate(ctx, "create "+t.Sheet(), func(wb *excelize.File) error {
		sheet, err := readSheet(wb, t.codec.schema())
		if err != nil {
			return t.corrupt(err)
		}

		taken := make(map[string]struct{}, sheet.dataRows())
		for i := 1; i < len(sheet.rows); i++ {
			taken[sheet.cells(i)(colID)] = struct{}{}
		}
		e.ID = t.file.newID()
		for {
			if _, dup := taken[e.ID]; !dup && e.ID != "" {
				break
			}
			e.ID = t.file.newID()
		}
		e.CreatedAt = t.file.now().UTC()

		if err := sheet.put(wb, len(sheet.rows)+1, t.codec.encode(rec)); err != nil {
			return &common.StorageError{Op: "write", Path: t.file.path, Err: err}
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	t.file.log.Info(ctx, "record created", "sheet", t.Sheet(), "id", e.ID, "actor", actor)
	return rec, nil
}

// List returns the visible records dated within [from, to], in insertion
// order. Nil bounds are open. The sequence iterates over one snapshot taken
// by this call and can be ranged over any number of times.
func (t *Table[R, P]) List(ctx context.Context, from, to *models.Date) (iter.Seq[R], error) {
	records, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	return func(yield func(R) bool) {
		for i := range records {
			e := t.codec.entry(&records[i])
			if e.Deleted || !e.Date.Within(from, to) {
				continue
			}
			if !yield(records[i]) {
				return
			}
		}
	}, nil
}

// GetByID returns the visible record with the given id.
func (t *Table[R, P]) GetByID(ctx context.Context, id string) (R, error) {
	var zero R

	records, err := t.load(ctx)
	if err != nil {
		return zero, err
	}
	for i := range records {
		e := t.codec.entry(&records[i])
		if e.ID == id && !e.Deleted {
			return records[i], nil
		}
	}
	return zero, t.notFound(id)
}

// Update merges patch into the visible record with the given id.
func (t *Table[R, P]) Update(ctx context.Context, id string, patch P, actor string) (R, error) {
	var zero R

	if err := t.codec.validatePatch(patch); err != nil {
		return zero, err
	}

	var updated R
	err := t.file.mutate(ctx, "update "+t.Sheet(), func(wb *excelize.File) error {
		sheet, row, rec, err := t.find(wb, id)
		if err != nil {
			return err
		}

		if err := t.codec.apply(&rec, patch); err != nil {
			return err
		}
		if err := t.codec.validate(rec); err != nil {
			return err
		}
		t.codec.entry(&rec).Stamp(actor, t.file.now().UTC())

		if err := sheet.put(wb, row+1, t.codec.encode(rec)); err != nil {
			return &common.StorageError{Op: "write", Path: t.file.path, Err: err}
		}
		updated = rec
		return nil
	})
	if err != nil {
		return zero, err
	}

	t.file.log.Info(ctx, "record updated", "sheet", t.Sheet(), "id", id, "actor", actor)
	return updated, nil
}

// SoftDelete marks the record deleted and returns it as it was before.
func (t *Table[R, P]) SoftDelete(ctx context.Context, id string, actor string) (R, error) {
	var zero R

	var before R
	err := t.file.mutate(ctx, "delete "+t.Sheet(), func(wb *excelize.File) error {
		sheet, row, rec, err := t.find(wb, id)
		if err != nil {
			return err
		}
		before = rec

		e := t.codec.entry(&rec)
		e.Deleted = true
		e.Stamp(actor, t.file.now().UTC())

		if err := sheet.put(wb, row+1, t.codec.encode(rec)); err != nil {
			return &common.StorageError{Op: "write", Path: t.file.path, Err: err}
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	t.file.log.Info(ctx, "record deleted", "sheet", t.Sheet(), "id", id, "actor", actor)
	return before, nil
}

// load decodes every row of the current version, deleted ones included.
// Rows without an id are skipped.
func (t *Table[R, P]) load(ctx context.Context) ([]R, error) {
	wb, err := t.file.read(ctx)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := readSheet(wb, t.codec.schema())
	if err != nil {
		return nil, t.corrupt(err)
	}

	out := make([]R, 0, sheet.dataRows())
	for i := 1; i < len(sheet.rows); i++ {
		cell := sheet.cells(i)
		if cell(colID) == "" {
			continue
		}
		rec, err := t.codec.decode(cell)
		if err != nil {
			return nil, t.corrupt(fmt.Errorf("row %d: %w", i+1, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

// find locates the visible record id inside a loaded workbook. row is the
// index into sheet.rows.
func (t *Table[R, P]) find(wb *excelize.File, id string) (*sheetRows, int, R, error) {
	var zero R
	if id == "" {
		return nil, 0, zero, t.notFound(id)
	}

	sheet, err := readSheet(wb, t.codec.schema())
	if err != nil {
		return nil, 0, zero, t.corrupt(err)
	}
	for i := 1; i < len(sheet.rows); i++ {
		cell := sheet.cells(i)
		if cell(colID) != id {
			continue
		}
		rec, err := t.codec.decode(cell)
		if err != nil {
			return nil, 0, zero, t.corrupt(fmt.Errorf("row %d: %w", i+1, err))
		}
		if t.codec.entry(&rec).Deleted {
			continue
		}
		return sheet, i, rec, nil
	}
	return nil, 0, zero, t.notFound(id)
}

func (t *Table[R, P]) corrupt(err error) error {
	return &common.StorageError{Op: "decode " + t.Sheet(), Path: t.file.path, Err: err}
}

func (t *Table[R, P]) notFound(id string) error {
	return fmt.Errorf("%s %q: %w", t.Sheet(), id, common.ErrNotFound)
}
