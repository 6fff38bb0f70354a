// Package workbook turns a single .xlsx file into a small table store.
//
// The file holds two sheets, Expenses and Payments. Every mutation runs the
// same cycle while holding the file's writer slot:
//
//	backup current file -> read whole workbook -> change rows in memory
//	-> write to a temp file -> rename over the real file
//
// Writers are admitted one at a time in arrival order. Readers do not take
// the slot; because the file is only ever replaced by rename, a reader sees
// either the previous or the next complete version.
//
// Rows are never removed. Deleting a record sets its deleted column, so ids
// and row order stay stable for the lifetime of the file.
package workbook
