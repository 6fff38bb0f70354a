package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/semaphore"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/filex"
	"github.com/dmitrijs2005/mysociety/internal/logging"
)

// Options configure a File.
type Options struct {
	// Path of the workbook, e.g. ./data/mysociety_data.xlsx.
	Path string
	// BackupDir receives a copy of the workbook before every mutation.
	BackupDir string
	// Mirror, when set, also receives every backup. Uploads run in the
	// background and never fail a mutation.
	Mirror Mirror
	// MirrorTimeout bounds one mirror upload. Zero means 30s.
	MirrorTimeout time.Duration

	Logger logging.Logger
	Now    func() time.Time
	NewID  func() string
}

// File is the unit of locking and atomic publish. Create one per path per
// process and share it; two Files on the same path would not exclude each
// other.
type File struct {
	path      string
	backupDir string

	writer *semaphore.Weighted

	mirror        Mirror
	mirrorTimeout time.Duration
	uploads       sync.WaitGroup

	log   logging.Logger
	now   func() time.Time
	newID func() string
}

// Open prepares the data and backup directories. The workbook itself is
// created lazily on first access.
func Open(opts Options) (*File, error) {
	if opts.Path == "" {
		return nil, errors.New("workbook path is required")
	}
	if opts.BackupDir == "" {
		opts.BackupDir = filepath.Join(filepath.Dir(opts.Path), "backups")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.MirrorTimeout <= 0 {
		opts.MirrorTimeout = 30 * time.Second
	}

	for _, dir := range []string{filepath.Dir(opts.Path), opts.BackupDir} {
		if err := filex.EnsureDir(dir); err != nil {
			return nil, &common.StorageError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	return &File{
		path:          opts.Path,
		backupDir:     opts.BackupDir,
		writer:        semaphore.NewWeighted(1),
		mirror:        opts.Mirror,
		mirrorTimeout: opts.MirrorTimeout,
		log:           opts.Logger.With("module", "workbook"),
		now:           opts.Now,
		newID:         opts.NewID,
	}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) BackupDir() string { return f.backupDir }

// Snapshot returns the current on-disk bytes, unmodified. The handle stays
// on the version that was current when it was opened.
func (f *File) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	if err := f.ensure(ctx); err != nil {
		return nil, err
	}
	r, err := os.Open(f.path)
	if err != nil {
		return nil, &common.StorageError{Op: "open", Path: f.path, Err: err}
	}
	return r, nil
}

// Close waits for background mirror uploads.
func (f *File) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.uploads.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mutate runs fn with exclusive write access. The context only bounds the
// wait for the writer slot; once admitted, the cycle runs to completion.
// Nothing is published when fn returns an error.
func (f *File) mutate(ctx context.Context, op string, fn func(wb *excelize.File) error) error {
	if err := f.writer.Acquire(ctx, 1); err != nil {
		return err
	}
	defer f.writer.Release(1)

	started := f.now()

	if _, err := f.copyToBackups(); err != nil {
		return err
	}

	wb, err := f.loadOrInit()
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := fn(wb); err != nil {
		return err
	}

	if err := f.publish(wb); err != nil {
		return err
	}

	f.log.Debug(context.Background(), "workbook published", "op", op, "took", f.now().Sub(started))
	return nil
}

// ensure creates the header-only workbook if it does not exist yet. The
// check is repeated under the writer slot so a concurrent mutation cannot
// be overwritten by the initial version.
func (f *File) ensure(ctx context.Context) error {
	ok, err := filex.Exists(f.path)
	if err != nil {
		return &common.StorageError{Op: "stat", Path: f.path, Err: err}
	}
	if ok {
		return nil
	}

	if err := f.writer.Acquire(ctx, 1); err != nil {
		return err
	}
	defer f.writer.Release(1)

	ok, err = filex.Exists(f.path)
	if err != nil {
		return &common.StorageError{Op: "stat", Path: f.path, Err: err}
	}
	if ok {
		return nil
	}

	wb, err := newWorkbook()
	if err != nil {
		return &common.StorageError{Op: "init", Path: f.path, Err: err}
	}
	defer wb.Close()

	if err := f.publish(wb); err != nil {
		return err
	}
	f.log.Info(ctx, "workbook initialized", "path", f.path)
	return nil
}

// read loads the current version for a reader.
func (f *File) read(ctx context.Context) (*excelize.File, error) {
	if err := f.ensure(ctx); err != nil {
		return nil, err
	}
	return f.readFile()
}

func (f *File) readFile() (*excelize.File, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &common.StorageError{Op: "read", Path: f.path, Err: err}
	}
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &common.StorageError{Op: "parse", Path: f.path, Err: err}
	}
	return wb, nil
}

// loadOrInit is the writer-side load: a missing file starts as an empty
// workbook that the mutation will publish.
func (f *File) loadOrInit() (*excelize.File, error) {
	ok, err := filex.Exists(f.path)
	if err != nil {
		return nil, &common.StorageError{Op: "stat", Path: f.path, Err: err}
	}
	if ok {
		return f.readFile()
	}
	wb, err := newWorkbook()
	if err != nil {
		return nil, &common.StorageError{Op: "init", Path: f.path, Err: err}
	}
	return wb, nil
}

func (f *File) publish(wb *excelize.File) error {
	err := filex.WriteAtomic(f.path, func(w io.Writer) error {
		return wb.Write(w)
	})
	if err != nil {
		return &common.StorageError{Op: "publish", Path: f.path, Err: err}
	}
	return nil
}

// newWorkbook builds the initial version: one sheet per table, header row
// in bold.
func newWorkbook() (*excelize.File, error) {
	wb := excelize.NewFile()

	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		wb.Close()
		return nil, err
	}

	for i, s := range schemas {
		if i == 0 {
			err = wb.SetSheetName(wb.GetSheetName(0), s.sheet)
		} else {
			_, err = wb.NewSheet(s.sheet)
		}
		if err != nil {
			wb.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.sheet, err)
		}
		if err := writeHeader(wb, s, bold); err != nil {
			wb.Close()
			return nil, err
		}
	}
	wb.SetActiveSheet(0)
	return wb, nil
}
