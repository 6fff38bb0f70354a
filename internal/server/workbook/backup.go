package workbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/mysociety/internal/common"
	"github.com/dmitrijs2005/mysociety/internal/filex"
)

// Mirror receives a copy of every backup, e.g. an object store bucket.
type Mirror interface {
	Upload(ctx context.Context, name string, body []byte) error
}

// Backup describes one backup artifact.
type Backup struct {
	Name    string    `json:"filename"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified_at"`
}

const backupTimeLayout = "2006-01-02T15-04-05.000000000Z"

// maxBackupCollisions bounds the suffixes tried when a backup name is taken.
const maxBackupCollisions = 99

// BackupName maps a timestamp to a backup file name. Names sort
// lexically in time order.
func (f *File) BackupName(t time.Time) string {
	return f.backupName(t, 0)
}

// backupName appends "_<n>" for the n-th backup sharing a timestamp. The
// suffix sorts after the plain name, so listing stays newest first.
func (f *File) backupName(t time.Time, n int) string {
	ts := strings.ReplaceAll(t.UTC().Format(backupTimeLayout), ".", "-")
	if n > 0 {
		ts += fmt.Sprintf("_%02d", n)
	}
	return f.backupPrefix() + ts + filepath.Ext(f.path)
}

func (f *File) backupPrefix() string {
	base := filepath.Base(f.path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_"
}

// CreateBackup copies the current workbook into the backup directory.
// It takes the writer slot, so the copy never races a mutation's own
// backup. It returns common.ErrNotFound when there is nothing to back up
// yet.
func (f *File) CreateBackup(ctx context.Context) (*Backup, error) {
	if err := f.writer.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.writer.Release(1)

	b, err := f.copyToBackups()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("workbook %s: %w", f.path, common.ErrNotFound)
	}
	f.log.Info(ctx, "manual backup created", "backup", b.Name)
	return b, nil
}

// ListBackups returns the backups of this workbook, newest first.
func (f *File) ListBackups() ([]Backup, error) {
	entries, err := os.ReadDir(f.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Backup{}, nil
		}
		return nil, &common.StorageError{Op: "readdir", Path: f.backupDir, Err: err}
	}

	prefix, ext := f.backupPrefix(), filepath.Ext(f.path)
	out := make([]Backup, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Backup{
			Name:    name,
			Path:    filepath.Join(f.backupDir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// LookupBackup returns the backup with the given file name.
func (f *File) LookupBackup(name string) (*Backup, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, f.backupPrefix()) {
		return nil, fmt.Errorf("backup %q: %w", name, common.ErrNotFound)
	}
	path := filepath.Join(f.backupDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("backup %q: %w", name, common.ErrNotFound)
		}
		return nil, &common.StorageError{Op: "stat", Path: path, Err: err}
	}
	return &Backup{Name: name, Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// copyToBackups copies the workbook if it exists; a missing workbook yields
// (nil, nil). The copy reads through one open handle, so it is consistent
// even when a writer renames a new version into place meanwhile.
func (f *File) copyToBackups() (*Backup, error) {
	ok, err := filex.Exists(f.path)
	if err != nil {
		return nil, &common.StorageError{Op: "stat", Path: f.path, Err: err}
	}
	if !ok {
		return nil, nil
	}

	at := f.now()
	name := f.BackupName(at)
	dst := filepath.Join(f.backupDir, name)
	for n := 1; ; n++ {
		err := filex.CopyFile(f.path, dst)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || n > maxBackupCollisions {
			return nil, &common.StorageError{Op: "backup", Path: dst, Err: err}
		}
		name = f.backupName(at, n)
		dst = filepath.Join(f.backupDir, name)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return nil, &common.StorageError{Op: "stat", Path: dst, Err: err}
	}
	b := &Backup{Name: name, Path: dst, Size: info.Size(), ModTime: info.ModTime()}

	f.mirrorBackup(b)
	return b, nil
}

func (f *File) mirrorBackup(b *Backup) {
	if f.mirror == nil {
		return
	}

	f.uploads.Add(1)
	go func() {
		defer f.uploads.Done()

		ctx, cancel := context.WithTimeout(context.Background(), f.mirrorTimeout)
		defer cancel()

		body, err := os.ReadFile(b.Path)
		if err != nil {
			f.log.Warn(ctx, "backup mirror read failed", "backup", b.Name, "error", err)
			return
		}
		if err := f.mirror.Upload(ctx, b.Name, body); err != nil {
			f.log.Warn(ctx, "backup mirror upload failed", "backup", b.Name, "error", err)
			return
		}
		f.log.Debug(ctx, "backup mirrored", "backup", b.Name)
	}()
}
