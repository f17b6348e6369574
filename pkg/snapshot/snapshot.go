// Package snapshot reads and writes the persisted list of canonical parcel
// records that the search service loads at startup and on reload.
//
// The canonical encoding is a single JSON array of flat record objects. The
// same array may be stored zstd or gzip compressed, or as a SQLite table; the
// encoding is chosen from the file extension.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/countygis/parcels/pkg/record"
)

// ErrNotFound is returned by Read when the snapshot file does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Format identifies a snapshot encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatZstd
	FormatGzip
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatZstd:
		return "json+zstd"
	case FormatGzip:
		return "json+gzip"
	case FormatSQLite:
		return "sqlite"
	}
	return "json"
}

// FormatFor picks the encoding from the file name.
func FormatFor(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return FormatZstd
	case strings.HasSuffix(name, ".gz"):
		return FormatGzip
	case strings.HasSuffix(name, ".db"), strings.HasSuffix(name, ".sqlite"), strings.HasSuffix(name, ".sqlite3"):
		return FormatSQLite
	}
	return FormatJSON
}

// Snapshot is the decoded content of a snapshot file.
type Snapshot struct {
	Path    string
	Format  Format
	ModTime time.Time
	Records []record.Record
	// Skipped counts array elements that could not be decoded.
	Skipped int
}

// Read loads the snapshot at path. Individual malformed records are skipped
// and counted; a missing file yields ErrNotFound.
func Read(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	snap := &Snapshot{
		Path:    path,
		Format:  FormatFor(path),
		ModTime: info.ModTime(),
	}

	if snap.Format == FormatSQLite {
		snap.Records, err = readSQLite(path)
		if err != nil {
			return nil, err
		}
		return snap, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompressor(snap.Format, f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	snap.Records, snap.Skipped, err = decodeJSON(r)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return snap, nil
}

// Stat returns the modification time of the snapshot file.
func Stat(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Write stores records at path, replacing any existing snapshot atomically:
// the data is written to a temporary file in the same directory and renamed
// over the destination once complete.
func Write(path string, records []record.Record) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	format := FormatFor(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if format == FormatSQLite {
		// SQLite manages its own file handle.
		if err := tmp.Close(); err != nil {
			return err
		}
		if err := writeSQLite(tmpPath, records); err != nil {
			return err
		}
	} else {
		if err := writeStream(tmp, format, records); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return fmt.Errorf("syncing snapshot: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("closing snapshot: %w", err)
		}
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func writeStream(w io.Writer, format Format, records []record.Record) error {
	cw, closeFn, err := compressor(format, w)
	if err != nil {
		return err
	}
	if err := encodeJSON(cw, records); err != nil {
		closeFn()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	return nil
}
