package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fleetdash/internal/engine"
)

// Format is an export file format.
type Format string

const (
	CSV    Format = "csv"
	Arrow  Format = "arrow"
	SQLite Format = "sqlite"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts csv, arrow or sqlite; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, Arrow, SQLite:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

func (f Format) ContentType() string {
	switch f {
	case Arrow:
		return "application/vnd.apache.arrow.stream"
	case SQLite:
		return "application/vnd.sqlite3"
	default:
		return "text/csv; charset=utf-8"
	}
}

func (f Format) Ext() string {
	if f == SQLite {
		return ".sqlite"
	}
	return "." + string(f)
}

// Write encodes ds to w in format f.
func Write(w io.Writer, ds *engine.Dataset, f Format) error {
	if ds == nil {
		return engine.ErrNoDataset
	}
	switch f {
	case CSV:
		return WriteCSV(w, ds)
	case Arrow:
		return WriteArrow(w, ds)
	case SQLite:
		return copySQLite(w, ds)
	}
	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

// WriteFile encodes ds into path.
func WriteFile(path string, ds *engine.Dataset, f Format) error {
	if f == SQLite {
		// the driver needs a fresh file
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return WriteSQLite(path, ds)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, ds, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copySQLite(w io.Writer, ds *engine.Dataset) error {
	dir, err := os.MkdirTemp("", "fleetdash-export-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	path := dir + string(os.PathSeparator) + "export.sqlite"
	if err := WriteSQLite(path, ds); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// text renders a cell for text formats. Cells of typed columns print in their
// coerced form when they coerce, everything else as its key.
func text(v engine.Value, t engine.ColumnType) string {
	switch t {
	case engine.TypeDate:
		if tm, ok := engine.ToDate(v); ok {
			return engine.Date(tm).Key()
		}
	case engine.TypeNumber:
		if f, ok := engine.ToNumber(v); ok {
			return engine.Number(f).Key()
		}
	}
	return v.Key()
}
