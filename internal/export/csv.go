// Package export maintains the CSV side-export of accepted slips: an
// append-only file per calendar day of export time, plus an in-memory render
// of the full history. The CSV files are a derived mirror; the slip store is
// the source of truth.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkordes/haul-slips/internal/clock"
	"github.com/pkordes/haul-slips/internal/domain"
)

// ExportFilename is the attachment name used for full-history downloads.
const ExportFilename = "slips-export.csv"

// DailyFilename returns the name of the export file for a calendar date
// formatted as YYYY-MM-DD.
func DailyFilename(date string) string {
	return "slips-" + date + ".csv"
}

// DailyWriter appends slips to slips-<YYYY-MM-DD>.csv in its directory, using
// the process-local date at the time of the call.
//
// Appends to the same file are serialised, and the header is written only when
// the file is empty, so concurrent first writers of the day produce exactly one
// header and restarts on the same day never repeat it.
type DailyWriter struct {
	dir   string
	clock clock.Clock

	mu    sync.Mutex
	files map[string]*sync.Mutex
}

// NewDailyWriter constructs a DailyWriter for dir, creating the directory if needed.
func NewDailyWriter(dir string, c clock.Clock) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export.NewDailyWriter: %w", err)
	}
	return &DailyWriter{dir: dir, clock: c, files: make(map[string]*sync.Mutex)}, nil
}

// Path returns the file AppendOne would write to right now.
func (w *DailyWriter) Path() string {
	return filepath.Join(w.dir, DailyFilename(w.clock.Now().Format("2006-01-02")))
}

// AppendOne appends one row for slip to today's file, preceded by the header
// row if the file is new.
func (w *DailyWriter) AppendOne(slip domain.Slip) error {
	path := w.Path()

	lock := w.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("export.DailyWriter.AppendOne: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("export.DailyWriter.AppendOne: stat: %w", err)
	}

	// Header and row are written with one call.
	var buf bytes.Buffer
	cw := newWriter(&buf)
	if info.Size() == 0 {
		cw.Write(domain.Columns) //nolint:errcheck // bytes.Buffer never fails; checked via Flush/Error.
	}
	cw.Write(slip.Record()) //nolint:errcheck
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export.DailyWriter.AppendOne: encode: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("export.DailyWriter.AppendOne: write: %w", err)
	}
	return nil
}

// lockFor returns the mutex guarding path, creating it on first use.
func (w *DailyWriter) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.files[path]
	if !ok {
		m = &sync.Mutex{}
		w.files[path] = m
	}
	return m
}

// RenderAll encodes slips, in the given order, as CSV text with a header row.
func RenderAll(slips []domain.Slip) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAll(&buf, slips); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAll streams the same CSV RenderAll produces to out.
func WriteAll(out io.Writer, slips []domain.Slip) error {
	cw := newWriter(out)
	if err := cw.Write(domain.Columns); err != nil {
		return fmt.Errorf("export.WriteAll: header: %w", err)
	}
	for _, s := range slips {
		if err := cw.Write(s.Record()); err != nil {
			return fmt.Errorf("export.WriteAll: row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export.WriteAll: flush: %w", err)
	}
	return nil
}

// newWriter returns a csv.Writer that terminates rows with CRLF.
func newWriter(out io.Writer) *csv.Writer {
	cw := csv.NewWriter(out)
	cw.UseCRLF = true
	return cw
}
