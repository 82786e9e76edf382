// Package export writes case records as CSV and as terminal tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/docketscan/internal/model"
)

// WriteCSV writes the header row followed by one row per record
func WriteCSV(w io.Writer, records []*model.CaseRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(model.ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			return fmt.Errorf("write %s: %w", record.Docket, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes records to path, creating parent directories as needed.
// The file is written beside path and renamed over it, so a failed write
// leaves any previous export in place.
func SaveCSV(path string, records []*model.CaseRecord) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = WriteCSV(f, records); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", f.Name(), err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Name(), err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
