// Package report writes scan results to disk, one JSON document and one CSV
// table per run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/BenjaminHannan/Black-Scholes/internal/scan"
)

func WriteJSON(res *scan.Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "scan.json"), b, 0644)
}

func WriteCSV(rows []scan.Row, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "scan.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing scan.csv: %w", err)
	}
	return nil
}
