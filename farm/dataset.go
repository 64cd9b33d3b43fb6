// ABOUTME: Handles reading and writing dataset files in CSV and XLSX form
// ABOUTME: Picks the format from the file extension and creates parent directories on save

package farm

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding plots in XLSX datasets
const SheetName = "plots"

// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// ReadCSV parses a CSV dataset
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return decodeRows(rows)
}

// WriteCSV writes a dataset as CSV
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(encodeRows(d)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return nil
}

// ReadXLSX parses the plots sheet of an XLSX workbook
// Falls back to the first sheet when no sheet is named plots.
func ReadXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	defer func() {
		_ = f.Close() // Explicitly ignore error for read-only workbook
	}()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return decodeRows(rows)
}

// WriteXLSX writes a dataset as an XLSX workbook with numeric cells
func WriteXLSX(w io.Writer, d *Dataset) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, name := range Columns {
		header[i] = name
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range d.Plots {
		var seed any = ""
		if d.HasSeed {
			seed = d.Seed
		}

		row := []any{p.ID, p.Productivity, p.Cost, p.Water, p.Fertilizer, p.Price, p.Risk, p.Soil, p.Crop, seed}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}

		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// Load reads a dataset file, choosing the format by extension
func Load(path string) (*Dataset, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	defer func() {
		_ = file.Close() // Explicitly ignore error for read-only file
	}()

	d, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return d, nil
}

// Save writes a dataset file, choosing the format by extension
func Save(path string, d *Dataset) (err error) {
	write, err := writerFor(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close dataset file: %w", closeErr)
		}
	}()

	return write(file, d)
}

// LoadOrGenerate loads path, generating and saving n plots from seed when it does not exist
func LoadOrGenerate(path string, n int, seed uint64) (d *Dataset, generated bool, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		d, err = Load(path)
		return d, false, err
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to stat dataset: %w", statErr)
	}

	d, err = Generate(n, seed)
	if err != nil {
		return nil, false, err
	}

	if err := Save(path, d); err != nil {
		return nil, false, err
	}

	return d, true, nil
}

func readerFor(path string) (func(io.Reader) (*Dataset, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV, nil
	case ".xlsx":
		return ReadXLSX, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func writerFor(path string) (func(io.Writer, *Dataset) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV, nil
	case ".xlsx":
		return WriteXLSX, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
