// ABOUTME: Row-level encoding shared by the CSV and XLSX dataset formats
// ABOUTME: Maps columns by header name so column order and extra columns are tolerated

package farm

import (
	"fmt"
	"strconv"
	"strings"
)

// Columns is the header written for every dataset
var Columns = []string{"area_id", "prod", "cost", "water", "fert", "price", "risk", "soil_type", "crop_type", "seed"}

// requiredColumns must be present when reading
var requiredColumns = []string{"prod", "cost", "water", "fert", "price", "risk"}

// encodeRows converts a dataset into string rows, header first
func encodeRows(d *Dataset) [][]string {
	seed := ""
	if d.HasSeed {
		seed = strconv.FormatUint(d.Seed, 10)
	}

	rows := make([][]string, 0, len(d.Plots)+1)
	rows = append(rows, Columns)

	for _, p := range d.Plots {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			formatFloat(p.Productivity),
			formatFloat(p.Cost),
			formatFloat(p.Water),
			formatFloat(p.Fertilizer),
			formatFloat(p.Price),
			formatFloat(p.Risk),
			p.Soil,
			p.Crop,
			seed,
		})
	}

	return rows
}

// decodeRows parses string rows, header first, into a dataset
func decodeRows(rows [][]string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset has no header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}

	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", name)
		}
	}

	d := &Dataset{Plots: make([]Plot, 0, len(rows)-1)}

	for r, row := range rows[1:] {
		line := r + 2 // 1-based, after the header

		if isBlank(row) {
			continue
		}

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[i])
		}

		number := func(name string) (float64, error) {
			v, err := strconv.ParseFloat(cell(name), 64)
			if err != nil {
				return 0, fmt.Errorf("row %d: invalid %s %q: %w", line, name, cell(name), err)
			}

			return v, nil
		}

		plot := Plot{ID: len(d.Plots), Soil: cell("soil_type"), Crop: cell("crop_type")}

		if raw := cell("area_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid area_id %q: %w", line, raw, err)
			}
			plot.ID = id
		}

		var err error
		for _, field := range []struct {
			name string
			dst  *float64
		}{
			{"prod", &plot.Productivity},
			{"cost", &plot.Cost},
			{"water", &plot.Water},
			{"fert", &plot.Fertilizer},
			{"price", &plot.Price},
			{"risk", &plot.Risk},
		} {
			if *field.dst, err = number(field.name); err != nil {
				return nil, err
			}
		}

		// Seed is read from the first data row
		if len(d.Plots) == 0 {
			if raw := cell("seed"); raw != "" {
				seed, err := strconv.ParseUint(raw, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid seed %q: %w", line, raw, err)
				}
				d.Seed, d.HasSeed = seed, true
			}
		}

		d.Plots = append(d.Plots, plot)
	}

	return d, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
