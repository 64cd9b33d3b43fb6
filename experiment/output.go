// ABOUTME: Writes experiment outcomes as per-experiment JSON files and a batch CSV
// ABOUTME: File names carry the seed, the experiment index and a Unix timestamp

package experiment

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// BatchCSV is the summary file written next to the JSON results
const BatchCSV = "batch_results.csv"

var csvHeader = []string{
	"id", "index", "name", "data_path", "seed", "pop_size", "n_gens", "mutation_rate",
	"selection_method", "crossover_method", "mutation_method", "elitism", "grid",
	"best_fitness", "time_seconds", "generations", "stop_reason", "restarts", "selected", "best_vector",
}

// ResultFileName returns the JSON file name of an outcome
func ResultFileName(o *Outcome, at time.Time) string {
	return fmt.Sprintf("result_seed%s_exp%d_%d.json", o.Config.SeedLabel(), o.Index, at.Unix())
}

// WriteJSON writes one indented JSON document per outcome into dir
// Returns the paths written, in outcome order.
func WriteJSON(dir string, outcomes []Outcome, at time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	paths := make([]string, 0, len(outcomes))
	for i := range outcomes {
		data, err := json.MarshalIndent(&outcomes[i], "", "  ")
		if err != nil {
			return paths, fmt.Errorf("failed to encode outcome %d: %w", outcomes[i].Index, err)
		}

		path := filepath.Join(dir, ResultFileName(&outcomes[i], at))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write result: %w", err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// WriteCSV writes one summary row per outcome
func WriteCSV(w io.Writer, outcomes []Outcome) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range outcomes {
		o := &outcomes[i]
		seed := ""
		if o.Config.Seed != nil {
			seed = strconv.FormatUint(*o.Config.Seed, 10)
		}

		vector := make([]byte, len(o.BestVector))
		selected := 0
		for j, bit := range o.BestVector {
			vector[j] = byte('0' + bit)
			selected += bit
		}

		row := []string{
			o.ID.String(),
			strconv.Itoa(o.Index),
			o.Config.Name,
			o.Config.DataPath,
			seed,
			strconv.Itoa(o.Config.PopSize),
			strconv.Itoa(o.Config.Generations),
			strconv.FormatFloat(o.Config.MutationRate, 'g', -1, 64),
			o.Selection.String(),
			o.Crossover.String(),
			o.Mutation.String(),
			strconv.Itoa(o.Config.Elitism),
			strconv.FormatBool(o.Config.Grid),
			strconv.FormatFloat(o.BestFitness, 'f', -1, 64),
			strconv.FormatFloat(o.TimeSeconds, 'f', 6, 64),
			strconv.Itoa(o.Generations),
			o.Stop.String(),
			strconv.Itoa(o.Restarts),
			strconv.Itoa(selected),
			string(vector),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// WriteBatchCSV writes batch_results.csv into dir and returns its path
func WriteBatchCSV(dir string, outcomes []Outcome) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	path = filepath.Join(dir, BatchCSV)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create batch csv: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close batch csv: %w", closeErr)
		}
	}()

	if err := WriteCSV(file, outcomes); err != nil {
		return "", err
	}

	return path, nil
}
