// ABOUTME: Loads experiment files in JSON, YAML or TOML form
// ABOUTME: Accepts a single experiment or a list and decodes strategy names via text unmarshaling

package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"farmplan/ga"
)

// tomlListKey holds the experiment list in TOML files ([[experiment]] tables)
const tomlListKey = "experiment"

// ErrUnsupportedFormat is returned for extensions other than json, yaml, yml and toml
var ErrUnsupportedFormat = errors.New("unsupported experiment format")

// LoadFile reads experiments from path, choosing the format by extension
func LoadFile(path string) ([]Experiment, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open experiment file: %w", err)
	}

	defer func() {
		_ = file.Close() // Explicitly ignore error for read-only file
	}()

	exps, err := Load(file, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return exps, nil
}

// Load decodes experiments in the given format ("json", "yaml", "yml" or "toml")
func Load(r io.Reader, format string) ([]Experiment, error) {
	raw, err := decodeRaw(r, format)
	if err != nil {
		return nil, err
	}

	entries, err := entriesOf(raw)
	if err != nil {
		return nil, err
	}

	exps := make([]Experiment, 0, len(entries))
	for i, entry := range entries {
		exp, err := decodeExperiment(entry)
		if err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i+1, err)
		}

		exps = append(exps, exp)
	}

	return exps, nil
}

// decodeRaw parses the document into generic maps and slices
func decodeRaw(r io.Reader, format string) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiments: %w", err)
	}

	var raw any

	switch format {
	case "json":
		err = json.Unmarshal(data, &raw)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &raw)
	case "toml":
		var doc map[string]any
		_, err = toml.Decode(string(data), &doc)
		raw = doc

		if list, ok := doc[tomlListKey]; ok && len(doc) == 1 {
			raw = list
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse %s experiments: %w", format, err)
	}

	return raw, nil
}

// entriesOf normalizes a single object or a list of objects
func entriesOf(raw any) ([]map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []map[string]any:
		return v, nil
	case []any:
		entries := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: experiment %d is %T, not an object", ga.ErrConfig, i+1, item)
			}
			entries = append(entries, m)
		}

		return entries, nil
	case nil:
		return nil, fmt.Errorf("%w: no experiments defined", ga.ErrConfig)
	}

	return nil, fmt.Errorf("%w: experiments must be an object or a list, got %T", ga.ErrConfig, raw)
}

// decodeExperiment applies one entry on top of the defaults
func decodeExperiment(entry map[string]any) (Experiment, error) {
	exp := Default()

	// Unknown keys are annotations to us; they are kept for the debug log
	var meta mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &exp,
		TagName:          "mapstructure",
		Metadata:         &meta,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return Experiment{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(entry); err != nil {
		return Experiment{}, fmt.Errorf("%w: %w", ga.ErrConfig, err)
	}

	if len(meta.Unused) > 0 {
		exp.ignored = slices.Sorted(slices.Values(meta.Unused))
	}

	if err := exp.Config().Validate(); err != nil {
		return Experiment{}, err
	}

	if exp.N <= 0 {
		return Experiment{}, fmt.Errorf("%w: N must be positive (got %d)", ga.ErrConfig, exp.N)
	}

	if exp.Budget < 0 || exp.WaterLimit < 0 || exp.FertLimit < 0 {
		return Experiment{}, fmt.Errorf("%w: limits must be non-negative", ga.ErrConfig)
	}

	if exp.DataPath == "" {
		return Experiment{}, fmt.Errorf("%w: data_path must not be empty", ga.ErrConfig)
	}

	return exp, nil
}
