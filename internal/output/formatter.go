// Package output renders pipeline results for files or stdout.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/prosodylab/prosolia/internal/pipeline"
)

// Formatter renders a result value to bytes.
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// NewFormatter returns the formatter for a format name; unknown names fall
// back to JSON.
func NewFormatter(format string) Formatter {
	switch format {
	case "yaml":
		return &YAMLFormatter{}
	case "csv":
		return &CSVFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders results as JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return append(out, '\n'), nil
}

// YAMLFormatter renders results as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, pretty bool) ([]byte, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML output: %w", err)
	}
	return out, nil
}

// CSVFormatter renders a feature bundle as one flat table: one row per
// frame, with the filterbank energies and DCT coefficients on the energy
// time axis and the voicing/pitch columns on the extractor's own axis.
// Cells past the end of the shorter axis are left empty.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(data any, pretty bool) ([]byte, error) {
	bundle, ok := data.(*pipeline.FeatureBundle)
	if !ok {
		return nil, fmt.Errorf("csv output supports feature bundles, got %T", data)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"frame"}
	for _, cf := range bundle.CenterFrequencies {
		header = append(header, fmt.Sprintf("energy_%.1fhz", cf))
	}
	for k := range bundle.DCT {
		header = append(header, fmt.Sprintf("dct_%d", k))
	}
	header = append(header, "pov", "pitch")
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to encode CSV output: %w", err)
	}

	rows := max(bundle.EnergyFrames(), bundle.PitchFrames())
	for i := 0; i < rows; i++ {
		row := []string{strconv.Itoa(i)}
		for ch := range bundle.CenterFrequencies {
			if i < bundle.EnergyFrames() {
				row = append(row, formatCell(bundle.Energy[i][ch]))
			} else {
				row = append(row, "")
			}
		}
		for k := range bundle.DCT {
			if i < len(bundle.DCT[k]) {
				row = append(row, formatCell(bundle.DCT[k][i]))
			} else {
				row = append(row, "")
			}
		}
		if i < bundle.PitchFrames() {
			row = append(row, formatCell(bundle.POV[i]), formatCell(bundle.Pitch[i]))
		} else {
			row = append(row, "", "")
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to encode CSV output: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode CSV output: %w", err)
	}
	return buf.Bytes(), nil
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
