package reporter

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rule628/internal/model"
)

// JSONReporter writes results in the same shape the batch endpoint returns.
type JSONReporter struct {
	out io.Writer
}

func NewJSONReporter(out io.Writer) *JSONReporter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONReporter{out: out}
}

func (r *JSONReporter) Report(results []model.UnitResult) error {
	if results == nil {
		results = []model.UnitResult{}
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(results)
}

type YAMLReporter struct {
	out io.Writer
}

func NewYAMLReporter(out io.Writer) *YAMLReporter {
	if out == nil {
		out = os.Stdout
	}
	return &YAMLReporter{out: out}
}

func (r *YAMLReporter) Report(results []model.UnitResult) error {
	if results == nil {
		results = []model.UnitResult{}
	}
	encoder := yaml.NewEncoder(r.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return encoder.Close()
}

// New returns the reporter for a format name: text, json or yaml.
func New(format string, out io.Writer) (model.Reporter, error) {
	switch format {
	case "text":
		return NewConsoleReporter(out), nil
	case "json":
		return NewJSONReporter(out), nil
	case "yaml":
		return NewYAMLReporter(out), nil
	default:
		return nil, errors.Errorf("unsupported report format: %s", format)
	}
}
