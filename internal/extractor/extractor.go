package extractor

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rule628/internal/model"
)

// SourceExtractor turns one source file into one unit. File names follow
// the abapGit convention <object>.<type>[.<include>].abap; a namespace
// written as #ns# becomes /NS/.
type SourceExtractor struct{}

func NewSourceExtractor() *SourceExtractor {
	return &SourceExtractor{}
}

func (e *SourceExtractor) Extract(filePath string, content []byte) ([]model.SourceUnit, error) {
	base := filepath.Base(filePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.SplitN(base, ".", 3)

	object := objectName(parts[0])
	unit := model.SourceUnit{
		PgmName:   object,
		IncName:   object,
		Type:      "PROG",
		StartLine: 1,
		EndLine:   lineCount(content),
		Code:      string(content),
	}
	if len(parts) > 1 && parts[1] != "" {
		unit.Type = strings.ToUpper(parts[1])
	}
	if len(parts) > 2 && parts[2] != "" {
		unit.IncName = objectName(parts[2])
	}
	return []model.SourceUnit{unit}, nil
}

func objectName(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "#", "/"))
}

func lineCount(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// UnitsExtractor reads units that were exported in the service wire format:
// either a single unit object or an array of them, as JSON or YAML.
type UnitsExtractor struct {
	yaml bool
}

func NewJSONUnitsExtractor() *UnitsExtractor {
	return &UnitsExtractor{}
}

func NewYAMLUnitsExtractor() *UnitsExtractor {
	return &UnitsExtractor{yaml: true}
}

func (e *UnitsExtractor) Extract(filePath string, content []byte) ([]model.SourceUnit, error) {
	var (
		reqs []model.UnitRequest
		err  error
	)
	if e.yaml {
		reqs, err = decodeYAML(content)
	} else {
		reqs, err = decodeJSON(content)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode units from %s", filePath)
	}

	units := make([]model.SourceUnit, 0, len(reqs))
	for i, r := range reqs {
		if missing := r.MissingFields(); len(missing) > 0 {
			return nil, errors.Errorf("%s: unit %d is missing %s", filePath, i, strings.Join(missing, ", "))
		}
		units = append(units, r.Unit())
	}
	return units, nil
}

// decodeJSON accepts a unit object or an array of units.
func decodeJSON(content []byte) ([]model.UnitRequest, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []model.UnitRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	var req model.UnitRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return []model.UnitRequest{req}, nil
}

func decodeYAML(content []byte) ([]model.UnitRequest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var reqs []model.UnitRequest
		if err := root.Decode(&reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	case yaml.MappingNode:
		var req model.UnitRequest
		if err := root.Decode(&req); err != nil {
			return nil, err
		}
		return []model.UnitRequest{req}, nil
	default:
		return nil, errors.Errorf("line %d: expected a unit or a list of units", root.Line)
	}
}

// Manager selects the appropriate extractor based on file extension
type Manager struct {
	extractors map[string]model.Extractor
	fallback   model.Extractor
}

func NewManager() *Manager {
	return &Manager{
		extractors: make(map[string]model.Extractor),
		fallback:   NewSourceExtractor(),
	}
}

// NewDefaultManager registers the source and unit-file extractors.
func NewDefaultManager() *Manager {
	m := NewManager()
	m.Register("abap", NewSourceExtractor())
	m.Register("json", NewJSONUnitsExtractor())
	m.Register("yaml", NewYAMLUnitsExtractor())
	m.Register("yml", NewYAMLUnitsExtractor())
	return m
}

func (m *Manager) Register(ext string, extr model.Extractor) {
	m.extractors[strings.ToLower(ext)] = extr
}

func (m *Manager) Extract(filePath string) ([]model.SourceUnit, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filePath)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if extr, ok := m.extractors[ext]; ok {
		return extr.Extract(filePath, content)
	}
	// Anything else is treated as plain source.
	return m.fallback.Extract(filePath, content)
}
