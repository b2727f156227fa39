package model

import "fmt"

const (
	// RuleNumber identifies the check in reports and the liveness payload.
	RuleNumber = 628
	// RuleVersion is the version of the detection heuristics.
	RuleVersion = "1.0.1"
)

// SourceUnit is one program unit handed to the auditor. Only PgmName, IncName
// and Type are mandatory on the wire.
type SourceUnit struct {
	PgmName   string `json:"pgm_name" yaml:"pgm_name"`
	IncName   string `json:"inc_name" yaml:"inc_name"`
	Type      string `json:"type" yaml:"type"`
	Name      string `json:"name" yaml:"name"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	Code      string `json:"code" yaml:"code"`
}

// UnitRequest is a unit as it arrives in a request body or a unit file.
// The mandatory fields are pointers: an absent or null field is missing, an
// empty string is a valid value.
type UnitRequest struct {
	PgmName   *string `json:"pgm_name" yaml:"pgm_name"`
	IncName   *string `json:"inc_name" yaml:"inc_name"`
	Type      *string `json:"type" yaml:"type"`
	Name      string  `json:"name" yaml:"name"`
	StartLine int     `json:"start_line" yaml:"start_line"`
	EndLine   int     `json:"end_line" yaml:"end_line"`
	Code      string  `json:"code" yaml:"code"`
}

// MissingFields names the mandatory fields that were not supplied.
func (r UnitRequest) MissingFields() []string {
	var missing []string
	if r.PgmName == nil {
		missing = append(missing, "pgm_name")
	}
	if r.IncName == nil {
		missing = append(missing, "inc_name")
	}
	if r.Type == nil {
		missing = append(missing, "type")
	}
	return missing
}

// Unit converts the request, leaving missing fields empty.
func (r UnitRequest) Unit() SourceUnit {
	return SourceUnit{
		PgmName:   deref(r.PgmName),
		IncName:   deref(r.IncName),
		Type:      deref(r.Type),
		Name:      r.Name,
		StartLine: r.StartLine,
		EndLine:   r.EndLine,
		Code:      r.Code,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (u SourceUnit) String() string {
	if u.IncName == "" || u.IncName == u.PgmName {
		return u.PgmName
	}
	return fmt.Sprintf("%s/%s", u.PgmName, u.IncName)
}

// IssueType classifies a finding.
type IssueType string

const (
	IssueDirectRead      IssueType = "DirectRead"
	IssueDisallowedWrite IssueType = "DisallowedWrite"
)

// Severity defines how serious a finding is
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SeverityOf returns the fixed severity of an issue type.
func SeverityOf(t IssueType) Severity {
	switch t {
	case IssueDisallowedWrite:
		return SeverityWarning
	case IssueDirectRead:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Finding is a single detected access to one of the target tables.
// Unit metadata is copied in so a finding can be reported on its own.
type Finding struct {
	PgmName    string    `json:"pgm_name" yaml:"pgm_name"`
	IncName    string    `json:"inc_name" yaml:"inc_name"`
	Type       string    `json:"type" yaml:"type"`
	Name       string    `json:"name" yaml:"name"`
	StartLine  int       `json:"start_line" yaml:"start_line"`
	EndLine    int       `json:"end_line" yaml:"end_line"`
	IssueType  IssueType `json:"issue_type" yaml:"issue_type"`
	Severity   Severity  `json:"severity" yaml:"severity"`
	Line       int       `json:"line" yaml:"line"` // 1-based, relative to the unit's code
	Message    string    `json:"message" yaml:"message"`
	Suggestion string    `json:"suggestion" yaml:"suggestion"`
	Snippet    string    `json:"snippet" yaml:"snippet"`
}

// UnitResult is a unit augmented with its findings.
type UnitResult struct {
	SourceUnit `yaml:",inline"`
	Findings   []Finding `json:"rule628_findings" yaml:"rule628_findings"`
}

// HasFindings reports whether the audit produced anything for the unit.
func (r UnitResult) HasFindings() bool {
	return len(r.Findings) > 0
}

// CountBySeverity tallies findings across results.
func CountBySeverity(results []UnitResult) map[Severity]int {
	counts := make(map[Severity]int)
	for _, r := range results {
		for _, f := range r.Findings {
			counts[f.Severity]++
		}
	}
	return counts
}
