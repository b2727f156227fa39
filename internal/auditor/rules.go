package auditor

import (
	"fmt"

	"rule628/internal/model"
	"rule628/internal/parser"
)

// Rule represents a single audit logic unit
type Rule interface {
	// Name returns the unique identifier of the rule
	Name() string
	// Check examines one sanitized statement and returns the issues in it,
	// in the order they appear
	Check(span parser.Span) []Issue
}

// Issue is what a rule reports before the auditor attaches location data.
type Issue struct {
	Type       model.IssueType
	Table      parser.Table
	Message    string
	Suggestion string
}

// DirectReadRule detects SELECT and OPEN CURSOR reading a target table
type DirectReadRule struct{}

func (r *DirectReadRule) Name() string { return "direct_read" }

func (r *DirectReadRule) Check(span parser.Span) []Issue {
	if !span.Class.IsRead() {
		return nil
	}

	var issues []Issue
	for _, m := range parser.Match(span) {
		acc := accessorFor(m.Table)
		var msg string
		if span.Class == parser.ReadCursor {
			msg = fmt.Sprintf("Direct read from %s via OPEN CURSOR FOR SELECT. Use %s instead.",
				m.Table.Upper(), acc.method)
		} else {
			msg = fmt.Sprintf("Direct read from %s detected in SELECT. Use %s instead of SELECT … FROM %s.",
				m.Table.Upper(), acc.method, m.Table.Upper())
		}
		issues = append(issues, Issue{
			Type:       model.IssueDirectRead,
			Table:      m.Table,
			Message:    msg,
			Suggestion: readSuggestion(m.Table),
		})
	}
	return issues
}

// DisallowedWriteRule detects INSERT/UPDATE/MODIFY/DELETE on a target table
type DisallowedWriteRule struct{}

func (r *DisallowedWriteRule) Name() string { return "disallowed_write" }

func (r *DisallowedWriteRule) Check(span parser.Span) []Issue {
	if span.Class != parser.WriteDML {
		return nil
	}

	var issues []Issue
	for _, m := range parser.Match(span) {
		issues = append(issues, Issue{
			Type:       model.IssueDisallowedWrite,
			Table:      m.Table,
			Message:    fmt.Sprintf("Disallowed write to %s detected. Avoid DML on obsolete tables.", m.Table.Upper()),
			Suggestion: writeSuggestion(m.Table),
		})
	}
	return issues
}

// DefaultRules returns the rules of the check in reporting order.
func DefaultRules() []Rule {
	return []Rule{
		&DirectReadRule{},
		&DisallowedWriteRule{},
	}
}
