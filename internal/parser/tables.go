package parser

import (
	"regexp"
	"strings"
)

// Table is the canonical lowercase identity of a target table.
type Table string

const (
	T881  Table = "t881"
	T881T Table = "t881t"
	T882G Table = "t882g"
)

// Targets lists the tables the scanner looks for.
var Targets = []Table{T881, T881T, T882G}

// Upper returns the table name as written in messages.
func (t Table) Upper() string {
	return strings.ToUpper(string(t))
}

// ParseTable canonicalises a matched name. ok is false for anything that is
// not a target table.
func ParseTable(name string) (Table, bool) {
	t := Table(strings.ToLower(name))
	for _, target := range Targets {
		if t == target {
			return t, true
		}
	}
	return "", false
}

// The longer name comes first in the alternation and the trailing \b stops
// t881 from matching the front of t881t or any other longer identifier.
// A table may be preceded by the host marker '@' and an opening parenthesis.
const (
	tableName  = `(t881t|t881|t882g)\b`
	decoration = `@?\s*\(?\s*`
)

var (
	readTargetRE   = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+` + decoration + tableName)
	upsertTargetRE = regexp.MustCompile(`(?i)\A(?:INSERT|UPDATE|MODIFY)\s+` + decoration + tableName)
	deleteTargetRE = regexp.MustCompile(`(?i)\ADELETE\s+(?:FROM\s+)?` + decoration + tableName)
)

// TableMatch is one target table reference inside a span. Offset is
// relative to the start of the span.
type TableMatch struct {
	Table  Table
	Offset int
}

// MatchTables returns every FROM or JOIN target inside a read statement, in
// textual order. Duplicates are kept.
func MatchTables(span Span) []TableMatch {
	if !span.Class.IsRead() {
		return nil
	}

	var matches []TableMatch
	for _, loc := range readTargetRE.FindAllStringSubmatchIndex(span.Text, -1) {
		if t, ok := ParseTable(span.Text[loc[2]:loc[3]]); ok {
			matches = append(matches, TableMatch{Table: t, Offset: loc[2]})
		}
	}
	return matches
}

// WriteKind tells which form of DML statement matched.
type WriteKind int

const (
	NoWrite WriteKind = iota
	UpsertWrite
	DeleteWrite
)

// WriteMatch is the outcome of matching a DML span. Kind is NoWrite when the
// statement does not target one of the tables directly.
type WriteMatch struct {
	Kind WriteKind
	TableMatch
}

// Matched reports whether the statement writes to a target table.
func (m WriteMatch) Matched() bool {
	return m.Kind != NoWrite
}

// MatchWrite checks whether a DML span writes directly to a target table.
// INSERT, UPDATE and MODIFY take the table right after the keyword, DELETE
// allows an optional FROM in between.
func MatchWrite(span Span) WriteMatch {
	if span.Class != WriteDML {
		return WriteMatch{}
	}

	forms := []struct {
		kind WriteKind
		re   *regexp.Regexp
	}{
		{UpsertWrite, upsertTargetRE},
		{DeleteWrite, deleteTargetRE},
	}
	for _, form := range forms {
		loc := form.re.FindStringSubmatchIndex(span.Text)
		if loc == nil {
			continue
		}
		if t, ok := ParseTable(span.Text[loc[2]:loc[3]]); ok {
			return WriteMatch{Kind: form.kind, TableMatch: TableMatch{Table: t, Offset: loc[2]}}
		}
	}
	return WriteMatch{}
}

// Match dispatches on the span class and returns the target references of
// the statement in order.
func Match(span Span) []TableMatch {
	if span.Class.IsRead() {
		return MatchTables(span)
	}
	if m := MatchWrite(span); m.Matched() {
		return []TableMatch{m.TableMatch}
	}
	return nil
}
