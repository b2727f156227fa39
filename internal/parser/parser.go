// Package parser holds the heuristic statement scanner: it does not build a
// grammar tree, it recognises just enough of the source dialect to find
// complete SELECT, OPEN CURSOR and DML statements and the tables they name.
package parser

import "regexp"

// StatementClass identifies which family of statements a span belongs to.
type StatementClass int

const (
	ReadQuery  StatementClass = iota // SELECT ...
	ReadCursor                       // OPEN CURSOR ... FOR SELECT ...
	WriteDML                         // INSERT, UPDATE, MODIFY, DELETE
)

// Classes lists the statement classes in the order units are scanned.
var Classes = []StatementClass{ReadQuery, ReadCursor, WriteDML}

func (c StatementClass) String() string {
	switch c {
	case ReadQuery:
		return "read-query"
	case ReadCursor:
		return "read-cursor"
	case WriteDML:
		return "write-dml"
	default:
		return "unknown"
	}
}

// IsRead reports whether statements of the class only read data.
func (c StatementClass) IsRead() bool {
	return c == ReadQuery || c == ReadCursor
}

// A statement runs from its keyword up to and including the first period.
// Negated classes match newlines in RE2, so statements may span lines.
var statementPatterns = map[StatementClass]*regexp.Regexp{
	ReadQuery:  regexp.MustCompile(`(?i)\bSELECT\b[^.]*\.`),
	ReadCursor: regexp.MustCompile(`(?i)\bOPEN\s+CURSOR\b[^.]*\.`),
	WriteDML:   regexp.MustCompile(`(?i)\b(?:INSERT|UPDATE|MODIFY|DELETE)\b[^.]*\.`),
}

// Span is a complete statement found in sanitized text: [Start, End).
type Span struct {
	Class StatementClass
	Start int
	End   int
	Text  string
}

// Segment returns the non-overlapping statements of one class in src, in
// textual order. A statement without a terminating period yields nothing.
func Segment(src string, class StatementClass) []Span {
	re, ok := statementPatterns[class]
	if !ok {
		return nil
	}

	var spans []Span
	for _, loc := range re.FindAllStringIndex(src, -1) {
		spans = append(spans, Span{
			Class: class,
			Start: loc[0],
			End:   loc[1],
			Text:  src[loc[0]:loc[1]],
		})
	}
	return spans
}
