package auditor

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"rule628/internal/logger"
	"rule628/internal/model"
	"rule628/internal/parser"
)

// snippetContext is how many characters of surrounding code go into a
// snippet on each side of the statement.
const snippetContext = 140

// Auditor runs the registered rules over source units. It holds no state
// between units and is safe for concurrent use once rules are registered.
type Auditor struct {
	rules  []Rule
	logger logger.Interface
}

func NewAuditor(log logger.Interface) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{
		rules:  make([]Rule, 0),
		logger: log,
	}
}

// NewDefaultAuditor registers DefaultRules except the ones named in disabled.
func NewDefaultAuditor(log logger.Interface, disabled ...string) *Auditor {
	a := NewAuditor(log)
	skip := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		skip[name] = struct{}{}
	}
	for _, rule := range DefaultRules() {
		if _, ok := skip[rule.Name()]; ok {
			a.logger.Debug("rule disabled", "rule", rule.Name())
			continue
		}
		a.Register(rule)
	}
	return a
}

func (a *Auditor) Register(rule Rule) {
	a.rules = append(a.rules, rule)
}

// Rules returns the names of the registered rules.
func (a *Auditor) Rules() []string {
	names := make([]string, 0, len(a.rules))
	for _, r := range a.rules {
		names = append(names, r.Name())
	}
	return names
}

// Audit scans one unit. Findings come out grouped by statement class
// (queries, cursors, DML), then in the order statements and tables occur.
// The returned result always carries a non-nil findings slice.
func (a *Auditor) Audit(unit model.SourceUnit) model.UnitResult {
	raw := unit.Code
	src := parser.Sanitize(raw)
	findings := make([]model.Finding, 0)

	for _, class := range parser.Classes {
		for _, span := range parser.Segment(src, class) {
			for _, rule := range a.rules {
				for _, issue := range rule.Check(span) {
					findings = append(findings, newFinding(unit, raw, src, span, issue))
				}
			}
		}
	}

	if len(findings) > 0 {
		a.logger.Debug("unit audited", "unit", unit.String(), "findings", len(findings))
	}
	return model.UnitResult{SourceUnit: unit, Findings: findings}
}

// AuditBatch audits units with at most limit running at once and returns
// only the units that produced findings, in input order.
func (a *Auditor) AuditBatch(ctx context.Context, units []model.SourceUnit, limit int) ([]model.UnitResult, error) {
	all, err := a.AuditAll(ctx, units, limit)
	if err != nil {
		return nil, err
	}

	results := make([]model.UnitResult, 0, len(all))
	for _, res := range all {
		if res.HasFindings() {
			results = append(results, res)
		}
	}
	return results, nil
}

// AuditAll is AuditBatch without dropping clean units.
func (a *Auditor) AuditAll(ctx context.Context, units []model.SourceUnit, limit int) ([]model.UnitResult, error) {
	all := make([]model.UnitResult, len(units))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			all[i] = a.Audit(units[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

func newFinding(unit model.SourceUnit, raw, src string, span parser.Span, issue Issue) model.Finding {
	return model.Finding{
		PgmName:    unit.PgmName,
		IncName:    unit.IncName,
		Type:       unit.Type,
		Name:       unit.Name,
		StartLine:  unit.StartLine,
		EndLine:    unit.EndLine,
		IssueType:  issue.Type,
		Severity:   model.SeverityOf(issue.Type),
		Line:       lineOf(src, span.Start),
		Message:    issue.Message,
		Suggestion: issue.Suggestion,
		Snippet:    snippet(raw, span.Start, span.End),
	}
}

// lineOf returns the 1-based line holding offset. Sanitizing keeps newline
// offsets, so this is the same in the sanitized and the original text.
func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// snippet cuts the statement plus snippetContext characters on either side
// out of the original code, on a single line. start and end are byte
// offsets.
func snippet(raw string, start, end int) string {
	s := start
	for n := 0; n < snippetContext && s > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(raw[:s])
		s -= size
	}
	e := end
	for n := 0; n < snippetContext && e < len(raw); n++ {
		_, size := utf8.DecodeRuneInString(raw[e:])
		e += size
	}
	return strings.ReplaceAll(raw[s:e], "\n", `\n`)
}
