package main

import (
	"context"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"rule628/internal/auditor"
	"rule628/internal/extractor"
	"rule628/internal/logger"
	"rule628/internal/model"
	"rule628/internal/reporter"
	"rule628/internal/scanner"
)

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan source files and unit exports",
		Long: `Scan walks the given files and directories (default: current directory).
Files named <object>.<type>[.<include>].abap become one unit each; .json,
.yaml and .yml files hold units in the service request format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return a.runScan(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().StringP("report", "r", "text", "report format (text, json, yaml)")
	cmd.Flags().StringP("out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringSliceP("exclude", "e", []string{".git", "vendor"}, "glob or path patterns to exclude")
	cmd.Flags().StringSlice("ext", []string{"abap", "json", "yaml", "yml"}, "file extensions to scan")
	cmd.Flags().IntP("concurrency", "c", 0, "files audited in parallel (default: number of CPUs)")
	cmd.Flags().Bool("fail-on-warning", false, "exit with non-zero code if warnings are found")

	_ = a.v.BindPFlag("scan.report", cmd.Flags().Lookup("report"))
	_ = a.v.BindPFlag("scan.out", cmd.Flags().Lookup("out"))
	_ = a.v.BindPFlag("scan.excludes", cmd.Flags().Lookup("exclude"))
	_ = a.v.BindPFlag("scan.extensions", cmd.Flags().Lookup("ext"))
	_ = a.v.BindPFlag("scan.concurrency", cmd.Flags().Lookup("concurrency"))
	_ = a.v.BindPFlag("scan.fail-on-warning", cmd.Flags().Lookup("fail-on-warning"))
	return cmd
}

func (a *app) runScan(ctx context.Context, stdout io.Writer, roots []string) error {
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			return errors.Wrapf(err, "source path %s", root)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	mgr := extractor.NewDefaultManager()
	audit := auditor.NewDefaultAuditor(a.log, a.cfg.Rules.Disabled...)

	walker := scanner.NewFileWalker(a.cfg.Scan.Extensions, a.cfg.Scan.Excludes)
	paths, walkErrs := walker.Walk(ctx, roots...)

	pool := scanner.NewWorkerPool(a.cfg.Scan.Concurrency, func(path string) ([]model.UnitResult, error) {
		units, err := mgr.Extract(path)
		if err != nil {
			return nil, err
		}
		var results []model.UnitResult
		for _, unit := range units {
			if res := audit.Audit(unit); res.HasFindings() {
				results = append(results, res)
			}
		}
		return results, nil
	})

	a.log.Debug("scan started", "roots", roots, "concurrency", a.cfg.Scan.Concurrency)
	var scanned []scanner.ScanResult
	files, failed := 0, 0
	for res := range pool.Start(ctx, paths) {
		files++
		if res.Error != nil {
			failed++
			a.log.Warn("skipping file", "file", res.File, logger.Error(res.Error))
			continue
		}
		if len(res.Results) > 0 {
			scanned = append(scanned, res)
		}
	}
	if err := <-walkErrs; err != nil {
		return errors.Wrap(err, "walk failed")
	}
	a.log.Info("scan complete", "files", files, "failed", failed, "with_findings", len(scanned))

	// workers finish in any order
	sort.Slice(scanned, func(i, j int) bool { return scanned[i].File < scanned[j].File })
	var results []model.UnitResult
	for _, res := range scanned {
		results = append(results, res.Results...)
	}

	out := stdout
	if a.cfg.Scan.Out != "" {
		f, err := os.Create(a.cfg.Scan.Out)
		if err != nil {
			return errors.Wrap(err, "failed to create report file")
		}
		defer f.Close()
		out = f
	}

	rpt, err := reporter.New(a.cfg.Scan.Report, out)
	if err != nil {
		return err
	}
	if err := rpt.Report(results); err != nil {
		return errors.Wrap(err, "reporting failed")
	}

	if a.cfg.Scan.FailOnWarning && model.CountBySeverity(results)[model.SeverityWarning] > 0 {
		return errWarningsFound
	}
	return nil
}
