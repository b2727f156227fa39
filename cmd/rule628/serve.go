package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rule628/internal/auditor"
	"rule628/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the remediation API over HTTP",
		Long: `Serve exposes POST /remediate for a single unit, POST /remediate-array
for a batch (units without findings are left out) and GET /health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}

	cmd.Flags().String("listen", ":8000", "address to listen on")
	cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
	cmd.Flags().Int("batch-concurrency", 0, "units audited in parallel per batch request (default: number of CPUs)")

	_ = a.v.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	_ = a.v.BindPFlag("server.shutdown-timeout", cmd.Flags().Lookup("shutdown-timeout"))
	_ = a.v.BindPFlag("server.batch-concurrency", cmd.Flags().Lookup("batch-concurrency"))
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	audit := auditor.NewDefaultAuditor(a.log, a.cfg.Rules.Disabled...)
	a.log.Info("starting service", "rules", audit.Rules(), "listen", a.cfg.Server.Listen)
	return server.New(audit, a.cfg.Server, a.log).ListenAndServe(ctx)
}
