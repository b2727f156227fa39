package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rule628/internal/config"
	"rule628/internal/logger"
)

// errWarningsFound makes the process exit non-zero without printing anything.
var errWarningsFound = errors.New("warnings found")

// app carries what the subcommands share once the root has loaded config.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	rootCmd := &cobra.Command{
		Use:   "rule628",
		Short: "Find direct access to T881, T881T and T882G in ABAP code",
		Long: `rule628 scans ABAP source for SELECT, OPEN CURSOR and DML statements
that touch the obsolete customizing tables T881, T881T and T882G.

Reads are reported with the released accessor to call instead; writes are
reported as disallowed. Run it over source files with "scan" or as an
HTTP service with "serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.rule628.yaml or ./.rule628.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "shorthand for --log-level debug")
	_ = v.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(newScanCmd(a), newServeCmd(a))
	return rootCmd
}

// init loads configuration and installs the logger.
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if a.v.GetBool("debug") {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg
	a.log = logger.NewWithLevel(cfg.Level())
	slog.SetDefault(a.log.GetSlogLogger())
	a.log.Debug("configuration loaded", "file", a.v.ConfigFileUsed())
	return nil
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		if !errors.Is(err, errWarningsFound) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
