package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/shiprec/internal/bootstrap"
	"github.com/JonMunkholm/shiprec/internal/config"
	"github.com/JonMunkholm/shiprec/internal/core"
	"github.com/JonMunkholm/shiprec/internal/logging"
	"github.com/JonMunkholm/shiprec/internal/store"
)

type globalOptions struct {
	driver     string
	dsn        string
	sqlitePath string
	logLevel   string
}

// session is the opened store for one command run.
type session struct {
	cfg   *config.Config
	store *store.Store
	close func()
}

// service returns a job service writing exports to dir.
func (s *session) service(dir string) *core.Service {
	return core.NewService(s.store, core.Config{
		ExportDir:     dir,
		JobTimeout:    s.cfg.Exchange.JobTimeout,
		MaxConcurrent: s.cfg.Exchange.MaxConcurrent,
		MaxWait:       s.cfg.Exchange.JobWait,
	})
}

func newRootCmd() *cobra.Command {
	var opts globalOptions
	var sess session

	root := &cobra.Command{
		Use:           "shipctl",
		Short:         "Import and export shipping recorder CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("store") {
				cfg.Store.Driver = opts.driver
			}
			if flags.Changed("dsn") {
				cfg.Store.DSN = opts.dsn
			}
			if flags.Changed("sqlite-path") {
				cfg.Store.SQLitePath = opts.sqlitePath
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = opts.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))

			st, closeFn, err := bootstrap.OpenStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			sess = session{cfg: cfg, store: st, close: closeFn}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if sess.close != nil {
				sess.close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.driver, "store", config.DriverSQLite, "Store driver: memory, sqlite or postgres")
	pf.StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection string")
	pf.StringVar(&opts.sqlitePath, "sqlite-path", "shiprec.db", "SQLite database file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		newImportCmd(&sess),
		newExportCmd(&sess),
		newExportAllCmd(&sess),
		newJobsCmd(&sess),
		newKindsCmd(),
	)
	return root
}

func newImportCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <kind> <file>",
		Short: "Import a CSV file of one kind",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sess.service("").ImportFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return errors.New(core.FormatUserError(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s records from %s\n", p.Records, args[0], p.FileName)
			return nil
		},
	}
}

func newExportCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export <kind> <file>",
		Short: "Export every record of one kind to a CSV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, name := filepath.Split(args[1])
			if dir == "" {
				dir = "."
			}
			p, err := sess.service(dir).Export(cmd.Context(), args[0], name)
			if err != nil {
				return errors.New(core.FormatUserError(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s records to %s\n", p.Records, args[0], args[1])
			return nil
		},
	}
}

func newExportAllCmd(sess *session) *cobra.Command {
	var stamp string
	cmd := &cobra.Command{
		Use:   "export-all <dir>",
		Short: "Export every kind to <dir>/<kind>-<stamp>.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0o750); err != nil {
				return err
			}
			results, err := sess.service(args[0]).ExportAll(cmd.Context(), stamp)
			for _, p := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %6d  %s\n", p.Kind, p.Records, p.Phase)
			}
			if err != nil {
				return errors.New(core.FormatUserError(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stamp, "stamp", "latest", "Suffix added to every file name")
	return cmd
}
