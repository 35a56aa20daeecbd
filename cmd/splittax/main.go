package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/config"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logLevels = map[string]logrus.Level{
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
}

// app carries what every subcommand needs once flags and environment are read
type app struct {
	settings   config.Settings
	tables     tax.Tables
	log        *logrus.Entry
	logLevel   string
	tablesPath string
}

// setup reads .env, configures logging and loads the tax tables
func (a *app) setup(cmd *cobra.Command) error {
	a.settings = config.LoadSettings()

	levelName := a.settings.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName = a.logLevel
	}
	level, ok := logLevels[strings.ToLower(levelName)]
	if !ok {
		return fmt.Errorf("unknown log level %q (use %s)", levelName, strings.Join(sortedKeys(logLevels), ", "))
	}
	logrus.SetLevel(level)
	logrus.SetOutput(cmd.ErrOrStderr())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	a.log = logrus.WithField("module", "cli")

	path := a.settings.TaxTables
	if a.tablesPath != "" {
		path = a.tablesPath
	}
	var err error
	if path != "" {
		a.log.Debugf("loading tax tables from %s", path)
		a.tables, err = tax.LoadTables(path)
	} else {
		a.tables, err = tax.DefaultTables()
	}
	return err
}

func (a *app) parser() *config.InputParser {
	return &config.InputParser{Tables: a.tables}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "splittax",
		Short: "Multi-state income allocation calculator",
		Long: `Allocates net pay and bonuses across the states where the work was done,
for someone who lives in one state and works some days from others, and
estimates the resulting state and federal income tax.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.tablesPath, "tax-tables", "", "YAML file overriding the built-in tax tables")

	root.AddCommand(
		newCalculateCmd(a),
		newValidateCmd(a),
		newTaxCmd(a),
		newStatesCmd(a),
		newServeCmd(a),
		newTUICmd(a),
		newScenarioCmd(a),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "splittax %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// reportFlags are shared by every command that renders a report
type reportFlags struct {
	format string
	daily  bool
	noTax  bool
	save   bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "console", "Output format ("+strings.Join(output.FormatterNames(), ", ")+")")
	cmd.Flags().BoolVar(&f.daily, "daily", false, "Include the per-day allocation calendar")
	cmd.Flags().BoolVar(&f.noTax, "no-tax", false, "Leave out tax estimates")
	cmd.Flags().BoolVar(&f.save, "save", false, "Write the report to a timestamped file instead of stdout")
	cmd.Flags().Bool("debug", false, "Log each pay period as it is allocated")
}

// render calculates cfg and writes the report in the requested format
func (a *app) render(cmd *cobra.Command, cfg *domain.Configuration, f *reportFlags) error {
	formatter := output.GetFormatterByName(f.format)
	if formatter == nil {
		return fmt.Errorf("unknown format %q (available: %s)", f.format, strings.Join(output.FormatterNames(), ", "))
	}

	engine := allocation.NewEngine()
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		engine.SetLogger(logrus.WithField("module", "allocation"))
		logrus.SetLevel(logrus.DebugLevel)
	}
	run, err := engine.CalculateAll(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	opts := output.ReportOptions{IncludeDaily: f.daily}
	if !f.noTax {
		opts.Estimator = tax.NewEstimator(a.tables)
	}
	report := output.BuildReport(cfg, run, opts)

	if f.save {
		ext := f.format
		if ext == "console" {
			ext = "txt"
		}
		filename, err := output.WriteFormatted(formatter, report, ext)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
		return nil
	}

	data, err := formatter.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newCalculateCmd(a *app) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Allocate pay periods and bonuses across states",
		Long: `Allocates every pay period in the input file and prints state totals.

A pay period that cannot be calculated is reported with its error and the
remaining periods are still allocated.

Examples:
  splittax calculate input.yaml
  splittax calculate input.yaml --format html --save
  splittax calculate input.json --daily --no-tax`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.parser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, cfg, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate an input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.parser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration file %s is valid\n", args[0])
			printIssues(out, config.Lint(cfg))
			return nil
		},
	}
}

func printIssues(w io.Writer, issues []string) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d warning(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
