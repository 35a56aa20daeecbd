package main

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/splittax/internal/store/sqlite"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newScenarioCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Manage saved inputs",
		Long: `Saves inputs under a name so they can be recalculated later, and
exports them back to input files.`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "splittax.db", "SQLite database path")

	// open uses --db when given and SPLITTAX_DB otherwise
	open := func(cmd *cobra.Command) (*sqlite.Store, error) {
		path := dbPath
		if !cmd.Flags().Changed("db") {
			path = a.settings.DBPath
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			scenarios, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(scenarios) == 0 {
				fmt.Fprintln(out, "No saved scenarios")
				return nil
			}
			for _, s := range scenarios {
				fmt.Fprintf(out, "%s  %-30s  updated %s\n", s.ID, s.Name, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save [name] [input-file]",
		Short: "Save an input file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.parser().LoadFromFile(args[1])
			if err != nil {
				return err
			}
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sc, err := store.Create(cmd.Context(), args[0], *cfg)
			if err != nil {
				return err
			}
			a.log.Debugf("saved scenario %s", sc.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved scenario %q as %s\n", sc.Name, sc.ID)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved scenario as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sc, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(sc.Config)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s (%s)\n", sc.Name, sc.ID)
			_, err = out.Write(data)
			return err
		},
	}

	export := &cobra.Command{
		Use:   "export [id] [file]",
		Short: "Write a saved scenario to an input file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sc, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(sc.Config)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", sc.Name, args[1])
			return nil
		},
	}

	var flags reportFlags
	calculate := &cobra.Command{
		Use:   "calculate [id]",
		Short: "Allocate a saved scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sc, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.parser().ValidateConfiguration(&sc.Config); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			return a.render(cmd, &sc.Config, &flags)
		},
	}
	flags.register(calculate)

	remove := &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a saved scenario",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scenario %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, save, show, export, calculate, remove)
	return cmd
}
