package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/store/sqlite"
	"github.com/rgehrsitz/splittax/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	var (
		scenarioID string
		dbPath     string
	)
	cmd := &cobra.Command{
		Use:   "tui [input-file]",
		Short: "Browse results interactively",
		Long: `Opens a terminal browser over the allocation of an input file or of a
saved scenario. Press r to recalculate after editing the input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				source string
				load   tui.Loader
			)
			switch {
			case len(args) == 1 && scenarioID == "":
				source = args[0]
				load = tui.FileLoader(a.parser(), args[0])
			case len(args) == 0 && scenarioID != "":
				if !cmd.Flags().Changed("db") {
					dbPath = a.settings.DBPath
				}
				store, err := sqlite.New(dbPath)
				if err != nil {
					return fmt.Errorf("failed to initialize database: %w", err)
				}
				defer store.Close()
				source = "scenario " + scenarioID
				load = func() (*domain.Configuration, error) {
					sc, err := store.Get(cmd.Context(), scenarioID)
					if err != nil {
						return nil, err
					}
					if err := a.parser().ValidateConfiguration(&sc.Config); err != nil {
						return nil, fmt.Errorf("configuration validation failed: %w", err)
					}
					return &sc.Config, nil
				}
			default:
				return errors.New("give either an input file or --scenario")
			}

			p := tea.NewProgram(tui.NewModel(source, load, a.tables), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scenarioID, "scenario", "", "Saved scenario ID to browse instead of a file")
	cmd.Flags().StringVar(&dbPath, "db", "splittax.db", "SQLite database path")
	return cmd
}
