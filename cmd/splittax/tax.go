package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTaxCmd(a *app) *cobra.Command {
	var (
		state     string
		status    string
		deduction string
	)
	cmd := &cobra.Command{
		Use:   "tax [amount]",
		Short: "Estimate income tax on an amount",
		Long: `Applies a state's (or the federal) progressive brackets to an amount.

The standard deduction for the filing status is used unless --deduction is given.

Examples:
  splittax tax 85000 --state MN
  splittax tax 85000 --state "new york" --status married
  splittax tax 120000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
			if status != domain.FilingSingle && status != domain.FilingMarried {
				return fmt.Errorf("filing status must be %q or %q", domain.FilingSingle, domain.FilingMarried)
			}

			var (
				name     string
				brackets []tax.Bracket
				ded      decimal.Decimal
			)
			if state == "" {
				table := a.tables.Federal(status)
				name, brackets, ded = "Federal", table.Brackets, table.StandardDeduction
			} else {
				cfg, ok := tax.LookupState(a.tables, state)
				if !ok {
					return fmt.Errorf("%w: %q", tax.ErrUnknownState, state)
				}
				if !cfg.HasIncomeTax {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) has no individual income tax\n", cfg.Name, cfg.Code)
					return nil
				}
				name = fmt.Sprintf("%s (%s)", cfg.Name, cfg.Code)
				brackets, ded = cfg.Brackets, cfg.StandardDeduction.For(status)
			}
			if deduction != "" {
				if ded, err = parseMoney(deduction); err != nil {
					return fmt.Errorf("invalid deduction: %w", err)
				}
			}

			owed := tax.TaxOwed(amount, ded, brackets)
			effective := decimal.Zero
			if amount.IsPositive() {
				effective = owed.Div(amount)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s\n", name, status)
			fmt.Fprintf(out, "  Income:         %s\n", output.FormatCurrency(amount))
			fmt.Fprintf(out, "  Deduction:      %s\n", output.FormatCurrency(ded))
			fmt.Fprintf(out, "  Taxable:        %s\n", output.FormatCurrency(decimal.Max(decimal.Zero, amount.Sub(ded))))
			fmt.Fprintf(out, "  Tax:            %s\n", output.FormatCurrency(owed))
			fmt.Fprintf(out, "  Marginal rate:  %s\n", output.FormatPercentage(tax.MarginalRate(amount, ded, brackets)))
			fmt.Fprintf(out, "  Effective rate: %s\n", output.FormatPercentage(effective))
			return nil
		},
	}
	cmd.Flags().StringVarP(&state, "state", "s", "", "State code or name (federal when omitted)")
	cmd.Flags().StringVar(&status, "status", domain.FilingSingle, "Filing status (single, married)")
	cmd.Flags().StringVar(&deduction, "deduction", "", "Deduction to use instead of the standard deduction")
	return cmd
}

func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s is negative", s)
	}
	return d, nil
}

func newStatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "states [query]",
		Short: "List states with their income tax and nonresident filing rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			states := tax.SearchStates(a.tables, query)
			if len(states) == 0 {
				return fmt.Errorf("no state matches %q", query)
			}

			out := cmd.OutOrStdout()
			for _, s := range states {
				income := "no income tax"
				if s.HasIncomeTax {
					income = fmt.Sprintf("%d bracket(s)", len(s.Brackets))
				}
				filing := ""
				if f, ok := a.tables.FilingRequirement(s.Code); ok {
					filing = f.Description
				}
				fmt.Fprintf(out, "%-3s %-22s %-14s %s\n", s.Code, s.Name, income, filing)
			}
			return nil
		},
	}
}
