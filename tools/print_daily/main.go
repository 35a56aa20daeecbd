package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/config"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: print_daily <input-file>")
		os.Exit(2)
	}

	cfg, err := config.NewInputParser().LoadFromFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	run, err := allocation.NewEngine().CalculateAll(context.Background(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Primary state: %s\n", run.PrimaryState)
	for _, o := range run.Outcomes {
		if !o.OK() {
			fmt.Printf("\n%s: %v\n", o.Period.Label(), o.Err)
			continue
		}
		s := o.Result.Summary
		fmt.Printf("\n%s: %d worked days, daily rate %s\n", o.Period.Label(), s.TotalWorkedDays, s.DailyRate.StringFixed(4))
		for _, state := range o.Result.Allocations.States() {
			a := o.Result.Allocations[state]
			fmt.Printf("  %-3s days=%-3d regular=%s bonus=%s\n", state, a.Days, a.RegularPay.StringFixed(2), a.Bonus.StringFixed(2))
		}
	}

	fmt.Println("\nDaily:")
	for _, d := range run.DailyAllocations() {
		marker := ""
		if d.IsPrimary {
			marker = " *"
		}
		fmt.Printf("  %s %s %s (%s)%s\n", dateutil.FormatDate(d.Date), d.Date.Weekday().String()[:3], d.Income.StringFixed(2), d.State, marker)
	}

	for _, w := range run.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}
}
