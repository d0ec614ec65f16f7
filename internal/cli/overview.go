package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mmynk/roomledger/internal/calculator"
	"github.com/mmynk/roomledger/internal/ledger"
)

type dashboardCmd struct {
	app    *App
	recent int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show the budget overview" }
func (*dashboardCmd) Usage() string {
	return `dashboard [-recent <n>]

  Shows the monthly budget, how much of it your share of the expenses used,
  the spending per category and the most recent expenses.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.recent, "recent", 5, "Number of recent expenses to show")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.exit(c.app.view(ctx, func(l *ledger.Store) error {
		dashboard, err := calculator.BuildDashboard(l.Snapshot())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Budget\t%s\n", Currency(dashboard.BudgetTotal))
		fmt.Fprintf(w, "Spent\t%s\n", Currency(dashboard.Spent))
		fmt.Fprintf(w, "Remaining\t%s\n", Currency(dashboard.Remaining))
		fmt.Fprintf(w, "Used\t%s\t%s\n", Percent(dashboard.Status.Percentage), dashboard.Status.Tier.Message())
		fmt.Fprintf(w, "Expenses\t%d\n", dashboard.ExpenseCount)

		if len(dashboard.Categories) > 0 {
			fmt.Fprintln(w, "\nSpending by category")
			for _, ct := range dashboard.Categories {
				fmt.Fprintf(w, "  %s\t%s\n", ct.Category, Currency(ct.Amount))
			}
		}

		recent := l.Expenses(ledger.ExpenseFilter{})
		if c.recent >= 0 && len(recent) > c.recent {
			recent = recent[:c.recent]
		}
		if len(recent) > 0 {
			fmt.Fprintln(w, "\nRecent expenses")
			for _, e := range recent {
				writeExpense(w, l, e)
			}
		}
		return w.Flush()
	}))
}
