package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/models"
)

type setBudgetCmd struct {
	app *App
}

func (*setBudgetCmd) Name() string     { return "set-budget" }
func (*setBudgetCmd) Synopsis() string { return "set the monthly budget" }
func (*setBudgetCmd) Usage() string {
	return `set-budget <amount>

  Sets your monthly budget, in rupees. It must be greater than zero.
`
}

func (*setBudgetCmd) SetFlags(*flag.FlagSet) {}

func (c *setBudgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.exit(usageErrorf("set-budget takes exactly one amount"))
	}
	total, err := decimal.NewFromString(strings.TrimSpace(f.Arg(0)))
	if err != nil {
		return c.app.exit(usageErrorf("amount %q is not a number", f.Arg(0)))
	}

	var budget models.Budget
	err = c.app.mutate(ctx, func(l *ledger.Store) error {
		if err := l.UpdateBudgetTotal(total); err != nil {
			return err
		}
		budget = l.Budget()
		return nil
	})
	if err != nil {
		return c.app.exit(err)
	}

	fmt.Fprintf(c.app.Out, "✅ Budget set to %s (%s remaining)\n", Currency(budget.Total), Currency(budget.Remaining))
	return subcommands.ExitSuccess
}
