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

type settlementsCmd struct {
	app *App
}

func (*settlementsCmd) Name() string     { return "settlements" }
func (*settlementsCmd) Synopsis() string { return "show who owes whom" }
func (*settlementsCmd) Usage() string {
	return `settlements

  Shows your net balance and, per roommate, what you owe them or what they
  owe you from shared expenses. Debts you owe are listed first.
`
}

func (*settlementsCmd) SetFlags(*flag.FlagSet) {}

func (c *settlementsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.exit(c.app.view(ctx, func(l *ledger.Store) error {
		summary, err := calculator.Summarize(l.Snapshot())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
		switch {
		case summary.NetBalance.IsPositive():
			fmt.Fprintf(w, "Net balance\t%s\tYou're owed overall\n", SignedCurrency(summary.NetBalance))
		case summary.NetBalance.IsNegative():
			fmt.Fprintf(w, "Net balance\t%s\tYou owe overall\n", SignedCurrency(summary.NetBalance))
		default:
			fmt.Fprintf(w, "Net balance\t%s\tAll settled up!\n", Currency(summary.NetBalance))
		}
		fmt.Fprintf(w, "You owe\t%s\t%s\n", Currency(summary.TotalYouOwe), people(summary.YouOweCount))
		fmt.Fprintf(w, "Owed to you\t%s\t%s\n", Currency(summary.TotalOwedToYou), people(summary.OwedToYouCount))

		if len(summary.Settlements) > 0 {
			fmt.Fprintln(w)
		}
		for _, d := range []calculator.Direction{calculator.DirectionYouOweThem, calculator.DirectionTheyOweYou} {
			for _, s := range summary.Settlements {
				if s.Direction != d {
					continue
				}
				if d == calculator.DirectionYouOweThem {
					fmt.Fprintf(w, "  You owe %s\t%s\t%s\n", s.Person.Name, Currency(s.Amount.Neg()), s.Person.ID)
				} else {
					fmt.Fprintf(w, "  %s owes you\t%s\t%s\n", s.Person.Name, SignedCurrency(s.Amount), s.Person.ID)
				}
			}
		}
		return w.Flush()
	}))
}

func people(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

type settleCmd struct {
	app *App
}

func (*settleCmd) Name() string     { return "settle" }
func (*settleCmd) Synopsis() string { return "mark everything with a roommate as settled" }
func (*settleCmd) Usage() string {
	return `settle <roommate>

  Deletes every shared expense paid by you or the roommate in which you both
  take part.
`
}

func (*settleCmd) SetFlags(*flag.FlagSet) {}

func (c *settleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.exit(usageErrorf("settle takes exactly one roommate"))
	}

	var name string
	var removed int
	err := c.app.mutate(ctx, func(l *ledger.Store) error {
		p, err := resolvePerson(l, f.Arg(0))
		if err != nil {
			return err
		}
		name = p.Name
		removed, err = l.SettleWith(p.ID)
		return err
	})
	if err != nil {
		return c.app.exit(err)
	}

	fmt.Fprintf(c.app.Out, "✅ Settled with %s (%d shared expenses cleared)\n", name, removed)
	return subcommands.ExitSuccess
}

type balancesCmd struct {
	app *App
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show group balances and suggested transfers" }
func (*balancesCmd) Usage() string {
	return `balances

  Shows what every member paid and owes across shared expenses, and the
  transfers that would settle the whole group.
`
}

func (*balancesCmd) SetFlags(*flag.FlagSet) {}

func (c *balancesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.exit(c.app.view(ctx, func(l *ledger.Store) error {
		balances, err := calculator.MemberBalances(l.Snapshot().Expenses)
		if err != nil {
			return err
		}
		if len(balances) == 0 {
			fmt.Fprintln(c.app.Out, "No shared expenses")
			return nil
		}

		w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  Member\tPaid\tShare\tNet")
		for _, b := range balances {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
				displayName(l, b.PersonID), Currency(b.TotalPaid), Currency(b.TotalOwed), SignedCurrency(b.Net))
		}

		transfers := calculator.SuggestTransfers(balances)
		if len(transfers) > 0 {
			fmt.Fprintln(w, "\nSuggested transfers")
			for _, t := range transfers {
				fmt.Fprintf(w, "  %s → %s\t%s\n", displayName(l, t.From), displayName(l, t.To), Currency(t.Amount))
			}
		}
		return w.Flush()
	}))
}
