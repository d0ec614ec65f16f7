package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/models"
)

type expensesCmd struct {
	app      *App
	category string
	kind     string
}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list expenses, most recent first" }
func (*expensesCmd) Usage() string {
	return `expenses [-category <category>] [-type personal|shared]

  Lists the recorded expenses. Filters combine.
`
}

func (c *expensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Only show this category")
	f.StringVar(&c.kind, "type", "", "Only show personal or shared expenses")
}

func (c *expensesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := ledger.ExpenseFilter{
		Category: models.Category(c.category),
		Type:     models.ExpenseType(c.kind),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return c.app.exit(usageErrorf("unknown category %q", c.category))
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return c.app.exit(usageErrorf("type must be personal or shared"))
	}

	return c.app.exit(c.app.view(ctx, func(l *ledger.Store) error {
		expenses := l.Expenses(filter)
		if len(expenses) == 0 {
			fmt.Fprintln(c.app.Out, "No expenses yet")
			return nil
		}

		w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
		for _, e := range expenses {
			writeExpense(w, l, e)
		}
		return w.Flush()
	}))
}

// writeExpense prints one expense line: date, title, category, amount, and
// who paid and shares it.
func writeExpense(w io.Writer, l *ledger.Store, e models.Expense) {
	detail := "personal"
	if e.IsShared() {
		names := make([]string, 0, len(e.Participants))
		for _, id := range e.Participants {
			names = append(names, displayName(l, id))
		}
		detail = fmt.Sprintf("paid by %s, split %s", displayName(l, e.Payer), strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
		e.Date.Local().Format("2006-01-02"), e.Title, e.Category, Currency(e.Amount), detail, e.ID)
}

type addExpenseCmd struct {
	app        *App
	title      string
	amount     string
	category   string
	kind       string
	paidBy     string
	sharedWith string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record a new expense" }
func (*addExpenseCmd) Usage() string {
	return `add-expense -title <title> -amount <amount> [-category <category>] [-type personal|shared] [-paid-by <roommate>] [-shared-with <roommate,...>]

  Records an expense. Roommates are given by ID or name; the payer defaults
  to you. A shared expense is split equally among -shared-with, which must
  include the payer.
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "What was paid for (required)")
	f.StringVar(&c.amount, "amount", "", "Amount paid, in rupees (required)")
	f.StringVar(&c.category, "category", string(models.CategoryOther), "One of: "+categoryList())
	f.StringVar(&c.kind, "type", string(models.ExpenseTypePersonal), "personal or shared")
	f.StringVar(&c.paidBy, "paid-by", "", "Roommate who paid (default: you)")
	f.StringVar(&c.sharedWith, "shared-with", "", "Comma-separated roommates splitting a shared expense")
}

func (c *addExpenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.amount))
	if err != nil {
		return c.app.exit(usageErrorf("amount %q is not a number", c.amount))
	}

	var added models.Expense
	err = c.app.mutate(ctx, func(l *ledger.Store) error {
		draft := ledger.ExpenseDraft{
			Title:    c.title,
			Amount:   amount,
			Category: models.Category(c.category),
			Type:     models.ExpenseType(c.kind),
			Payer:    l.CurrentUser().ID,
		}
		if c.paidBy != "" {
			payer, err := resolvePerson(l, c.paidBy)
			if err != nil {
				return err
			}
			draft.Payer = payer.ID
		}
		for _, ref := range splitList(c.sharedWith) {
			p, err := resolvePerson(l, ref)
			if err != nil {
				return err
			}
			draft.Participants = append(draft.Participants, p.ID)
		}

		var err error
		added, err = l.AddExpense(draft)
		return err
	})
	if err != nil {
		return c.app.exit(err)
	}

	fmt.Fprintf(c.app.Out, "✅ Added %q (%s) with ID %s\n", added.Title, Currency(added.Amount), added.ID)
	return subcommands.ExitSuccess
}

type deleteExpenseCmd struct {
	app *App
}

func (*deleteExpenseCmd) Name() string     { return "delete-expense" }
func (*deleteExpenseCmd) Synopsis() string { return "delete an expense" }
func (*deleteExpenseCmd) Usage() string {
	return `delete-expense <expense-id>

  Deletes the expense. Unknown IDs are ignored.
`
}

func (*deleteExpenseCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteExpenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.exit(usageErrorf("delete-expense takes exactly one expense ID"))
	}
	id := f.Arg(0)

	var found bool
	err := c.app.mutate(ctx, func(l *ledger.Store) error {
		_, found = l.Expense(id)
		return l.DeleteExpense(id)
	})
	if err != nil {
		return c.app.exit(err)
	}

	if found {
		fmt.Fprintf(c.app.Out, "✅ Deleted expense %s\n", id)
	} else {
		fmt.Fprintf(c.app.Out, "No expense %s, nothing to delete\n", id)
	}
	return subcommands.ExitSuccess
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
