package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/models"
)

// palette holds the avatar colors offered for new roommates.
var palette = []string{
	"hsl(210, 80%, 55%)",
	"hsl(280, 60%, 55%)",
	"hsl(25, 90%, 55%)",
	"hsl(340, 75%, 55%)",
	"hsl(175, 60%, 40%)",
	"hsl(45, 95%, 50%)",
}

type roommatesCmd struct {
	app *App
}

func (*roommatesCmd) Name() string     { return "roommates" }
func (*roommatesCmd) Synopsis() string { return "list roommates" }
func (*roommatesCmd) Usage() string {
	return `roommates

  Lists everyone in the ledger, you included.
`
}

func (*roommatesCmd) SetFlags(*flag.FlagSet) {}

func (c *roommatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.exit(c.app.view(ctx, func(l *ledger.Store) error {
		w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
		for _, p := range l.People() {
			role := "Roommate"
			if p.IsCurrentUser {
				role = "YOU"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Name, role, p.Color, p.ID)
		}
		return w.Flush()
	}))
}

type addRoommateCmd struct {
	app   *App
	name  string
	color string
}

func (*addRoommateCmd) Name() string     { return "add-roommate" }
func (*addRoommateCmd) Synopsis() string { return "add a roommate" }
func (*addRoommateCmd) Usage() string {
	return `add-roommate -name <name> [-color <css color>]

  Adds a roommate. Without -color one is picked from the palette.
`
}

func (c *addRoommateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Roommate name (required)")
	f.StringVar(&c.color, "color", "", "Avatar color (default: next palette color)")
}

func (c *addRoommateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var person models.Person
	err := c.app.mutate(ctx, func(l *ledger.Store) error {
		color := c.color
		if color == "" {
			color = palette[(len(l.People())-1+len(palette))%len(palette)]
		}

		var err error
		person, err = l.AddPerson(ledger.PersonDraft{Name: c.name, Color: color})
		return err
	})
	if err != nil {
		return c.app.exit(err)
	}

	fmt.Fprintf(c.app.Out, "✅ Added %s with ID %s\n", person.Name, person.ID)
	return subcommands.ExitSuccess
}

type deleteRoommateCmd struct {
	app *App
}

func (*deleteRoommateCmd) Name() string     { return "delete-roommate" }
func (*deleteRoommateCmd) Synopsis() string { return "remove a roommate and the expenses they paid" }
func (*deleteRoommateCmd) Usage() string {
	return `delete-roommate <roommate>

  Removes the roommate (by ID or name). Expenses they paid are deleted and
  they are removed from the expenses they shared. You cannot remove yourself.
`
}

func (*deleteRoommateCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteRoommateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.exit(usageErrorf("delete-roommate takes exactly one roommate"))
	}

	var removed models.Person
	var before, after int
	err := c.app.mutate(ctx, func(l *ledger.Store) error {
		p, err := resolvePerson(l, f.Arg(0))
		if err != nil {
			return err
		}
		removed = p
		before = len(l.Expenses(ledger.ExpenseFilter{}))
		if err := l.DeletePerson(p.ID); err != nil {
			return err
		}
		after = len(l.Expenses(ledger.ExpenseFilter{}))
		return nil
	})
	if err != nil {
		return c.app.exit(err)
	}

	fmt.Fprintf(c.app.Out, "✅ Removed %s (%d expenses deleted)\n", removed.Name, before-after)
	return subcommands.ExitSuccess
}
