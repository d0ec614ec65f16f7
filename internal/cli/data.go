package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/models"
)

type exportCmd struct {
	app    *App
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger as JSON" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes the whole ledger (user, budget, roommates and expenses) as JSON to
  the file, or to standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (default: standard output)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var snapshot *models.Snapshot
	err := c.app.view(ctx, func(l *ledger.Store) error {
		snapshot = l.Snapshot()
		return nil
	})
	if err != nil {
		return c.app.exit(err)
	}

	w := c.app.Out
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return c.app.exit(fmt.Errorf("failed to create %s: %w", c.output, err))
		}
		defer f.Close()
		w = f
	}

	if err := EncodeSnapshot(w, snapshot); err != nil {
		return c.app.exit(err)
	}
	if c.output != "" {
		fmt.Fprintf(c.app.Out, "✅ Exported %d expenses to %s\n", len(snapshot.Expenses), c.output)
	}
	return subcommands.ExitSuccess
}

type importCmd struct {
	app *App
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the ledger with a JSON export" }
func (*importCmd) Usage() string {
	return `import <file>

  Replaces the whole ledger with the content of a file written by export.
  Use - to read standard input.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.exit(usageErrorf("import takes exactly one file"))
	}

	var r io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return c.app.exit(fmt.Errorf("failed to open %s: %w", name, err))
		}
		defer file.Close()
		r = file
	}

	snapshot, err := DecodeSnapshot(r)
	if err != nil {
		return c.app.exit(err)
	}

	err = c.app.mutate(ctx, func(l *ledger.Store) error {
		return l.Restore(snapshot)
	})
	if err != nil {
		return c.app.exit(err)
	}

	fmt.Fprintf(c.app.Out, "✅ Imported %d roommates and %d expenses\n", len(snapshot.Roommates), len(snapshot.Expenses))
	return subcommands.ExitSuccess
}

// EncodeSnapshot writes the snapshot as indented JSON.
func EncodeSnapshot(w io.Writer, snapshot *models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot. Unknown fields
// are rejected and the user must be present.
func DecodeSnapshot(r io.Reader) (*models.Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var snapshot models.Snapshot
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}
	if snapshot.User.ID == "" {
		return nil, fmt.Errorf("failed to decode ledger: user.id is missing")
	}
	if snapshot.Roommates == nil {
		snapshot.Roommates = []models.Person{}
	}
	if snapshot.Expenses == nil {
		snapshot.Expenses = []models.Expense{}
	}
	return &snapshot, nil
}
