// Package cli implements the ledger subcommands operating on the local
// SQLite snapshot.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/models"
	"github.com/mmynk/roomledger/internal/storage"
	"github.com/mmynk/roomledger/internal/storage/sqlite"
)

// App is the state shared by all subcommands.
type App struct {
	DBPath string
	Out    io.Writer
	Err    io.Writer

	// LedgerOptions are passed to every ledger.Store the commands build.
	LedgerOptions []ledger.Option
}

// Register adds every subcommand to the commander, grouped like the pages of
// the app.
func (a *App) Register(c *subcommands.Commander) {
	c.Register(&dashboardCmd{app: a}, "overview")

	c.Register(&expensesCmd{app: a}, "expenses")
	c.Register(&addExpenseCmd{app: a}, "expenses")
	c.Register(&deleteExpenseCmd{app: a}, "expenses")

	c.Register(&roommatesCmd{app: a}, "roommates")
	c.Register(&addRoommateCmd{app: a}, "roommates")
	c.Register(&deleteRoommateCmd{app: a}, "roommates")

	c.Register(&settlementsCmd{app: a}, "settlements")
	c.Register(&settleCmd{app: a}, "settlements")
	c.Register(&balancesCmd{app: a}, "settlements")

	c.Register(&setBudgetCmd{app: a}, "budget")

	c.Register(&loginCmd{app: a}, "account")
	c.Register(&exportCmd{app: a}, "data")
	c.Register(&importCmd{app: a}, "data")
}

// errUsage marks errors caused by bad command-line input.
var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// openStore opens the SQLite database.
func (a *App) openStore() (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(a.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database %s: %w", a.DBPath, err)
	}
	return store, nil
}

// view loads the ledger and runs fn without saving.
func (a *App) view(ctx context.Context, fn func(*ledger.Store) error) error {
	return a.run(ctx, false, fn)
}

// mutate loads the ledger, runs fn and saves the result if fn succeeds.
func (a *App) mutate(ctx context.Context, fn func(*ledger.Store) error) error {
	return a.run(ctx, true, fn)
}

func (a *App) run(ctx context.Context, save bool, fn func(*ledger.Store) error) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot, err := storage.LoadOrDefault(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	l, err := ledger.New(snapshot, a.LedgerOptions...)
	if err != nil {
		return err
	}

	if err := fn(l); err != nil {
		return err
	}
	if !save {
		return nil
	}

	if err := store.SaveSnapshot(ctx, l.Snapshot()); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	slog.Debug("Ledger saved", "database", a.DBPath)
	return nil
}

// exit prints err and converts it into an exit status.
func (a *App) exit(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(a.Err, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// resolvePerson finds a roommate by ID, or by case-insensitive name when the
// name is unambiguous.
func resolvePerson(l *ledger.Store, ref string) (models.Person, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := l.Person(ref); ok {
		return p, nil
	}

	var matches []models.Person
	for _, p := range l.People() {
		if strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return models.Person{}, usageErrorf("no roommate %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Person{}, usageErrorf("%d roommates are named %q, use an ID", len(matches), ref)
	}
}

// displayName is the name shown for a person, "You" for the current user.
func displayName(l *ledger.Store, id string) string {
	if id == l.CurrentUser().ID {
		return "You"
	}
	if p, ok := l.Person(id); ok {
		return p.Name
	}
	return id
}
