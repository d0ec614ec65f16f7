package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/roomledger/internal/auth"
	"github.com/mmynk/roomledger/internal/ledger"
)

type loginCmd struct {
	app           *App
	studentID     string
	passwordStdin bool
	in            io.Reader
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in with your student ID" }
func (*loginCmd) Usage() string {
	return `login -student-id <id> [-password-stdin]

  Checks your password and records your student ID on the ledger. The first
  login of a student ID sets its password. The password is read from the
  first line of standard input.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.studentID, "student-id", "", "Student ID (required)")
	f.BoolVar(&c.passwordStdin, "password-stdin", true, "Read the password from standard input")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.studentID) == "" {
		return c.app.exit(usageErrorf("-student-id is required"))
	}
	if !c.passwordStdin {
		return c.app.exit(usageErrorf("the password can only be read from standard input"))
	}

	in := c.in
	if in == nil {
		in = os.Stdin
	}
	password, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return c.app.exit(fmt.Errorf("failed to read password: %w", err))
	}
	password = strings.TrimRight(password, "\r\n")

	store, err := c.app.openStore()
	if err != nil {
		return c.app.exit(err)
	}
	enrolled, err := auth.NewPasswordAuthenticator(store).Authenticate(ctx, c.studentID, password)
	store.Close()
	if err != nil {
		return c.app.exit(err)
	}

	err = c.app.mutate(ctx, func(l *ledger.Store) error {
		return l.SetStudentID(c.studentID)
	})
	if err != nil {
		return c.app.exit(err)
	}

	if enrolled {
		fmt.Fprintf(c.app.Out, "✅ Welcome %s, your password is set\n", c.studentID)
	} else {
		fmt.Fprintf(c.app.Out, "✅ Logged in as %s\n", c.studentID)
	}
	return subcommands.ExitSuccess
}
