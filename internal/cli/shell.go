package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/contacts/internal/model"
	"github.com/rcliao/contacts/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive session over one contact list",
		Long: "Start an interactive session. The list is loaded once; add, rm and filter " +
			"work on it until quit. Type help for commands.",
		Run: runShell,
	}

	RootCmd.AddCommand(cmd)
}

func runShell(cmd *cobra.Command, args []string) {
	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sh := &shell{session: s, out: cmd.OutOrStdout(), format: "text"}
	sh.banner()
	sh.run(cmd.Context(), cmd.InOrStdin())
}

const shellHelp = `commands:
  list [text]                 show contacts, filtered by text or the current filter
  filter [text]               set the filter (empty clears it)
  add name[, email[, phone]]  add a contact
  rm <id>                     remove a contact
  stats                       show statistics
  status                      show connectivity and cache state
  reload                      load again from the API or cache
  help                        show this help
  quit                        leave`

// shell holds presentation state for an interactive session. The filter text
// belongs here, not to the store.
type shell struct {
	*session
	out    io.Writer
	format string
	filter string
}

func (sh *shell) banner() {
	st := sh.store.State()
	fmt.Fprintf(sh.out, "contacts (%s, %d loaded)\n", st.Status, len(st.Contacts))
	sh.loadError(st)
}

func (sh *shell) loadError(st store.Snapshot) {
	if st.LoadErr != nil {
		fmt.Fprintf(sh.out, "error: %v; type reload to try again\n", st.LoadErr)
	}
}

func (sh *shell) run(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)
	fmt.Fprint(sh.out, "> ")
	for sc.Scan() {
		if !sh.exec(ctx, sc.Text()) {
			return
		}
		fmt.Fprint(sh.out, "> ")
	}
	fmt.Fprintln(sh.out)
}

// exec runs one command line. It returns false when the session should end.
func (sh *shell) exec(ctx context.Context, line string) bool {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "":
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "list", "ls":
		text := sh.filter
		if rest != "" {
			text = rest
		}
		printContacts(sh.out, sh.format, sh.store.Filter(text))
	case "filter":
		sh.filter = rest
		fmt.Fprintf(sh.out, "%d of %d contacts match\n", len(sh.store.Filter(sh.filter)), len(sh.store.Contacts()))
	case "add":
		sh.add(ctx, rest)
	case "rm":
		if rest == "" {
			fmt.Fprintln(sh.out, "usage: rm <id>")
			break
		}
		if sh.store.Remove(ctx, model.ID(rest)) {
			fmt.Fprintf(sh.out, "removed %s\n", rest)
		} else {
			fmt.Fprintf(sh.out, "no contact %s\n", rest)
		}
	case "stats":
		printStats(sh.out, sh.format, sh.store.Statistics())
	case "status":
		st := sh.store.State()
		fmt.Fprintf(sh.out, "%s, %d contacts\n", st.Status, len(st.Contacts))
		sh.loadError(st)
	case "reload":
		err := sh.store.Load(ctx)
		if err != nil && !errors.Is(err, store.ErrNoContacts) {
			fmt.Fprintf(sh.out, "error: %v\n", err)
			break
		}
		sh.banner()
	default:
		fmt.Fprintf(sh.out, "unknown command %q; type help\n", verb)
	}
	return true
}

func (sh *shell) add(ctx context.Context, rest string) {
	var c model.Candidate
	fields := strings.SplitN(rest, ",", 3)
	c.Name = strings.TrimSpace(fields[0])
	if len(fields) > 1 {
		c.Email = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		c.Phone = strings.TrimSpace(fields[2])
	}

	rec, added, err := sh.store.Add(ctx, c)
	switch {
	case err != nil:
		fmt.Fprintf(sh.out, "error: %v\n", err)
	case !added:
		fmt.Fprintln(sh.out, "usage: add name[, email[, phone]]")
	default:
		fmt.Fprintf(sh.out, "added %s (%s)\n", rec.Name, rec.ID)
	}
}
