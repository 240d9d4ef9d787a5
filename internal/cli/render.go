package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rcliao/contacts/internal/cache"
	"github.com/rcliao/contacts/internal/model"
	"github.com/rcliao/contacts/internal/store"
)

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func printContacts(w io.Writer, format string, contacts []model.Contact) {
	if format != "text" {
		if contacts == nil {
			contacts = []model.Contact{}
		}
		printJSON(w, contacts)
		return
	}
	if len(contacts) == 0 {
		fmt.Fprintln(w, "no contacts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, dash(c.Email), dash(c.Phone))
	}
	tw.Flush()
}

func printStats(w io.Writer, format string, st store.Statistics) {
	if format != "text" {
		printJSON(w, st)
		return
	}
	fmt.Fprintf(w, "total: %d\n", st.Total)
	fmt.Fprintf(w, "with email: %d  without email: %d\n", st.WithEmail, st.WithoutEmail)
	fmt.Fprintf(w, "with phone: %d  without phone: %d\n", st.WithPhone, st.WithoutPhone)
}

// statusReport is the output of the status command.
type statusReport struct {
	Status    store.Status `json:"status"`
	API       string       `json:"api"`
	LoadError string       `json:"load_error,omitempty"`
	Contacts  int          `json:"contacts"`
	Cache     *cache.Info  `json:"cache,omitempty"`
}

func printStatus(w io.Writer, format string, r statusReport) {
	if format != "text" {
		printJSON(w, r)
		return
	}
	fmt.Fprintf(w, "status:   %s\n", r.Status)
	fmt.Fprintf(w, "api:      %s\n", displayAPI(r.API))
	if r.LoadError != "" {
		fmt.Fprintf(w, "error:    %s\n", r.LoadError)
	}
	fmt.Fprintf(w, "contacts: %d\n", r.Contacts)
	if r.Cache == nil {
		return
	}
	fmt.Fprintf(w, "cache:    %s (%s)\n", r.Cache.Path, humanize.Bytes(uint64(r.Cache.SizeBytes)))
	if r.Cache.Cached && r.Cache.UpdatedAt != nil {
		fmt.Fprintf(w, "snapshot: %d contacts, updated %s\n", r.Cache.Contacts, humanize.RelTime(*r.Cache.UpdatedAt, time.Now(), "ago", "from now"))
	} else {
		fmt.Fprintln(w, "snapshot: none")
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
