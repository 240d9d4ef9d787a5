package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/contacts/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a contact",
		Long:  "Add a contact. The name can be given with --name or as positional args. Saved locally when the API is offline.",
		Run:   runAdd,
	}

	cmd.Flags().StringP("name", "n", "", "Name (required)")
	cmd.Flags().StringP("email", "e", "", "Email")
	cmd.Flags().StringP("phone", "p", "", "Phone")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	if name == "" && len(args) > 0 {
		name = strings.Join(args, " ")
	}

	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rec, added, err := s.store.Add(cmd.Context(), model.Candidate{Name: name, Email: email, Phone: phone})
	if err != nil {
		exitErr("add", err)
	}
	if !added {
		fmt.Fprintln(cmd.OutOrStdout(), `{"ok":false,"skipped":true}`)
		return
	}

	printJSON(cmd.OutOrStdout(), rec)
}
