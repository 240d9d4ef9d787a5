package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/contacts/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a contact",
		Long:  "Remove a contact from the local list. Removing an unknown id is not an error.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id := model.ID(args[0])

	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	removed := s.store.Remove(cmd.Context(), id)

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"removed":%t}`+"\n", id, removed)
}
