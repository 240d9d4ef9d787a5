package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export contacts as JSON",
		Long:  "Export the loaded contact list as a JSON array, the format import expects.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	requireContacts(s)
	defer s.Close()

	printContacts(cmd.OutOrStdout(), "json", s.store.Export())
}
