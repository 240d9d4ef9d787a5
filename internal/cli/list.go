package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Run:   runList,
	}

	cmd.Flags().StringP("filter", "q", "", "Only contacts whose name, email or phone contains this text")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	filter, _ := cmd.Flags().GetString("filter")

	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	requireContacts(s)
	defer s.Close()

	printContacts(cmd.OutOrStdout(), formatFlag, s.store.Filter(filter))
}
