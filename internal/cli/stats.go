package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show contact statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	printStats(cmd.OutOrStdout(), formatFlag, s.store.Statistics())
}
