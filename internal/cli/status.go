package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show API connectivity and cache state",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	printStatus(cmd.OutOrStdout(), formatFlag, s.report(cmd))
}

func (s *session) report(cmd *cobra.Command) statusReport {
	st := s.store.State()
	r := statusReport{
		Status:   st.Status,
		API:      s.api,
		Contacts: len(st.Contacts),
	}
	if st.LoadErr != nil {
		r.LoadError = st.LoadErr.Error()
	}
	if info, err := s.cache.Info(cmd.Context()); err == nil {
		r.Cache = info
	}
	return r
}
