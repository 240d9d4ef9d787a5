package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/contacts/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import contacts from JSON",
		Long:  "Import contacts from a JSON array on stdin. Each record is added like a new contact; ids are reassigned.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		exitErr("read stdin", err)
	}

	var contacts []model.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		exitErr("parse json", err)
	}

	s, err := loadSession(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.store.Import(cmd.Context(), contacts)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
