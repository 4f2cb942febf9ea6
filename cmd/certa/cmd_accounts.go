package main

import (
	"fmt"
	"text/tabwriter"

	"certa/internal/config"
	"certa/pkg/secrets"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the backend accounts stored in KeePass",
	Long: `Lists the accounts found under backend/<environment>/<name> in the
KeePass database, for the environments enabled in the configuration.`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func runAccounts(cmd *cobra.Command, args []string) error {
	s, err := bootstrap("certa-cli")
	if err != nil {
		return err
	}
	defer s.Close()

	if s.secrets == nil {
		return fmt.Errorf("KeePass database %s is not available", secrets.DefaultDBPath())
	}
	accounts, err := config.DiscoverAccounts(s.secrets, s.cfg)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No accounts. Add entries under %s/<environment>/<name> in %s\n",
			config.SecretsSection, secrets.DefaultDBPath())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tURL\tUSER\tTIMEZONE")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Label(), a.URL, a.UserName, a.Timezone)
	}
	return w.Flush()
}
