package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"certa/features/certifications"
	"certa/internal/config"
	"certa/internal/workspace"

	"github.com/spf13/cobra"
)

var pdfDir string

var pdfCmd = &cobra.Command{
	Use:   "pdf <certification-id>",
	Short: "Download a certification PDF",
	Long: `Downloads the rendered certification to
<download dir>/certification-<patient>-<yyyy>-<mm>.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

func init() {
	pdfCmd.Flags().StringVarP(&pdfDir, "output", "o", "", "directory to save into (default: download_dir from the config)")
}

func runPDF(cmd *cobra.Command, args []string) error {
	s, err := bootstrap("certa-cli")
	if err != nil {
		return err
	}
	defer s.Close()

	acct, err := selectAccount(s)
	if err != nil {
		return err
	}
	ws, err := workspace.New(s.cfg, acct, workspace.Options{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cert, err := ws.Certifications.Detail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("certification %s: %w", args[0], err)
	}
	dir := pdfDir
	if dir == "" {
		dir = s.cfg.DownloadDir
	}
	path, size, err := certifications.DownloadPDF(ctx, ws.Certifications, cert, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, size)
	return nil
}

// selectAccount resolves --account (or the configured account). Without
// one the configured API URL is used.
func selectAccount(s *session) (*config.Account, error) {
	selector := accountName
	if selector == "" {
		selector = s.cfg.Account
	}
	if selector == "" {
		return nil, nil
	}
	if s.secrets == nil {
		return nil, fmt.Errorf("account %q requested but the KeePass database is not available", selector)
	}
	accounts, err := config.DiscoverAccounts(s.secrets, s.cfg)
	if err != nil {
		return nil, err
	}
	acct, ok := config.FindAccount(accounts, selector)
	if !ok {
		return nil, fmt.Errorf("account %q not found", selector)
	}
	return &acct, nil
}
