package main

import (
	"fmt"
	"os"

	"certa/internal/config"
	"certa/internal/host"
	"certa/pkg/appapi"
	"certa/pkg/secrets"

	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	accountName string
	envFile     string
)

var rootCmd = &cobra.Command{
	Use:   "certa",
	Short: "certa - therapy certification client",
	Long: `certa manages monthly therapy certifications from the terminal:
patients, recurring therapy schedules, sessions with signatures and the
certification PDF.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.certa/configs/certa.yaml)")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "account to connect to, as environment/name or name")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with CERTA_* overrides (default ./.env if present)")

	rootCmd.AddCommand(pdfCmd, accountsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session is what every command starts from.
type session struct {
	cfg     *config.Config
	secrets appapi.SecretsProvider
}

func (s *session) Close() {
	if s.secrets != nil {
		s.secrets.Close()
	}
	appapi.CloseLogger()
}

// bootstrap loads env and config, opens the log file and the KeePass
// database. The caller closes the session.
func bootstrap(logName string) (*session, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = appapi.DefaultConfigPath()
	}

	logger, err := appapi.NewLogger(logName, cfg.Debug.Enabled)
	if err != nil {
		return nil, err
	}
	appapi.SetLogger(logger)

	s := &session{cfg: cfg}
	provider, err := secrets.New()
	if err != nil {
		appapi.Log().Warn("secrets unavailable: %v", err)
		return s, nil
	}
	s.secrets = secrets.NewAdapter(provider)
	appapi.SetSecretsProvider(s.secrets)
	if err := config.EnsureExampleAccount(s.secrets); err != nil {
		appapi.Log().Warn("seed example account: %v", err)
	}
	return s, nil
}

func runTUI() error {
	s, err := bootstrap("certa")
	if err != nil {
		return err
	}
	defer s.Close()

	app := tview.NewApplication()
	pages := tview.NewPages()
	h := host.New(app, pages, host.Options{
		Config:     s.cfg,
		ConfigPath: configPath,
		Secrets:    s.secrets,
	})
	root := h.Layout()
	if err := h.ConnectInitial(accountName); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer h.Stop()

	return app.SetRoot(root, true).EnableMouse(true).Run()
}
