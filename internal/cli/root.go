// Package cli implements the fileshare command-line client.
package cli

import (
	"fmt"
	"os"

	"github.com/fileshare/fileshare/internal/cli/api"
	"github.com/fileshare/fileshare/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "fileshare",
	Short: "fileshare CLI: upload, share and download files from the terminal",
	Long: `fileshare lets you upload, share and download files on a fileshare server.

Get started:
  fileshare register           Create an account
  fileshare login              Sign in with email and password
  fileshare upload report.pdf  Upload a file
  fileshare ls                 List your files and files shared with you`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or "+config.DefaultURL+")")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated: run \"fileshare login\" first")
	}
	return nil
}
