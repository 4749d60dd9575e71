package cli

import (
	"fmt"
	"net/url"

	"github.com/fileshare/fileshare/internal/cli/api"
	"github.com/fileshare/fileshare/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagLinkTTL int

var shareCmd = &cobra.Command{
	Use:   "share <file-id> <email>...",
	Short: "Share a file with registered users",
	Long: `Grant read access to one or more registered users by email.
Unknown addresses are ignored by the server.

  fileshare share 550e8400-... bob@example.com carol@example.com`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.FileResponse]
		if err := apiClient.Post("/files/"+url.PathEscape(args[0])+"/share", map[string][]string{
			"userEmails": args[1:],
		}, &resp); err != nil {
			return fmt.Errorf("sharing: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data.File)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now shared with %d user(s)\n", resp.Data.File.OriginalName, len(resp.Data.File.SharedWith))
		return nil
	},
}

var unshareCmd = &cobra.Command{
	Use:   "unshare <file-id> <user-id>",
	Short: "Revoke a user's access to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.FileResponse]
		path := "/files/" + url.PathEscape(args[0]) + "/shares/" + url.PathEscape(args[1])
		if err := apiClient.Delete(path, &resp); err != nil {
			return fmt.Errorf("unsharing: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data.File)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now shared with %d user(s)\n", resp.Data.File.OriginalName, len(resp.Data.File.SharedWith))
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <file-id>",
	Short: "Create a time-limited share link, replacing any previous one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		body := map[string]int{}
		if cmd.Flags().Changed("hours") {
			body["expiresInHours"] = flagLinkTTL
		}

		var resp api.Response[api.Link]
		if err := apiClient.Post("/files/"+url.PathEscape(args[0])+"/link", body, &resp); err != nil {
			return fmt.Errorf("creating link: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data)
			return nil
		}
		output.LinkDetail(cmd.OutOrStdout(), resp.Data)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <file-id>",
	Short: "Revoke a file's share link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		if err := apiClient.Delete("/files/"+url.PathEscape(args[0])+"/link", nil); err != nil {
			return fmt.Errorf("revoking link: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Link revoked.")
		return nil
	},
}

func init() {
	linkCmd.Flags().IntVar(&flagLinkTTL, "hours", 24, "Link lifetime in hours (server default when omitted)")
	rootCmd.AddCommand(shareCmd, unshareCmd, linkCmd, unlinkCmd)
}
