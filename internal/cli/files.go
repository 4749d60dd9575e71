package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fileshare/fileshare/internal/cli/api"
	"github.com/fileshare/fileshare/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagOutput  string
	flagLink    string
	flagRawURL  bool
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List your files and files shared with you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.FilesResponse]
		if err := apiClient.Get("/files", nil, &resp); err != nil {
			return fmt.Errorf("listing files: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data.Files)
			return nil
		}

		var me api.Response[api.UserResponse]
		if err := apiClient.Get("/auth/me", nil, &me); err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}
		output.FileTable(cmd.OutOrStdout(), resp.Data.Files, me.Data.User.ID)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <file-id>",
	Short: "Show file details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.FileResponse]
		if err := apiClient.Get("/files/"+url.PathEscape(args[0]), linkParams(), &resp); err != nil {
			return fmt.Errorf("fetching file info: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data.File)
			return nil
		}
		output.FileDetail(cmd.OutOrStdout(), resp.Data.File)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>...",
	Short: "Upload one or more files in a single batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		for _, p := range args {
			info, err := os.Stat(p)
			if err != nil {
				return fmt.Errorf("cannot access %s: %w", p, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", p)
			}
		}

		var resp api.Response[api.FilesResponse]
		if err := apiClient.Upload("/files", "files", args, &resp); err != nil {
			return fmt.Errorf("uploading: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data.Files)
			return nil
		}
		for _, f := range resp.Data.Files {
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) -> %s\n", f.OriginalName, output.FormatSize(f.Size), f.ID)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file you own, that was shared with you, or that you hold a link for",
	Long: `Download a file to the current directory, or to the path given with -o.

  fileshare download 550e8400-...                   Download by file ID
  fileshare download 550e8400-... --link TOKEN      Download through a share link
  fileshare download 550e8400-... --raw-url         Print a short-lived direct URL instead`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		fileID := url.PathEscape(args[0])

		if flagRawURL {
			var resp api.Response[api.RawURL]
			if err := apiClient.Get("/files/"+fileID+"/raw-url", linkParams(), &resp); err != nil {
				return fmt.Errorf("getting raw url: %w", err)
			}
			if flagJSON {
				output.JSON(cmd.OutOrStdout(), resp.Data)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Data.URL)
			return nil
		}

		dest := "."
		if flagOutput != "" {
			dest = flagOutput
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		}

		written, err := apiClient.DownloadToFile("/files/"+fileID+"/download", linkParams(), dest)
		if err != nil {
			return fmt.Errorf("downloading: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", written)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file-id>",
	Short: "Delete a file you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		if err := apiClient.Delete("/files/"+url.PathEscape(args[0]), nil); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&flagLink, "link", "", "Share link token")
	downloadCmd.Flags().StringVar(&flagLink, "link", "", "Share link token")
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path")
	downloadCmd.Flags().BoolVar(&flagRawURL, "raw-url", false, "Print a signed direct URL instead of downloading")
	rootCmd.AddCommand(lsCmd, infoCmd, uploadCmd, downloadCmd, rmCmd)
}

func linkParams() url.Values {
	if flagLink == "" {
		return nil
	}
	return url.Values{"link": {flagLink}}
}
