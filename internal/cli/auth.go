package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fileshare/fileshare/internal/cli/api"
	"github.com/fileshare/fileshare/internal/cli/config"
	"github.com/fileshare/fileshare/internal/cli/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagEmail string
	flagName  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := promptValue(cmd, in, "Email", flagEmail)
		if err != nil {
			return err
		}
		name, err := promptValue(cmd, in, "Name", flagName)
		if err != nil {
			return err
		}
		password, err := promptPassword(cmd, in, "Password")
		if err != nil {
			return err
		}

		var resp api.Response[api.Session]
		err = apiClient.Post("/auth/register", map[string]string{
			"email":    email,
			"password": password,
			"name":     name,
		}, &resp)
		if err != nil {
			return fmt.Errorf("registering: %w", err)
		}
		return saveSession(cmd, resp.Data, "Registered")
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := promptValue(cmd, in, "Email", flagEmail)
		if err != nil {
			return err
		}
		password, err := promptPassword(cmd, in, "Password")
		if err != nil {
			return err
		}

		var resp api.Response[api.Session]
		if err := apiClient.Post("/auth/login", map[string]string{
			"email":    email,
			"password": password,
		}, &resp); err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Status == 401 {
				return fmt.Errorf("invalid email or password")
			}
			return fmt.Errorf("logging in: %w", err)
		}
		return saveSession(cmd, resp.Data, "Logged in")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// A custom server URL outlives the session.
		if cfg.ServerURL == config.DefaultURL {
			if err := config.Clear(); err != nil {
				return fmt.Errorf("clearing config: %w", err)
			}
		} else {
			cfg.Token = ""
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp api.Response[api.UserResponse]
		if err := apiClient.Get("/auth/me", nil, &resp); err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Data.User)
			return nil
		}
		output.UserInfo(cmd.OutOrStdout(), resp.Data.User)
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())
		current, err := promptPassword(cmd, in, "Current password")
		if err != nil {
			return err
		}
		next, err := promptPassword(cmd, in, "New password")
		if err != nil {
			return err
		}
		if err := apiClient.Put("/auth/password", map[string]string{
			"currentPassword": current,
			"newPassword":     next,
		}, nil); err != nil {
			return fmt.Errorf("changing password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&flagName, "name", "", "Display name")
	loginCmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, passwdCmd)
}

func saveSession(cmd *cobra.Command, session api.Session, verb string) error {
	cfg.Token = session.Token
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s (%s)\n", verb, session.User.Name, session.User.Email)
	return nil
}

func promptValue(cmd *cobra.Command, in *bufio.Reader, label, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	return readLine(in)
}

// promptPassword reads without echo when stdin is a terminal and falls back
// to a plain line read for piped input.
func promptPassword(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
