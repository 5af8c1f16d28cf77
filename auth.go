package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/boxapi-go/boxapi/internal/tokenfile"
)

// openBrowser is replaced in tests.
var openBrowser = browser.OpenURL

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize this application with a Box account",
		Long: `Request an authorization ticket, open the Box approval page in a browser,
and save the resulting auth token once access has been granted.

Use --no-browser on headless machines to print the URL only.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().Bool("no-browser", false, "print the authorization URL instead of opening a browser")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved auth token",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	if err := cc.requireAPIKey(); err != nil {
		return err
	}

	session := cc.newSession("")

	pending, err := session.BeginAuthorization(ctx)
	if err != nil {
		return fmt.Errorf("requesting authorization ticket: %w", err)
	}

	cc.Logger.Debug("authorization ticket issued", slog.String("ticket", pending.Ticket))

	// The approval prompt must stay visible under --quiet.
	fmt.Fprintf(cc.Err, "To authorize, visit: %s\n", pending.URL)

	noBrowser, _ := cmd.Flags().GetBool("no-browser")
	if !noBrowser {
		if err := openBrowser(pending.URL); err != nil {
			cc.Logger.Warn("could not open browser", slog.String("error", err.Error()))
		}
	}

	fmt.Fprint(cc.Err, "Press Enter after granting access... ")

	if err := waitForEnter(cmd.InOrStdin()); err != nil {
		return fmt.Errorf("waiting for confirmation: %w", err)
	}

	if err := session.Authorize(ctx, pending.Ticket); err != nil {
		return fmt.Errorf("exchanging ticket: %w", err)
	}

	if err := tokenfile.Save(cc.Cfg.TokenFile, tokenfile.New(cc.Cfg.APIKey, session.AuthToken())); err != nil {
		return err
	}

	cc.Logger.Info("login successful", slog.String("token_file", cc.Cfg.TokenFile))
	cc.Statusf("Login successful.\n")

	return nil
}

// waitForEnter blocks until a line (or EOF) is read from r.
func waitForEnter(r io.Reader) error {
	_, err := bufio.NewReader(r).ReadString('\n')
	if err == io.EOF {
		return nil
	}

	return err
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	removed, err := tokenfile.Remove(cc.Cfg.TokenFile)
	if err != nil {
		return err
	}

	if !removed {
		cc.Statusf("Not logged in.\n")
		return nil
	}

	cc.Logger.Info("logout successful", slog.String("token_file", cc.Cfg.TokenFile))
	cc.Statusf("Logged out.\n")

	return nil
}
