package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxapi-go/boxapi/internal/box"
	"github.com/boxapi-go/boxapi/internal/config"
	"github.com/boxapi-go/boxapi/internal/tokenfile"
)

// Token state constants for status reporting.
const (
	tokenStateMissing  = "missing"
	tokenStateMismatch = "other api key"
	tokenStateSaved    = "saved"
	tokenStateValid    = "valid"
	tokenStateRejected = "rejected"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured API key and saved token state",
		Long: `Display the effective API key, token file and whether a token is saved.

With --check the token is verified against the API by reading the root folder.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}

	cmd.Flags().Bool("check", false, "verify the saved token with an API call")

	return cmd
}

// statusOutput is the JSON schema for `status --json`.
type statusOutput struct {
	APIKey     string `json:"api_key"`
	TokenFile  string `json:"token_file"`
	TokenState string `json:"token_state"`
	IssuedAt   string `json:"issued_at,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	out := statusOutput{
		APIKey:    config.MaskKey(cc.Cfg.APIKey),
		TokenFile: cc.Cfg.TokenFile,
	}

	tf, err := tokenfile.LoadFor(cc.Cfg.TokenFile, cc.Cfg.APIKey)

	switch {
	case errors.Is(err, tokenfile.ErrKeyMismatch):
		out.TokenState = tokenStateMismatch
	case err != nil:
		return err
	case tf == nil:
		out.TokenState = tokenStateMissing
	default:
		out.TokenState = tokenStateSaved
		out.IssuedAt = tf.Meta["issued_at"]
	}

	if check, _ := cmd.Flags().GetBool("check"); check && out.TokenState == tokenStateSaved {
		out.TokenState = checkToken(cmd, cc, tf.AuthToken())
	}

	if cc.Flags.JSON {
		return printJSON(cc.Out, out)
	}

	apiKey := out.APIKey
	if apiKey == "" {
		apiKey = "(not set)"
	}

	fmt.Fprintf(cc.Out, "API key:    %s\n", apiKey)
	fmt.Fprintf(cc.Out, "Token file: %s\n", out.TokenFile)
	fmt.Fprintf(cc.Out, "Token:      %s\n", out.TokenState)

	if out.IssuedAt != "" {
		fmt.Fprintf(cc.Out, "Issued at:  %s\n", out.IssuedAt)
	}

	return nil
}

// checkToken reads the root folder to see whether the API accepts the token.
func checkToken(cmd *cobra.Command, cc *CLIContext, token string) string {
	_, err := cc.newSession(token).FolderInfo(cmd.Context(), box.RootFolder)
	if err == nil {
		return tokenStateValid
	}

	cc.Logger.Debug("token check failed", "error", err)

	if errors.Is(err, box.ErrUnauthorized) {
		return tokenStateRejected
	}

	return fmt.Sprintf("unknown (%v)", err)
}
