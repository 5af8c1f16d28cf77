package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/boxapi-go/boxapi/internal/box"
	"github.com/boxapi-go/boxapi/internal/config"
	"github.com/boxapi-go/boxapi/internal/tokenfile"
)

// version is set at build time via ldflags.
var version = "dev"

// errNotLoggedIn is returned by commands that need a saved token.
var errNotLoggedIn = errors.New("not logged in, run 'boxapi login' first")

// errNoAPIKey is returned when no layer of configuration supplies a key.
var errNoAPIKey = errors.New("no API key configured: set api_key in the config file, BOXAPI_API_KEY, or --api-key")

// CLIFlags holds the persistent flag values shared by all commands.
type CLIFlags struct {
	ConfigPath string
	APIKey     string
	JSON       bool
	Verbose    bool
	Quiet      bool
}

// CLIContext carries the resolved configuration and shared resources into
// each command through cmd.Context().
type CLIContext struct {
	Flags  CLIFlags
	Cfg    *config.Config
	Logger *slog.Logger
	Fs     afero.Fs
	HTTP   *http.Client
	Out    io.Writer
	Err    io.Writer
}

type cliContextKey struct{}

// cliContextFrom returns the CLIContext stored in ctx, or nil.
func cliContextFrom(ctx context.Context) *CLIContext {
	cc, _ := ctx.Value(cliContextKey{}).(*CLIContext)
	return cc
}

// mustCLIContext returns the CLIContext stored in ctx and panics when the
// root pre-run did not install one.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("CLIContext missing from command context")
	}

	return cc
}

// newRootCmd builds the root command with all subcommands registered.
func newRootCmd() *cobra.Command {
	var flags CLIFlags

	cmd := &cobra.Command{
		Use:     "boxapi",
		Short:   "Box file storage CLI",
		Long:    "A command-line client for the Box file storage API: folders, uploads, downloads, versions and deletion.",
		Version: version,
		// Errors are printed by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := newCLIContext(cmd, flags)
			if err != nil {
				return err
			}

			ctx := shutdownContext(cmd.Context(), cc.Logger, cmd.CommandPath())
			cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flags.APIKey, "api-key", "", "Box application API key")
	cmd.PersistentFlags().BoolVar(&flags.JSON, "json", false, "output raw API responses as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newFolderCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newStatCmd())
	cmd.AddCommand(newPutVersionCmd())
	cmd.AddCommand(newVersionsCmd())
	cmd.AddCommand(newRmCmd())

	return cmd
}

// newCLIContext resolves configuration from defaults, file, environment and
// flags, then builds the logger and shared clients.
func newCLIContext(cmd *cobra.Command, flags CLIFlags) (*CLIContext, error) {
	cfg, err := config.Resolve(config.ReadEnvOverrides(), config.CLIOverrides{
		ConfigPath: flags.ConfigPath,
		APIKey:     flags.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	errOut := cmd.ErrOrStderr()

	return &CLIContext{
		Flags:  flags,
		Cfg:    cfg,
		Logger: buildLogger(cfg, flags, errOut),
		Fs:     afero.NewOsFs(),
		HTTP:   &http.Client{},
		Out:    cmd.OutOrStdout(),
		Err:    errOut,
	}, nil
}

// buildLogger creates an slog.Logger from the config file level and format.
// --verbose and --quiet override the configured level.
func buildLogger(cfg *config.Config, flags CLIFlags, w io.Writer) *slog.Logger {
	level := slog.LevelInfo

	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flags.Verbose {
		level = slog.LevelDebug
	}

	if flags.Quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if useJSONLogs(cfg.LogFormat, w) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// useJSONLogs resolves the "auto" format: text for terminals, JSON otherwise.
func useJSONLogs(format string, w io.Writer) bool {
	switch format {
	case "json":
		return true
	case "text":
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return true
	}

	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// requireAPIKey fails when no layer of configuration set api_key.
func (cc *CLIContext) requireAPIKey() error {
	if cc.Cfg.APIKey == "" {
		return errNoAPIKey
	}

	return nil
}

// newSession builds a Box session from the resolved config. An empty token
// yields an unauthorized session, used by login.
func (cc *CLIContext) newSession(authToken string) *box.Session {
	opts := []box.Option{
		box.WithHTTPClient(cc.HTTP),
		box.WithBaseURLs(cc.Cfg.APIURL, cc.Cfg.UploadURL, cc.Cfg.AuthURL),
		box.WithUserAgent(cc.Cfg.UserAgent),
		box.WithLogger(cc.Logger),
		box.WithFs(cc.Fs),
	}

	if authToken != "" {
		opts = append(opts, box.WithAuthToken(authToken))
	}

	return box.NewSession(cc.Cfg.APIKey, opts...)
}

// authorizedSession loads the saved token for the configured API key and
// returns a session ready for API calls.
func (cc *CLIContext) authorizedSession() (*box.Session, error) {
	if err := cc.requireAPIKey(); err != nil {
		return nil, err
	}

	tf, err := tokenfile.LoadFor(cc.Cfg.TokenFile, cc.Cfg.APIKey)
	if errors.Is(err, tokenfile.ErrKeyMismatch) {
		return nil, fmt.Errorf("saved token belongs to another API key, run 'boxapi login' again")
	}

	if err != nil {
		return nil, err
	}

	if tf == nil {
		return nil, errNotLoggedIn
	}

	cc.Logger.Debug("loaded auth token", slog.String("path", cc.Cfg.TokenFile))

	return cc.newSession(tf.AuthToken()), nil
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
