package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind/internal/config"
	verrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/internal/source"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errReported marks errors that were already printed.
var errReported = errors.New("reported")

// app is the state shared by the commands once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *source.Loader
	stderr io.Writer
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			verrors.Fprint(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "vbind",
		Short: "Bind data models to HTML templates",
		Long: `vbind compiles HTML templates against a data model.

Templates use v-text, v-html, v-model, v-on:/@ and v-bind: directives
and {{ path }} interpolation. Templates and data are read from files or
s3://bucket/key URLs, configured in vbind.yaml or with flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		renderCmd(a),
		checkCmd(a),
		serveCmd(a),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and builds the logger and source loader.
func (a *app) load(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(a.stderr)
	slog.SetDefault(a.logger)
	a.loader = source.NewLoader(
		source.WithS3(source.NewS3Client(cfg.S3)),
		source.WithLogger(a.logger.With("component", "source")),
	)
	a.logger.Debug("config loaded", "file", cfg.Path(), "template", cfg.Template, "data", cfg.Data)
	return nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
