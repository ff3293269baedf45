package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kirillkom/multitask-helper/internal/bootstrap"
	"github.com/kirillkom/multitask-helper/internal/config"
	"github.com/kirillkom/multitask-helper/internal/observability/logging"
)

// Deps lets tests swap configuration and wiring.
type Deps struct {
	Out    io.Writer
	Config func() config.Config
	Build  func(config.Config) (*bootstrap.App, error)
}

type runner struct {
	deps    Deps
	app     *bootstrap.App
	noColor bool
	verbose bool
}

func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Config == nil {
		deps.Config = config.Load
	}
	if deps.Build == nil {
		deps.Build = func(cfg config.Config) (*bootstrap.App, error) {
			return bootstrap.New(cfg, bootstrap.Options{})
		}
	}
	r := &runner{deps: deps}

	root := &cobra.Command{
		Use:           "helper",
		Short:         "Suggest which window to paste copied text into",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if r.noColor {
				color.NoColor = true
			}
			cfg := r.deps.Config()
			level := cfg.LogLevel
			if r.verbose {
				level = "debug"
			}
			// stdout is reserved for suggestions.
			slog.SetDefault(logging.New(os.Stderr, "multitask-helper", level, "text"))

			app, err := r.deps.Build(cfg)
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if r.app != nil {
				r.app.Close()
			}
		},
	}
	root.SetOut(deps.Out)
	root.PersistentFlags().BoolVar(&r.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		r.suggestCommand(),
		r.targetsCommand(),
		r.watchCommand(),
		r.followCommand(),
	)
	return root
}

var errNoPublisher = errors.New("NATS_URL is not set; follow needs an event stream")
