package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/multitask-helper/internal/config"
	"github.com/kirillkom/multitask-helper/internal/core/ports"
	"github.com/kirillkom/multitask-helper/internal/core/usecase"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/clipboard"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/queue/nats"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/resilience"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/targets/static"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/targets/wmctrl"
	"github.com/kirillkom/multitask-helper/internal/observability/metrics"
)

// CompletionOperation names the breaker guarding completion queries.
const CompletionOperation = "ollama.generate"

type App struct {
	Config config.Config

	Metrics   *metrics.SuggestionMetrics
	Executor  *resilience.Executor
	Targets   ports.TargetDirectory
	Clipboard ports.ClipboardReader
	Arbiter   *usecase.Arbiter
	Watcher   *usecase.ClipboardWatcher
	Publisher *nats.Publisher

	// ReloadTargets watches the static targets file; nil for other sources.
	ReloadTargets func(context.Context) error

	closeFn func()
}

type Options struct {
	// Clipboard overrides the system clipboard reader.
	Clipboard ports.ClipboardReader
	// Targets overrides the configured target directory.
	Targets ports.TargetDirectory
	// Completer overrides the Ollama completer when the model tier is enabled.
	Completer ports.TextCompleter
	// SkipPublisher leaves NATS unconnected even when NATS_URL is set.
	SkipPublisher bool
}

func New(cfg config.Config, opts Options) (*App, error) {
	service := "multitask-helper"
	appMetrics := metrics.NewSuggestionMetrics(service)

	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	resilienceCfg.BreakerEnabled = cfg.BreakerEnabled
	resilienceCfg.OnStateChange = appMetrics.ObserveBreakerState
	executor := resilience.NewExecutor(resilienceCfg)

	app := &App{
		Config:   cfg,
		Metrics:  appMetrics,
		Executor: executor,
	}

	targets, err := app.buildTargets(opts)
	if err != nil {
		return nil, err
	}
	app.Targets = targets

	classifier := usecase.NewContentClassifier()
	ranker := usecase.NewCandidateRanker()

	var completer ports.TextCompleter
	if cfg.ModelEnabled {
		completer = opts.Completer
		if completer == nil {
			completer = ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, ollama.Options{
				Timeout:            cfg.OllamaTimeout(),
				ResilienceExecutor: executor,
			})
		}
		completer = appMetrics.InstrumentCompleter(completer)
	}

	app.Arbiter = usecase.NewArbiter(
		usecase.NewModelSuggester(completer, classifier),
		usecase.NewRuleSuggester(classifier, ranker),
		appMetrics,
	)

	clipboardReader := opts.Clipboard
	if clipboardReader == nil {
		clipboardReader = clipboard.NewSystemReader()
	}
	app.Clipboard = clipboardReader
	app.Watcher = usecase.NewClipboardWatcher(clipboardReader, targets, app.Arbiter, usecase.WatcherOptions{
		PollInterval:   cfg.ClipboardPollInterval(),
		ExcludedTitles: cfg.ExcludedTitles,
	})

	if cfg.NATSURL != "" && !opts.SkipPublisher {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.Publisher = publisher
		app.Watcher.AddListener(nats.NewWatchPublisher(appMetrics.InstrumentPublisher(publisher), 0))
	}

	slog.Info("bootstrap_ready",
		"model_enabled", cfg.ModelEnabled,
		"targets_source", cfg.TargetsSource,
		"publisher", app.Publisher != nil,
	)

	app.closeFn = func() {
		if app.Publisher != nil {
			app.Publisher.Close()
		}
	}
	return app, nil
}

func (a *App) buildTargets(opts Options) (ports.TargetDirectory, error) {
	if opts.Targets != nil {
		return opts.Targets, nil
	}
	switch a.Config.TargetsSource {
	case config.TargetsSourceStatic:
		directory, err := static.Load(a.Config.TargetsFile)
		if err != nil {
			return nil, fmt.Errorf("load static targets: %w", err)
		}
		if a.Config.TargetsReload {
			a.ReloadTargets = directory.Watch
		}
		return directory, nil
	case config.TargetsSourceWMCtrl, "":
		return wmctrl.New(), nil
	default:
		return nil, fmt.Errorf("unknown targets source %q", a.Config.TargetsSource)
	}
}

// CompletionState reports the completion breaker state for status surfaces.
func (a *App) CompletionState() string {
	if !a.Config.ModelEnabled {
		return "disabled"
	}
	return a.Executor.State(CompletionOperation)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
