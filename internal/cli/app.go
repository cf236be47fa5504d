package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/bpmngen"
	"github.com/aretw0/bpmngen/internal/logging"
	"github.com/aretw0/bpmngen/pkg/adapters/document"
	"github.com/aretw0/bpmngen/pkg/adapters/file"
	"github.com/aretw0/bpmngen/pkg/adapters/memory"
	"github.com/aretw0/bpmngen/pkg/adapters/redis"
	"github.com/aretw0/bpmngen/pkg/adapters/terminal"
	"github.com/aretw0/bpmngen/pkg/observability"
	"github.com/aretw0/bpmngen/pkg/ports"
	"github.com/aretw0/bpmngen/pkg/sandbox"
	"github.com/prometheus/client_golang/prometheus"
)

// Environment variables read as flag defaults.
const (
	EnvCompilerURL = "BPMNGEN_COMPILER_URL"
	EnvStore       = "BPMNGEN_STORE"
	EnvRedisAddr   = "BPMNGEN_REDIS_ADDR"
)

// Preview targets.
const (
	PreviewHTML     = "html"
	PreviewTerminal = "terminal"
	PreviewNone     = "none"
)

// Options carries the CLI configuration shared by all commands.
type Options struct {
	CompilerURL     string
	Timeout         time.Duration
	Store           string // "file", "redis" or "memory"
	StoreDir        string
	RedisAddr       string
	LogLevel        string
	MetricsTextfile string

	Preview    string
	PreviewOut string
}

// App is a Studio plus the resources the CLI must release.
type App struct {
	Studio *bpmngen.Studio
	Store  ports.DiagramStore
	Logger *slog.Logger

	registry *prometheus.Registry
	opts     Options
	closers  []func() error
}

// NewLogger builds the stderr logger for the configured level.
func NewLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// OpenStore creates the configured diagram store.
func OpenStore(opts Options) (ports.DiagramStore, func() error, error) {
	nop := func() error { return nil }
	switch opts.Store {
	case "", "file":
		return file.NewStore(opts.StoreDir), nop, nil
	case "memory":
		return memory.NewStore(), nop, nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, nil, fmt.Errorf("redis store requires an address (--redis-addr or %s)", EnvRedisAddr)
		}
		s := redis.New(opts.RedisAddr, "", 0)
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q (want file, redis or memory)", opts.Store)
}

// RealmFactory returns the render target for opts.Preview, or nil for none.
func RealmFactory(opts Options, out io.Writer) (sandbox.RealmFactory, error) {
	switch opts.Preview {
	case PreviewNone:
		return nil, nil
	case "", PreviewHTML:
		path := opts.PreviewOut
		if path == "" {
			path = "preview.html"
		}
		return document.Factory(nil, document.WithOutputFile(path)), nil
	case PreviewTerminal:
		return terminal.Factory(out), nil
	}
	return nil, fmt.Errorf("unknown preview %q (want html, terminal or none)", opts.Preview)
}

// NewApp wires a Studio from opts. Preview output goes to out.
func NewApp(opts Options, logger *slog.Logger, out io.Writer) (*App, error) {
	store, closeStore, err := OpenStore(opts)
	if err != nil {
		return nil, err
	}
	app := &App{
		Store:    store,
		Logger:   logger,
		registry: prometheus.NewRegistry(),
		opts:     opts,
		closers:  []func() error{closeStore},
	}

	metrics, err := observability.NewMetrics(app.registry)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	studioOpts := []bpmngen.Option{
		bpmngen.WithStore(store),
		bpmngen.WithLogger(logger),
		bpmngen.WithLifecycleHooks(observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))),
	}
	if opts.Timeout > 0 {
		studioOpts = append(studioOpts, bpmngen.WithTimeout(opts.Timeout))
	}

	realms, err := RealmFactory(opts, out)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	if realms != nil {
		studioOpts = append(studioOpts, bpmngen.WithRealmFactory(realms))
	}

	studio, err := bpmngen.New(opts.CompilerURL, studioOpts...)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	app.Studio = studio
	app.closers = append([]func() error{studio.Close}, app.closers...)
	return app, nil
}

// Close releases every resource and writes the metrics textfile if configured.
func (a *App) Close() error {
	var errs []error
	if a.opts.MetricsTextfile != "" {
		if err := observability.WriteTextfile(a.opts.MetricsTextfile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
