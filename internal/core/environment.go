// Package core wires the registries into an Environment and manages the
// process-wide one.
package core

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/coder"
	"github.com/mocukie/imagecore/internal/coders"
	"github.com/mocukie/imagecore/internal/config"
	"github.com/mocukie/imagecore/internal/filter"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/internal/magic"
	"github.com/mocukie/imagecore/internal/metrics"
	"github.com/mocukie/imagecore/internal/module"
	"github.com/mocukie/imagecore/internal/policy"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	TopicGenesis  eventbus.Topic = "core.genesis"
	TopicTerminus eventbus.Topic = "core.terminus"
)

type Options struct {
	// ClientPath is the executable path; its directory is searched for
	// configuration files.
	ClientPath string
	Logger     hclog.Logger
	Bus        *eventbus.Bus
	Registerer prometheus.Registerer
	// Modules replaces the compiled-in module table when not nil.
	Modules []module.Entry
	// Filters replaces the compiled-in filters when not nil.
	Filters []filter.Entry
}

// Environment is one set of registries. Queries populate the registries
// lazily; Close tears them down.
type Environment struct {
	Log     hclog.Logger
	Bus     *eventbus.Bus
	Config  *config.Config
	Metrics *metrics.Metrics
	Policy  *policy.Set
	Coders  *coder.Registry
	Formats *format.Registry
	Modules *module.Table
	Magic   *magic.Engine
	Filters *filter.Set
}

// NewEnvironment builds the registries in dependency order. Only bad
// configuration fails; registry population errors surface through each
// registry's Err.
func NewEnvironment(opts Options) (*Environment, error) {
	log := opts.Logger
	if log == nil {
		log = logging.New("imagecore", logging.LevelFromEnv(), nil)
	}
	env := &Environment{Log: log, Bus: opts.Bus}

	cfg, err := config.Load(config.SearchPaths(opts.ClientPath))
	if err != nil {
		return nil, errors.WithMessage(err, "load configuration")
	}
	env.Config = cfg
	log.Debug("configuration loaded", "search", cfg.SearchPaths, "modules", cfg.ModulePaths)

	if env.Policy, err = policy.FromConfig(cfg.Policies); err != nil {
		return nil, err
	}
	env.Metrics = metrics.New(opts.Registerer)

	env.Coders = coder.NewRegistry(coder.Options{Logger: log.Named("coder"), Files: cfg.Coders})
	env.Formats = format.NewRegistry(format.Options{
		Logger:  log.Named("format"),
		Bus:     opts.Bus,
		Metrics: env.Metrics,
	})

	entries := opts.Modules
	if entries == nil {
		entries = coders.Modules()
	}
	var loader *module.Loader
	if module.Supported() && len(cfg.ModulePaths) > 0 {
		loader = module.NewLoader(cfg.ModulePaths, log.Named("loader"))
	}
	env.Modules = module.NewTable(entries, module.Options{
		Formats: env.Formats,
		Coders:  env.Coders,
		Policy:  env.Policy,
		Loader:  loader,
		Logger:  log.Named("module"),
		Bus:     opts.Bus,
		Metrics: env.Metrics,
	})
	env.Formats.SetModules(env.Modules)

	env.Magic = magic.NewEngine(magic.Options{
		Logger:  log.Named("magic"),
		Metrics: env.Metrics,
		Files:   cfg.Magic,
	})

	filters := opts.Filters
	if filters == nil {
		filters = filter.Builtin()
	}
	env.Filters = filter.NewSet(filters, filter.Options{Policy: env.Policy, Logger: log.Named("filter")})
	return env, nil
}

// Close tears the registries down in reverse order of construction. The
// Environment may be queried again afterwards and repopulates itself.
func (env *Environment) Close() {
	env.Magic.Destroy()
	env.Modules.UnregisterAll()
	env.Formats.Destroy()
	env.Coders.Destroy()
}
