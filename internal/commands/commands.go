// Package commands holds the CLI command registry and the flags shared by
// every subcommand.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/di"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/urfave/cli/v3"
)

const (
	FlagConfig    = "config"
	FlagDebug     = "debug"
	FlagVerbose   = "verbose"
	FlagLogFormat = "log-format"
)

// Loader prepares logging and the dependency container for a command run.
type Loader func(ctx context.Context, cmd *cli.Command) (context.Context, *di.Container, error)

type CommandFactory interface {
	CreateCommand(t *i18n.Translations, load Loader) *cli.Command
}

// GlobalFlags are declared on the root command and inherited by subcommands.
func GlobalFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagConfig,
			Aliases: []string{"c"},
			Usage:   t.GetMessage("flag_config_usage", 0, nil),
			Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  FlagDebug,
			Usage: t.GetMessage("flag_debug_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:    FlagVerbose,
			Aliases: []string{"v"},
			Usage:   t.GetMessage("flag_verbose_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Value:   string(logger.FormatText),
			Usage:   t.GetMessage("flag_log_format_usage", 0, nil),
			Sources: cli.EnvVars(config.EnvPrefix + "_LOG_FORMAT"),
		},
	}
}

// LoadContainer is the production Loader: it installs the logger selected by
// the global flags and loads the configuration file they point to.
func LoadContainer(ctx context.Context, cmd *cli.Command) (context.Context, *di.Container, error) {
	format, err := logger.ParseFormat(cmd.String(FlagLogFormat))
	if err != nil {
		return ctx, nil, err
	}
	logger.Initialize(cmd.Bool(FlagDebug), cmd.Bool(FlagVerbose), format)
	ctx = logger.WithLogger(ctx, slog.Default())

	cfg, err := config.Load(cmd.String(FlagConfig))
	if err != nil {
		return ctx, nil, err
	}

	logger.Debug(ctx, "configuration loaded",
		"path", cfg.PathFile,
		"provider", cfg.Provider.Name,
		"credentials", cfg.HasCredentials())

	return ctx, di.NewContainer(cfg), nil
}

// StaticLoader always hands out c. Used by tests and embedders.
func StaticLoader(c *di.Container) Loader {
	return func(ctx context.Context, _ *cli.Command) (context.Context, *di.Container, error) {
		return ctx, c, nil
	}
}

// Registry keeps command factories in registration order.
type Registry struct {
	factories map[string]CommandFactory
	order     []string
	load      Loader
	t         *i18n.Translations
}

func NewRegistry(t *i18n.Translations, load Loader) *Registry {
	return &Registry{
		factories: make(map[string]CommandFactory),
		load:      load,
		t:         t,
	}
}

func (r *Registry) Register(name string, factory CommandFactory) error {
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) CreateCommands() []*cli.Command {
	commands := make([]*cli.Command, 0, len(r.order))
	for _, name := range r.order {
		commands = append(commands, r.factories[name].CreateCommand(r.t, r.load))
	}
	return commands
}
