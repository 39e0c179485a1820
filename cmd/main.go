package main

import (
	"context"
	"log"
	"os"

	"github.com/thomas-vilte/contextclue/internal/commands"
	"github.com/thomas-vilte/contextclue/internal/commands/analyze"
	"github.com/thomas-vilte/contextclue/internal/commands/config"
	"github.com/thomas-vilte/contextclue/internal/commands/doctor"
	"github.com/thomas-vilte/contextclue/internal/commands/serve"
	"github.com/thomas-vilte/contextclue/internal/commands/stats"
	cfg "github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/thomas-vilte/contextclue/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, translations, err := initializeApp()
	if err != nil {
		log.Fatalf("error starting contextclue: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

// initializeApp picks the help language from the configuration found without
// flags; the --config file is loaded again when a command runs.
func initializeApp() (*cli.Command, *i18n.Translations, error) {
	lang := cfg.LangEN
	if c, err := cfg.Load(os.Getenv(cfg.EnvPrefix + "_CONFIG")); err == nil {
		lang = c.Language
	}

	translations, err := i18n.NewTranslations(lang)
	if err != nil {
		return nil, nil, err
	}

	registry := commands.NewRegistry(translations, commands.LoadContainer)
	factories := []struct {
		name    string
		factory commands.CommandFactory
	}{
		{"analyze", analyze.NewAnalyzeCommandFactory()},
		{"serve", serve.NewServeCommandFactory()},
		{"stats", stats.NewStatsCommandFactory()},
		{"config", config.NewConfigCommandFactory()},
		{"doctor", doctor.NewDoctorCommandFactory()},
	}
	for _, f := range factories {
		if err := registry.Register(f.name, f.factory); err != nil {
			return nil, nil, err
		}
	}

	return &cli.Command{
		Name:                  "contextclue",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.FullVersion(),
		Flags:                 commands.GlobalFlags(translations),
		Commands:              registry.CreateCommands(),
		EnableShellCompletion: true,
	}, translations, nil
}
