package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thomas-vilte/contextclue/internal/commands"
	cfgpkg "github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config_init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("config_init_flag_force", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String(commands.FlagConfig)
			if path == "" {
				p, err := cfgpkg.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			w := cmd.Root().Writer
			written, err := writeDefaultConfig(path, cmd.Bool("force"))
			if err != nil {
				return err
			}
			if !written {
				ui.PrintWarning(w, t.GetMessage("config_init_exists", 0, map[string]interface{}{
					"Path": path,
				}))
				return nil
			}

			ui.PrintSuccess(w, t.GetMessage("config_init_written", 0, map[string]interface{}{
				"Path": path,
			}))
			return nil
		},
	}
}

// writeDefaultConfig writes the default configuration without secrets. It
// reports false when the file exists and force is not set.
func writeDefaultConfig(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("error creating config directory: %w", err)
	}

	defaults := cfgpkg.Defaults()
	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return false, fmt.Errorf("error encoding default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return false, fmt.Errorf("error writing config file: %w", err)
	}
	return true, nil
}
