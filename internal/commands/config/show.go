package config

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/contextclue/internal/commands"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, load commands.Loader) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, container, err := load(ctx, cmd)
			if err != nil {
				return err
			}
			cfg := container.Config()
			w := cmd.Root().Writer

			ui.PrintSectionBanner(w, "⚙️", t.GetMessage("config_show_header", 0, nil))
			if cfg.PathFile != "" {
				ui.PrintInfo(w, t.GetMessage("config_show_file", 0, map[string]interface{}{
					"Path": cfg.PathFile,
				}))
			} else {
				ui.PrintInfo(w, t.GetMessage("config_show_no_file", 0, nil))
			}
			_, _ = fmt.Fprintln(w)

			masked := cfg.Masked()
			out, err := yaml.Marshal(&masked)
			if err != nil {
				return fmt.Errorf("error encoding configuration: %w", err)
			}
			_, _ = w.Write(out)
			return nil
		},
	}
}
