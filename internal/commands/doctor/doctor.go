package doctor

import (
	"context"
	"fmt"
	"io"

	"github.com/thomas-vilte/contextclue/internal/commands"
	"github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/di"
	"github.com/thomas-vilte/contextclue/internal/diagnosis"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/urfave/cli/v3"
)

type checkStatus int

const (
	checkStatusOK checkStatus = iota
	checkStatusWarning
	checkStatusError
)

type checkResult struct {
	status  checkStatus
	message string
}

type healthCheck func(context.Context, *i18n.Translations, *di.Container) checkResult

type DoctorCommandFactory struct{}

func NewDoctorCommandFactory() *DoctorCommandFactory {
	return &DoctorCommandFactory{}
}

func (d *DoctorCommandFactory) CreateCommand(t *i18n.Translations, load commands.Loader) *cli.Command {
	return &cli.Command{
		Name:    "doctor",
		Aliases: []string{"dr"},
		Usage:   t.GetMessage("doctor_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, container, err := load(ctx, cmd)
			if err != nil {
				return err
			}
			d.runHealthCheck(ctx, cmd.Root().Writer, t, container)
			return nil
		},
	}
}

// runHealthCheck prints every check and returns the number of errors found.
// Missing credentials are a warning: the service still answers with fallbacks.
func (d *DoctorCommandFactory) runHealthCheck(ctx context.Context, w io.Writer, t *i18n.Translations, c *di.Container) int {
	ui.PrintSectionBanner(w, "🩺", t.GetMessage("doctor_header", 0, nil))
	ui.PrintInfo(w, t.GetMessage("doctor_provider", 0, map[string]interface{}{
		"Provider": c.Config().Provider.Name,
	}))

	checks := []healthCheck{
		checkProvider,
		checkCatalog,
		checkHistory,
	}

	problems := 0
	for _, check := range checks {
		result := check(ctx, t, c)
		switch result.status {
		case checkStatusOK:
			ui.PrintSuccess(w, result.message)
		case checkStatusWarning:
			ui.PrintWarning(w, result.message)
		case checkStatusError:
			ui.PrintError(w, result.message)
			problems++
		}
	}

	_, _ = fmt.Fprintln(w)
	if problems == 0 {
		ui.PrintSuccess(w, t.GetMessage("doctor_summary_ok", 0, nil))
	} else {
		ui.PrintError(w, t.GetMessage("doctor_summary_problems", problems, map[string]interface{}{
			"Count": problems,
		}))
	}
	return problems
}

func checkProvider(ctx context.Context, t *i18n.Translations, c *di.Container) checkResult {
	cfg := c.Config()

	if cfg.Provider.Name == string(config.AINone) {
		return checkResult{checkStatusWarning, t.GetMessage("doctor_provider_disabled", 0, nil)}
	}
	if !cfg.HasCredentials() {
		return checkResult{checkStatusWarning, t.GetMessage("doctor_credentials_missing", 0, nil)}
	}

	provider, err := c.GetProvider(ctx)
	if err != nil {
		return checkResult{checkStatusError, t.GetMessage("doctor_provider_error", 0, map[string]interface{}{
			"Error": err.Error(),
		})}
	}
	if provider == nil {
		return checkResult{checkStatusWarning, t.GetMessage("doctor_credentials_missing", 0, nil)}
	}
	return checkResult{checkStatusOK, t.GetMessage("doctor_provider_ok", 0, map[string]interface{}{
		"Model": provider.GetModelName(),
	})}
}

func checkCatalog(_ context.Context, t *i18n.Translations, c *di.Container) checkResult {
	src, err := c.GetFallback()
	if err != nil {
		return checkResult{checkStatusError, t.GetMessage("doctor_catalog_error", 0, map[string]interface{}{
			"Error": err.Error(),
		})}
	}

	count := 1
	if catalog, ok := src.(*diagnosis.Catalog); ok {
		count = len(catalog.Entries())
	}
	return checkResult{checkStatusOK, t.GetMessage("doctor_catalog_ok", 0, map[string]interface{}{
		"Count": count,
	})}
}

func checkHistory(_ context.Context, t *i18n.Translations, c *di.Container) checkResult {
	manager, err := c.GetUsageManager()
	if err != nil {
		return checkResult{checkStatusError, t.GetMessage("doctor_history_error", 0, map[string]interface{}{
			"Error": err.Error(),
		})}
	}
	if manager == nil {
		return checkResult{checkStatusWarning, t.GetMessage("stats_no_history", 0, nil)}
	}
	if _, err := manager.GetHistory(); err != nil {
		return checkResult{checkStatusError, t.GetMessage("doctor_history_error", 0, map[string]interface{}{
			"Error": err.Error(),
		})}
	}
	return checkResult{checkStatusOK, t.GetMessage("doctor_history_ok", 0, map[string]interface{}{
		"Path": manager.HistoryPath(),
	})}
}
