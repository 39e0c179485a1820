package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/thomas-vilte/contextclue/internal/commands"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/models"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/urfave/cli/v3"
)

const commandName = "analyze"

type AnalyzeCommandFactory struct{}

func NewAnalyzeCommandFactory() *AnalyzeCommandFactory {
	return &AnalyzeCommandFactory{}
}

func (f *AnalyzeCommandFactory) CreateCommand(t *i18n.Translations, load commands.Loader) *cli.Command {
	return &cli.Command{
		Name:      commandName,
		Aliases:   []string{"a"},
		Usage:     t.GetMessage("analyze_usage", 0, nil),
		ArgsUsage: "[code-file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "code",
				Usage: t.GetMessage("analyze_flag_code", 0, nil),
			},
			&cli.StringFlag{
				Name:  "screenshot",
				Usage: t.GetMessage("analyze_flag_screenshot", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: t.GetMessage("analyze_flag_json", 0, nil),
			},
		},
		Action: analyzeAction(t, load),
	}
}

func analyzeAction(t *i18n.Translations, load commands.Loader) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		ctx, container, err := load(ctx, cmd)
		if err != nil {
			return err
		}

		codePath := cmd.String("code")
		if codePath == "" {
			codePath = cmd.Args().First()
		}

		req, err := buildRequest(codePath, cmd.String("screenshot"))
		if err != nil {
			return err
		}

		svc, err := container.GetAnalysisService(ctx, commandName)
		if err != nil {
			return err
		}

		w := cmd.Root().Writer
		asJSON := cmd.Bool("json")

		var analysis *models.Analysis
		run := func() error {
			var runErr error
			analysis, runErr = svc.Analyze(ctx, req)
			return runErr
		}

		if asJSON {
			err = run()
		} else {
			name := req.CodeName
			if name == "" {
				name = "-"
			}
			err = ui.WithSpinner(cmd.Root().ErrWriter, t.GetMessage("analyze_spinner", 0, map[string]interface{}{
				"CodeName": name,
			}), run)
		}
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(w, analysis)
		}
		printAnalysis(w, t, analysis)
		return nil
	}
}

// buildRequest reads the code file; only the base name of the screenshot is used.
func buildRequest(codePath, screenshotPath string) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest

	if screenshotPath != "" {
		req.ScreenshotName = filepath.Base(screenshotPath)
	}

	if codePath == "" {
		return req, nil
	}

	data, err := os.ReadFile(codePath)
	if err != nil {
		return req, errors.ErrCodeFileUnreadable.
			WithError(err).
			WithContext("path", codePath)
	}
	req.CodeName = filepath.Base(codePath)
	req.CodeContent = string(data)
	return req, nil
}

func printJSON(w io.Writer, analysis *models.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		return fmt.Errorf("error encoding analysis: %w", err)
	}
	return nil
}

func printAnalysis(w io.Writer, t *i18n.Translations, analysis *models.Analysis) {
	r := analysis.Result

	ui.PrintSectionBanner(w, ui.ClueEmoji, t.GetMessage("analyze_header", 0, nil))
	ui.PrintKeyValue(w, t.GetMessage("label_location", 0, nil), r.BugLocation)
	ui.PrintKeyValue(w, t.GetMessage("label_confidence", 0, nil), strconv.Itoa(r.Confidence)+"%")
	ui.PrintKeyValue(w, t.GetMessage("label_suggestion", 0, nil), r.Suggestion)
	ui.PrintKeyValue(w, t.GetMessage("label_fix", 0, nil), r.Fix)
	if r.Before != "" {
		ui.PrintBlock(w, t.GetMessage("label_before", 0, nil), r.Before)
	}
	if r.After != "" {
		ui.PrintBlock(w, t.GetMessage("label_after", 0, nil), r.After)
	}

	ui.PrintSeparator(w)
	if analysis.IsLive() {
		ui.PrintKeyValue(w, t.GetMessage("label_source", 0, nil), t.GetMessage("source_live", 0, map[string]interface{}{
			"Provider": analysis.Provider,
			"Model":    analysis.Model,
		}))
		if analysis.Usage != nil && analysis.Usage.CostUSD > 0 {
			ui.PrintKeyValue(w, t.GetMessage("label_cost", 0, nil), fmt.Sprintf("$%.6f USD", analysis.Usage.CostUSD))
		}
	} else {
		ui.PrintKeyValue(w, t.GetMessage("label_source", 0, nil), t.GetMessage("source_fallback", 0, nil))
	}
	_, _ = fmt.Fprintln(w)
}
