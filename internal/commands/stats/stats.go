package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/thomas-vilte/contextclue/internal/commands"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/services/cost"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/urfave/cli/v3"
)

type StatsCommandFactory struct {
	now func() time.Time
}

func NewStatsCommandFactory() *StatsCommandFactory {
	return &StatsCommandFactory{now: time.Now}
}

func (f *StatsCommandFactory) CreateCommand(t *i18n.Translations, load commands.Loader) *cli.Command {
	return &cli.Command{
		Name:    "stats",
		Aliases: []string{"cost"},
		Usage:   t.GetMessage("stats_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, container, err := load(ctx, cmd)
			if err != nil {
				return err
			}

			manager, err := container.GetUsageManager()
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if manager == nil {
				ui.PrintWarning(w, t.GetMessage("stats_no_history", 0, nil))
				return nil
			}
			return f.show(w, t, manager)
		},
	}
}

type modelStat struct {
	model string
	calls int
	cost  float64
}

func (f *StatsCommandFactory) show(w io.Writer, t *i18n.Translations, manager *cost.Manager) error {
	records, err := manager.GetHistory()
	if err != nil {
		return err
	}
	daily, err := manager.GetDailyTotal()
	if err != nil {
		return err
	}
	monthly, err := manager.GetMonthlyTotal()
	if err != nil {
		return err
	}

	ui.PrintSectionBanner(w, ui.StatsEmoji, t.GetMessage("stats_header", 0, nil))

	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, t.GetMessage("stats_no_history", 0, nil))
		return nil
	}

	ui.PrintKeyValue(w, t.GetMessage("stats_today", 0, nil), fmt.Sprintf("$%.4f USD", daily))
	ui.PrintKeyValue(w, t.GetMessage("stats_month", 0, nil), fmt.Sprintf("$%.4f USD", monthly))

	budget := t.GetMessage("stats_budget_unlimited", 0, nil)
	if manager.BudgetDaily() > 0 {
		budget = fmt.Sprintf("$%.2f USD (%.0f%%)", manager.BudgetDaily(), daily/manager.BudgetDaily()*100)
	}
	ui.PrintKeyValue(w, t.GetMessage("stats_budget", 0, nil), budget)

	currentMonth := f.now().Format("2006-01")
	byModel := make(map[string]*modelStat)
	monthCalls := 0
	for _, r := range records {
		if r.Timestamp.Format("2006-01") != currentMonth {
			continue
		}
		monthCalls++
		key := r.Provider + "/" + r.Model
		stat, ok := byModel[key]
		if !ok {
			stat = &modelStat{model: key}
			byModel[key] = stat
		}
		stat.calls++
		stat.cost += r.CostUSD
	}

	_, _ = fmt.Fprintln(w)
	_, _ = ui.Dim.Fprintln(w, t.GetMessage("stats_calls", monthCalls, map[string]interface{}{
		"Count": monthCalls,
	}))

	if len(byModel) == 0 {
		return nil
	}

	stats := make([]*modelStat, 0, len(byModel))
	for _, s := range byModel {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].cost != stats[j].cost {
			return stats[i].cost > stats[j].cost
		}
		return stats[i].model < stats[j].model
	})

	_, _ = fmt.Fprintln(w)
	_, _ = ui.Dim.Fprintln(w, t.GetMessage("stats_by_model", 0, nil))
	for _, s := range stats {
		_, _ = fmt.Fprintf(w, "   %-40s %6d  %s\n", s.model, s.calls, ui.Warning.Sprintf("$%.4f", s.cost))
	}
	ui.PrintSeparator(w)
	return nil
}
