package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thomas-vilte/contextclue/internal/commands"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/server"
	"github.com/thomas-vilte/contextclue/internal/services/cost"
	"github.com/thomas-vilte/contextclue/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	commandName = "serve"

	retentionInterval = 24 * time.Hour
)

type ServeCommandFactory struct{}

func NewServeCommandFactory() *ServeCommandFactory {
	return &ServeCommandFactory{}
}

func (f *ServeCommandFactory) CreateCommand(t *i18n.Translations, load commands.Loader) *cli.Command {
	return &cli.Command{
		Name:  commandName,
		Usage: t.GetMessage("serve_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: t.GetMessage("serve_flag_addr", 0, nil),
			},
		},
		Action: serveAction(t, load),
	}
}

func serveAction(t *i18n.Translations, load commands.Loader) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		ctx, container, err := load(ctx, cmd)
		if err != nil {
			return err
		}
		cfg := container.Config()

		addr := cfg.Server.Addr
		if cmd.IsSet("addr") {
			addr = cmd.String("addr")
		}

		svc, err := container.GetAnalysisService(ctx, commandName)
		if err != nil {
			return err
		}

		srv := server.New(svc, server.Options{BodyLimit: cfg.Server.BodyLimit})

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if job := startRetention(ctx, container.GetUsageManager, cfg.History.RetentionDays); job != nil {
			defer func() { _ = job.Stop() }()
		}

		w := cmd.Root().Writer
		ui.PrintInfo(w, t.GetMessage("serve_listening", 0, map[string]interface{}{
			"Addr": addr,
			"Live": svc.LiveEnabled(),
		}))
		logger.Info(ctx, "server starting",
			"addr", addr,
			"live", svc.LiveEnabled(),
			"provider", cfg.Provider.Name)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(addr); err != nil {
				return fmt.Errorf("error serving on %s: %w", addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			return err
		}

		ui.PrintSuccess(w, t.GetMessage("serve_stopped", 0, nil))
		return nil
	}
}

// startRetention returns nil when history is off, retention is unlimited or the
// scheduler cannot start; serving continues either way.
func startRetention(ctx context.Context, usage func() (*cost.Manager, error), days int) *cost.RetentionJob {
	if days <= 0 {
		return nil
	}
	manager, err := usage()
	if err != nil || manager == nil {
		return nil
	}

	job, err := cost.StartRetention(ctx, manager, time.Duration(days)*24*time.Hour, retentionInterval)
	if err != nil {
		logger.Warn(ctx, "usage history retention disabled", "error", err)
		return nil
	}
	return job
}
