// Command coinwatch polls a price API, shows the watch list in the terminal and
// raises alarms when price or 24h change thresholds are crossed.
//
// Usage:
//
//	coinwatch                      terminal widget
//	coinwatch --headless --web :8080
//	coinwatch alarms               interactive alarm wizard
//
// Settings are read from .env, the environment and an optional --config yaml file.
// The CoinMarketCap provider needs CMC_API_KEY.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/coinwatch/config"
	"github.com/vadiminshakov/coinwatch/internal"
	"github.com/vadiminshakov/coinwatch/internal/events"
	"github.com/vadiminshakov/coinwatch/internal/notify"
	"github.com/vadiminshakov/coinwatch/internal/services/chart"
	"github.com/vadiminshakov/coinwatch/internal/setup"
	"github.com/vadiminshakov/coinwatch/internal/storage/alarmlog"
	"github.com/vadiminshakov/coinwatch/internal/storage/alarms"
	"github.com/vadiminshakov/coinwatch/internal/storage/watchlist"
	"github.com/vadiminshakov/coinwatch/internal/tui"
	"github.com/vadiminshakov/coinwatch/internal/web"
	"github.com/vadiminshakov/coinwatch/internal/widget"
)

const (
	logFileName    = "coinwatch.log"
	walDirName     = "wal"
	certCacheDir   = "cert-cache"
	snapshotBuffer = 16
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir %s: %v", cfg.DataDir, err)
	}

	if cfg.Command == config.CommandAlarms {
		runAlarmWizard(cfg)
		return
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("coinwatch stopped with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := internal.NewServiceProvider(cfg)
	if err != nil {
		return err
	}

	journal, err := alarmlog.NewWALStore(filepath.Join(cfg.DataDir, walDirName))
	if err != nil {
		return err
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Warn("failed to close alarm journal", zap.Error(err))
		}
	}()

	notifiers := notify.NewMulti(logger, notify.NewLogNotifier(logger), notify.NewSoundNotifier())
	if cfg.TelegramEnabled() {
		notifiers.Add(notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
		logger.Info("telegram notifications enabled")
	}

	quotes := events.NewQuoteBroadcaster(snapshotBuffer)
	w := widget.New(
		logger.Named("widget"),
		provider.Pricer(),
		watchlist.NewStore(cfg.DataDir),
		alarms.NewStore(cfg.DataDir),
		quotes,
		widget.WithChart(chart.NewProvider(provider.ChartSource(), chart.DefaultPeriod)),
		widget.WithJournal(journal),
		widget.WithNotifier(notifiers),
		widget.WithRefreshInterval(cfg.RefreshInterval),
	)
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn("failed to save state", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	if cfg.WebAddr != "" {
		srv := web.NewServer(logger.Named("web"), cfg.WebAddr, quotes, journal)
		g.Go(func() error {
			if cfg.WebDomain != "" {
				return srv.StartWithAutoTLS(gctx, []string{cfg.WebDomain}, filepath.Join(cfg.DataDir, certCacheDir))
			}
			return srv.Start(gctx)
		})
	}

	if !cfg.Headless {
		g.Go(func() error {
			// quitting the widget stops everything else
			defer cancel()
			return tui.Run(gctx, w)
		})
	} else {
		logger.Info("running headless", zap.String("provider", cfg.Provider), zap.Duration("refresh", cfg.RefreshInterval))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newLogger writes to the data dir while the terminal UI owns the screen.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Headless {
		return zap.NewProduction()
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{filepath.Join(cfg.DataDir, logFileName)}
	zcfg.ErrorOutputPaths = zcfg.OutputPaths
	return zcfg.Build()
}

func runAlarmWizard(cfg config.Config) {
	coins, err := watchlist.NewStore(cfg.DataDir).Load()
	if err != nil {
		log.Printf("could not read watch list, using defaults: %v", err)
	}

	if _, err := setup.RunAlarmWizard(coins, alarms.NewStore(cfg.DataDir)); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, setup.ErrCancelled) {
			fmt.Println("No alarm saved.")
			return
		}
		log.Fatal(err)
	}
}
