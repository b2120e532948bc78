package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"brvm/internal/config"
	"brvm/internal/dashboard"
	"brvm/internal/loader"
	"brvm/internal/refresh"
	"brvm/internal/store"
	"brvm/internal/tui"
	"brvm/internal/util"
	"brvm/internal/watchlist"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI, so logs go to a dated file.
	logPath := fmt.Sprintf("/tmp/brvm-dashboard-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	util.SetDefault(logger)

	f, err := dashboard.NewFormatter(cfg.Dashboard.Locale, cfg.Dashboard.Currency, cfg.Dashboard.DateLayout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating formatter: %v\n", err)
		os.Exit(1)
	}
	cal := util.NewTradingCalendar()
	// Dates are shown in exchange time whatever the host's zone.
	f = f.WithLocation(cal.Location())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watchlist persistence is optional: a broken backend disables it.
	var wl *watchlist.Watchlist
	kv, err := store.OpenKV(ctx, store.KVOptions{
		Backend:       cfg.Storage.Backend,
		SQLitePath:    cfg.Storage.SQLitePath,
		FilePath:      cfg.Storage.WatchlistFile,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   cfg.Redis.Prefix,
	}, logger)
	if err != nil {
		logger.Warn("watchlist storage unavailable", "backend", cfg.Storage.Backend, "error", err)
	} else {
		defer kv.Close()
		wl = watchlist.New(kv)
	}

	state := dashboard.NewState()
	client := &http.Client{Timeout: cfg.Dashboard.LoadTimeout}
	ld := loader.New(cfg.Data.URL, client, state, logger)

	ticks := make(chan struct{}, 1)
	sched := refresh.NewScheduler(refresh.SystemClock{}, cfg.Dashboard.RefreshInterval, func() {
		select {
		case ticks <- struct{}{}:
		default: // a refresh is already pending
		}
	})
	if cfg.Dashboard.AutoRefresh {
		sched.Start()
	}
	defer sched.Stop()

	logger.Info("starting dashboard",
		"source", ld.Source(),
		"storage", cfg.Storage.Backend,
		"auto_refresh", cfg.Dashboard.AutoRefresh,
		"interval", sched.Interval(),
	)

	m := tui.New(tui.Deps{
		State:     state,
		Loader:    ld,
		Watchlist: wl,
		Scheduler: sched,
		Ticks:     ticks,
		Formatter: f,
		Calendar:  cal,
		Logger:    logger,
		Settings: tui.Settings{
			ChartSize:       cfg.Dashboard.MaxStocksInChart,
			SearchDebounce:  cfg.Dashboard.SearchDebounce,
			NotificationTTL: cfg.Dashboard.NotificationTTL,
			LoadTimeout:     cfg.Dashboard.LoadTimeout,
			ExportDir:       cfg.Dashboard.ExportDir,
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
