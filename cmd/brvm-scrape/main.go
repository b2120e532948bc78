package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"brvm/internal/config"
	"brvm/internal/domain"
	"brvm/internal/scrape"
	"brvm/internal/store"
	"brvm/internal/util"
)

func main() {
	sample := flag.Bool("sample", false, "publish the sample snapshot without scraping")
	noArchive := flag.Bool("no-archive", false, "skip the parquet history archive")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logFileName := fmt.Sprintf("/tmp/brvm-scrape-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, io.MultiWriter(os.Stdout, logFile))
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var snap *domain.Snapshot
	if *sample {
		snap = scrape.SampleSnapshot(time.Now())
	} else {
		client := &http.Client{Timeout: cfg.Scraper.Timeout}
		s := scrape.New(cfg.Scraper.URL, cfg.Scraper.UserAgent, client, logger)
		err = util.Retry(ctx, logger, cfg.Scraper.Retries, cfg.Scraper.RetryDelay, func(ctx context.Context) error {
			var ferr error
			snap, ferr = s.Fetch(ctx)
			return ferr
		})
		if err != nil {
			logger.Warn("scraping failed, publishing sample data", "url", cfg.Scraper.URL, "error", err)
			snap = scrape.SampleSnapshot(time.Now())
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := scrape.SaveSnapshot(cfg.Data.Dir, snap); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		return nil
	})
	if cfg.Scraper.Archive && !*noArchive {
		g.Go(func() error {
			ps := store.NewParquetStore(cfg.Data.Dir)
			if err := ps.WriteSnapshot(gctx, snap); err != nil {
				return fmt.Errorf("archiving snapshot: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("publishing snapshot", "error", err)
		os.Exit(1)
	}

	logger.Info("snapshot published",
		"dir", cfg.Data.Dir,
		"stocks", len(snap.Stocks),
		"source", snap.Source,
	)
}
