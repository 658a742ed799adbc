package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solanum-labs/arbscan/cache"
	"github.com/solanum-labs/arbscan/config"
	"github.com/solanum-labs/arbscan/strategies/arbitrage"
	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils"
	"github.com/solanum-labs/arbscan/utils/metrics"
	"github.com/solanum-labs/arbscan/utils/monitor"
)

// suppressionCacheSize bounds how many opportunity signatures the
// watcher remembers for de-noising repeat reports.
const suppressionCacheSize = 4096

var watchSample bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan on a schedule and report fresh opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		w, err := newWatcher(cfg, log, watchSample)
		if err != nil {
			return err
		}
		defer w.Close()

		return w.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchSample, "sample", false, "watch the built-in sample snapshot instead of live APIs")
}

type watcher struct {
	cfg     *config.Config
	logger  *zap.Logger
	scanner *arbitrage.Scanner
	store   *cache.Store
	runtime *monitor.RuntimeMonitor

	fetchMetrics *metrics.FetcherMetrics

	seen        *lru.Cache
	suppressFor time.Duration
	sample      bool
}

func newWatcher(cfg *config.Config, log *zap.Logger, useSample bool) (*watcher, error) {
	seen, err := lru.New(suppressionCacheSize)
	if err != nil {
		return nil, err
	}

	w := &watcher{
		cfg:         cfg,
		logger:      log,
		seen:        seen,
		suppressFor: time.Duration(cfg.Watch.SuppressFor),
		sample:      useSample,
	}

	var scanMetrics *metrics.ScannerMetrics
	if cfg.Metrics.Enabled {
		metrics.Initialize(&metrics.MetricsConfig{ReportInterval: time.Minute}, log)
		scanMetrics = metrics.NewScannerMetrics(metrics.DefaultNamespace)
		w.fetchMetrics = metrics.NewFetcherMetrics(metrics.DefaultNamespace)
		w.runtime = monitor.New(log, 0, nil)
	}

	scannerOpts := []arbitrage.Option{
		arbitrage.WithLogger(log),
		arbitrage.WithGasEstimator(estimatorFromConfig(cfg, log)),
	}
	if scanMetrics != nil {
		scannerOpts = append(scannerOpts, arbitrage.WithMetrics(scanMetrics))
	}
	w.scanner, err = arbitrage.NewScanner(cfg.ScannerConfig(), scannerOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		w.store = cache.NewStore(cache.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			TTL:         time.Duration(cfg.Redis.TTL),
			Channel:     cfg.Redis.Channel,
			RecentLimit: cfg.Redis.RecentLimit,
			Logger:      log,
		})
	}

	return w, nil
}

// Run scans once immediately, then on the configured schedule until
// ctx is cancelled.
func (w *watcher) Run(ctx context.Context) error {
	if w.cfg.Metrics.Enabled {
		go serveMetrics(ctx, w.cfg.Metrics.Listen, w.logger)
		w.runtime.Start(ctx)
	}

	if w.store != nil {
		if err := w.store.Ping(ctx); err != nil {
			return err
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(w.cfg.Watch.Schedule, func() { w.runOnce(ctx) }); err != nil {
		return err
	}

	w.logger.Info("Watch loop started",
		zap.String("schedule", w.cfg.Watch.Schedule),
		zap.Bool("sample", w.sample),
	)

	w.runOnce(ctx)
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
	w.logger.Info("Watch loop stopped")
	return nil
}

func (w *watcher) runOnce(ctx context.Context) {
	pools, err := collectSnapshot(ctx, w.cfg, w.sample, w.logger, w.fetchMetrics)
	if err != nil {
		w.logger.Error("Snapshot collection failed", zap.Error(err))
		return
	}

	found, err := w.scanner.Scan(ctx, pools)
	if err != nil {
		w.logger.Error("Scan failed", zap.Error(err))
		return
	}

	fresh := w.filterSuppressed(found)
	w.logger.Info("Scan finished",
		zap.Int("pools", len(pools)),
		zap.Int("opportunities", len(found)),
		zap.Int("fresh", len(fresh)),
	)

	limit := w.cfg.Watch.TopN
	if limit > len(fresh) {
		limit = len(fresh)
	}
	for _, opp := range fresh[:limit] {
		w.logger.Info("Opportunity",
			zap.String("id", opp.ID),
			zap.String("type", string(opp.Path.Type)),
			zap.String("path", pathLabel(opp)),
			zap.String("venues", venueLabel(opp)),
			zap.String("net", formatAmount(opp.NetProfit, opp.Path.StartToken.Decimals)),
			zap.Float64("percent", opp.ProfitPercent),
			zap.Float64("confidence", opp.Confidence),
		)
	}

	if w.store != nil && len(fresh) > 0 {
		if err := w.store.PutAll(ctx, fresh); err != nil {
			w.logger.Error("Failed to store opportunities", zap.Error(err))
		}
	}
}

// filterSuppressed drops opportunities whose path signature was
// reported within the suppression window and records the remainder.
func (w *watcher) filterSuppressed(opps []types.ArbitrageOpportunity) []types.ArbitrageOpportunity {
	if w.suppressFor <= 0 {
		return opps
	}

	now := time.Now()
	fresh := make([]types.ArbitrageOpportunity, 0, len(opps))
	for _, opp := range opps {
		key := suppressionKey(opp)
		if last, ok := w.seen.Get(key); ok {
			if now.Sub(last.(time.Time)) < w.suppressFor {
				continue
			}
		}
		w.seen.Add(key, now)
		fresh = append(fresh, opp)
	}
	return fresh
}

func suppressionKey(opp types.ArbitrageOpportunity) string {
	return opp.Path.FirstPool().String() + "/" + opp.Path.LastPool().String() + "/" + opp.Path.StartToken.Mint.String()
}

func serveMetrics(ctx context.Context, listen string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: listen, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("Metrics endpoint listening", zap.String("listen", listen))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Metrics server failed", zap.Error(err))
	}
}

func (w *watcher) Close() {
	if w.runtime != nil {
		w.runtime.Close()
	}
	if w.store != nil {
		_ = w.store.Close()
	}
}
