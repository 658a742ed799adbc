package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solanum-labs/arbscan/cache"
	"github.com/solanum-labs/arbscan/config"
	"github.com/solanum-labs/arbscan/dex"
	"github.com/solanum-labs/arbscan/dex/meteora"
	"github.com/solanum-labs/arbscan/dex/orca"
	"github.com/solanum-labs/arbscan/dex/raydium"
	"github.com/solanum-labs/arbscan/dex/sample"
	"github.com/solanum-labs/arbscan/gas"
	"github.com/solanum-labs/arbscan/strategies/arbitrage"
	"github.com/solanum-labs/arbscan/types"
	"github.com/solanum-labs/arbscan/utils"
	"github.com/solanum-labs/arbscan/utils/metrics"
)

var (
	scanSample  bool
	scanJSON    bool
	scanPublish bool
	scanTop     int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one snapshot scan and print ranked opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pools, err := collectSnapshot(ctx, cfg, scanSample, log, nil)
		if err != nil {
			return err
		}

		scanner, err := arbitrage.NewScanner(cfg.ScannerConfig(),
			arbitrage.WithLogger(log),
			arbitrage.WithGasEstimator(estimatorFromConfig(cfg, log)),
		)
		if err != nil {
			return err
		}

		found, err := scanner.Scan(ctx, pools)
		if err != nil {
			return err
		}

		if scanPublish {
			if err := publishOpportunities(ctx, cfg, found, log); err != nil {
				return err
			}
		}

		if scanJSON {
			return printJSON(cmd.OutOrStdout(), found)
		}
		printTable(cmd.OutOrStdout(), found, scanTop)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanSample, "sample", false, "scan the built-in sample snapshot instead of live APIs")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print opportunities as JSON")
	scanCmd.Flags().BoolVar(&scanPublish, "publish", false, "store results in redis")
	scanCmd.Flags().IntVar(&scanTop, "top", 10, "how many opportunities to print")
}

func buildFetchers(cfg *config.Config, log *zap.Logger) ([]dex.Fetcher, error) {
	var fetchers []dex.Fetcher
	if cfg.Fetchers.RaydiumURL != "" {
		fetchers = append(fetchers, raydium.New(raydium.Options{
			Endpoint:       cfg.Fetchers.RaydiumURL,
			Timeout:        time.Duration(cfg.Fetchers.Timeout),
			RequestsPerSec: cfg.Fetchers.RequestsPerSec,
			Burst:          cfg.Fetchers.Burst,
			MinTVL:         cfg.Fetchers.MinTVL,
			Logger:         log,
		}))
	}
	if cfg.Fetchers.OrcaURL != "" {
		fetchers = append(fetchers, orca.New(orca.Options{
			Endpoint:       cfg.Fetchers.OrcaURL,
			Timeout:        time.Duration(cfg.Fetchers.Timeout),
			RequestsPerSec: cfg.Fetchers.RequestsPerSec,
			Burst:          cfg.Fetchers.Burst,
			MinTVL:         cfg.Fetchers.MinTVL,
			Logger:         log,
		}))
	}
	if len(fetchers) == 0 {
		return nil, config.ErrMissingEndpoint
	}
	if cfg.Fetchers.MeteoraEnabled {
		fetchers = append(fetchers, meteora.New(log))
	}
	return fetchers, nil
}

func collectSnapshot(ctx context.Context, cfg *config.Config, useSample bool, log *zap.Logger, fm *metrics.FetcherMetrics) ([]types.PoolData, error) {
	if useSample {
		return sample.Snapshot(), nil
	}

	fetchers, err := buildFetchers(cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []dex.CollectorOption{dex.WithLogger(log)}
	if fm != nil {
		opts = append(opts, dex.WithMetrics(fm))
	}
	return dex.NewCollector(fetchers, opts...).Collect(ctx)
}

func estimatorFromConfig(cfg *config.Config, log *zap.Logger) *gas.Estimator {
	est := gas.NewEstimator(log)
	if cfg.Gas.BaseFeeLamports > 0 || cfg.Gas.PerSwapFeeLamports > 0 {
		var base, perSwap *big.Int
		if cfg.Gas.BaseFeeLamports > 0 {
			base = big.NewInt(cfg.Gas.BaseFeeLamports)
		}
		if cfg.Gas.PerSwapFeeLamports > 0 {
			perSwap = big.NewInt(cfg.Gas.PerSwapFeeLamports)
		}
		est.SetFees(base, perSwap)
	}
	if cfg.Gas.PriorityMultiplier > 0 {
		est.SetPriorityMultiplier(cfg.Gas.PriorityMultiplier)
	}
	return est
}

func publishOpportunities(ctx context.Context, cfg *config.Config, opps []types.ArbitrageOpportunity, log *zap.Logger) error {
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("cannot publish: redis address not configured")
	}

	store := cache.NewStore(cache.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		TTL:         time.Duration(cfg.Redis.TTL),
		Channel:     cfg.Redis.Channel,
		RecentLimit: cfg.Redis.RecentLimit,
		Logger:      log,
	})
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return store.PutAll(ctx, opps)
}

func printJSON(w io.Writer, opps []types.ArbitrageOpportunity) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(opps)
}

func printTable(w io.Writer, opps []types.ArbitrageOpportunity, top int) {
	if len(opps) == 0 {
		fmt.Fprintln(w, "No opportunities found.")
		return
	}
	if top > 0 && len(opps) > top {
		opps = opps[:top]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTYPE\tPATH\tVENUES\tNET PROFIT\tPCT\tCONF")
	for i, opp := range opps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s %s\t%.3f%%\t%.2f\n",
			i+1,
			opp.Path.Type,
			pathLabel(opp),
			venueLabel(opp),
			formatAmount(opp.NetProfit, opp.Path.StartToken.Decimals),
			opp.Path.StartToken.Symbol,
			opp.ProfitPercent,
			opp.Confidence,
		)
	}
	tw.Flush()
}

func pathLabel(opp types.ArbitrageOpportunity) string {
	var b strings.Builder
	b.WriteString(opp.Path.StartToken.Symbol)
	for _, step := range opp.Path.Steps {
		b.WriteString(">")
		b.WriteString(step.TokenOut.Symbol)
	}
	return b.String()
}

func venueLabel(opp types.ArbitrageOpportunity) string {
	venues := make([]string, 0, len(opp.Path.Steps))
	for _, step := range opp.Path.Steps {
		venues = append(venues, string(step.Exchange))
	}
	return strings.Join(venues, ">")
}

func formatAmount(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), new(big.Float).SetInt(scale))
	return value.Text('f', 6)
}
