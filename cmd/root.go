package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/solanum-labs/arbscan/config"
	"github.com/solanum-labs/arbscan/utils"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "arbscan",
	Short: "A CLI arbitrage scanner for Solana AMM pools",
	Long: `A CLI scanner that snapshots Solana AMM pools across exchanges and
detects two-pool, cross-exchange, multi-hop and negative-cycle arbitrage
opportunities, ranked by net profit after estimated execution cost.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.arbscan.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initConfig() {
	log := utils.InitLogger(debug)
	if err := config.LoadEnv(); err != nil {
		log.Warn("Failed to load .env file")
	}
}
