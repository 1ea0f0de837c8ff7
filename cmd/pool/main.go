package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "pool",
		Short:        "Two-asset constant-product liquidity pool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay an operations script against an in-memory pool",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("pool-address", "", "pool account address")
	simulateCmd.Flags().String("asset-a", "", "asset A address")
	simulateCmd.Flags().String("asset-b", "", "asset B address")
	simulateCmd.Flags().String("ops", "", "input operations JSONL path")
	simulateCmd.Flags().String("out", "./data/records.jsonl", "output records JSONL path")
	simulateCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for records and state")
	simulateCmd.Flags().String("state-file", "", "optional local pool state file")
	simulateCmd.Flags().Int64("tolerance", 0, "proportion tolerance divisor (0 uses the default)")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap or co-deposit without touching any ledger",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("kind", "swap", "quote kind (swap, co-deposit)")
	quoteCmd.Flags().String("amount-in", "", "input amount")
	quoteCmd.Flags().String("reserve-in", "", "input-side reserve")
	quoteCmd.Flags().String("reserve-out", "", "output-side reserve")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
