package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityFlow/internal/config"
	"liquidityFlow/internal/graph"
	"liquidityFlow/internal/poll"
	"liquidityFlow/internal/pools"
	"liquidityFlow/internal/settings"
	"liquidityFlow/internal/storage/postgres"
	"liquidityFlow/internal/tokens"
)

func main() {
	root := &cobra.Command{
		Use:          "liquidity",
		Short:        "Liquidity accounting engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pool snapshot poller",
		RunE:  runPoller,
	}

	runCmd.Flags().String("indexer", "", "GraphQL indexer endpoint")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshot persistence (optional)")
	runCmd.Flags().Duration("poll-interval", 30*time.Second, "refresh interval")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts per refresh")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the counterpart amount for a provision",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("indexer", "", "GraphQL indexer endpoint")
	quoteCmd.Flags().String("input-token", "", "input token contract address")
	quoteCmd.Flags().String("other-token", "", "counterpart token contract address")
	quoteCmd.Flags().String("amount", "", "input amount (human units)")
	quoteCmd.Flags().String("wrapped-native", "", "wrapped native token address")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	sharesCmd := &cobra.Command{
		Use:   "shares",
		Short: "Compute the pro-rata withdrawal for an LP amount",
		RunE:  runShares,
	}

	sharesCmd.Flags().String("indexer", "", "GraphQL indexer endpoint")
	sharesCmd.Flags().String("pool", "", "pair contract address")
	sharesCmd.Flags().String("lp", "", "LP share amount (human units); omit to use the account's full position")
	sharesCmd.Flags().String("account", "", "owner account ID (0.0.N), used when --lp is omitted")
	sharesCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(sharesCmd)

	allowanceCmd := &cobra.Command{
		Use:   "allowance",
		Short: "Check whether the router allowance covers an amount",
		RunE:  runAllowance,
	}

	allowanceCmd.Flags().String("rpc", "", "JSON-RPC relay URL")
	allowanceCmd.Flags().String("indexer", "", "GraphQL indexer endpoint")
	allowanceCmd.Flags().String("mirror-url", "", "mirror node base URL")
	allowanceCmd.Flags().String("router-address", "", "router contract address")
	allowanceCmd.Flags().String("router-account", "", "router account ID (0.0.N)")
	allowanceCmd.Flags().String("account", "", "owner account ID (0.0.N)")
	allowanceCmd.Flags().String("token", "", "token contract address")
	allowanceCmd.Flags().String("amount", "", "pending amount (human units)")
	allowanceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(allowanceCmd)

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or update transaction settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective transaction settings",
		RunE:  runSettingsShow,
	}
	showCmd.Flags().String("settings-path", "./data/settings.json", "settings file path")
	settingsCmd.AddCommand(showCmd)

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update transaction settings",
		RunE:  runSettingsSet,
	}
	setCmd.Flags().String("settings-path", "./data/settings.json", "settings file path")
	setCmd.Flags().Uint64("provide-slippage-bps", settings.DefaultProvideSlippageBps, "provision slippage (basis points)")
	setCmd.Flags().Uint64("remove-slippage-bps", settings.DefaultRemoveSlippageBps, "removal slippage (basis points)")
	setCmd.Flags().Uint64("swap-slippage-bps", settings.DefaultSwapSlippageBps, "swap slippage (basis points)")
	setCmd.Flags().Uint64("expiration-seconds", settings.DefaultExpirationSeconds, "transaction deadline offset (seconds)")
	settingsCmd.AddCommand(setCmd)

	root.AddCommand(settingsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPoller(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.IndexerURL == "" {
		return fmt.Errorf("indexer url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolReg := pools.NewRegistry()
	tokenReg := tokens.NewRegistry()

	var sink poll.Sink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if warm, err := store.LoadPools(ctx); err != nil {
			logger.Warn("warm start load failed", zap.Error(err))
		} else if len(warm) > 0 {
			poolReg.Replace(warm)
			logger.Info("warm start from persisted snapshot", zap.Int("pools", len(warm)))
		}
		sink = store
	}

	poller := newPollerFromConfig(cfg, poolReg, tokenReg, sink, logger)

	logger.Info("poller start",
		zap.String("indexer", cfg.IndexerURL),
		zap.Duration("interval", cfg.PollInterval),
		zap.Bool("persist", sink != nil),
	)

	return poller.Run(ctx)
}

func newPollerFromConfig(cfg config.Config, poolReg *pools.Registry, tokenReg *tokens.Registry, sink poll.Sink, logger *zap.Logger) *poll.Poller {
	client := graph.NewClient(cfg.IndexerURL, nil)
	return poll.NewPoller(poll.Config{
		Interval:     cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, client, poolReg, tokenReg, sink, logger)
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
