package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityFlow/internal/allowance"
	"liquidityFlow/internal/chain"
	"liquidityFlow/internal/config"
	"liquidityFlow/internal/graph"
	"liquidityFlow/internal/mirror"
	"liquidityFlow/internal/tokens"
)

func runAllowance(cmd *cobra.Command, _ []string) error {
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

	accountID, _ := cmd.Flags().GetString("account")
	tokenAddr, _ := cmd.Flags().GetString("token")
	amount, _ := cmd.Flags().GetString("amount")

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.IndexerURL == "" {
		return fmt.Errorf("indexer url is required")
	}
	if cfg.RouterAddress == "" || cfg.RouterAccountID == "" {
		return fmt.Errorf("router-address and router-account are required")
	}
	if accountID == "" || tokenAddr == "" || amount == "" {
		return fmt.Errorf("account, token and amount are required")
	}

	ctx := cmd.Context()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	logger.Debug("relay connected", zap.String("chain_id", chainID.String()))

	tokenReg := tokens.NewRegistry()
	tokenSet, err := graph.NewClient(cfg.IndexerURL, nil).ListTokens(ctx)
	if err != nil {
		return err
	}
	tokenReg.Replace(tokenSet)

	token, ok := tokenReg.ByAddress(tokenAddr)
	if !ok {
		return fmt.Errorf("unknown token %s", tokenAddr)
	}

	reconciler := allowance.NewReconciler(
		chainClient,
		mirror.NewClient(cfg.MirrorURL, nil),
		common.HexToAddress(cfg.RouterAddress),
		cfg.RouterAccountID,
		logger,
	)

	if reconciler.Check(ctx, accountID, token, amount) {
		fmt.Printf("allowance for %s %s is sufficient\n", amount, token.Symbol)
	} else {
		fmt.Printf("allowance for %s %s is insufficient: approval required\n", amount, token.Symbol)
	}
	return nil
}
