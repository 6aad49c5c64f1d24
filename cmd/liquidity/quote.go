package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityFlow/internal/config"
	"liquidityFlow/internal/graph"
	"liquidityFlow/internal/liquidity"
	"liquidityFlow/internal/model"
	"liquidityFlow/internal/numeric"
	"liquidityFlow/internal/pools"
	"liquidityFlow/internal/tokens"
)

func runQuote(cmd *cobra.Command, _ []string) error {
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

	inputAddr, _ := cmd.Flags().GetString("input-token")
	otherAddr, _ := cmd.Flags().GetString("other-token")
	amount, _ := cmd.Flags().GetString("amount")

	if cfg.IndexerURL == "" {
		return fmt.Errorf("indexer url is required")
	}
	if inputAddr == "" || otherAddr == "" || amount == "" {
		return fmt.Errorf("input-token, other-token and amount are required")
	}

	ctx := cmd.Context()
	client := graph.NewClient(cfg.IndexerURL, nil)

	tokenReg := tokens.NewRegistry()
	tokenSet, err := client.ListTokens(ctx)
	if err != nil {
		return err
	}
	tokenReg.Replace(tokenSet)

	inputToken, ok := tokenReg.ByAddress(inputAddr)
	if !ok {
		return fmt.Errorf("unknown token %s", inputAddr)
	}
	otherToken, ok := tokenReg.ByAddress(otherAddr)
	if !ok {
		return fmt.Errorf("unknown token %s", otherAddr)
	}

	poolSet, err := client.ListPools(ctx)
	if err != nil {
		return err
	}

	pool, ok := pools.FindPool(inputToken, otherToken, cfg.WrappedNative, poolSet)
	if !ok {
		share, err := liquidity.PoolSharePercent(amount, inputToken.Decimals, "")
		if err != nil {
			return err
		}
		fmt.Printf("no existing pool for %s/%s: first provision sets the ratio (pool share %s%%)\n",
			inputToken.Symbol, otherToken.Symbol, share)
		return nil
	}

	inputReserve, otherReserve, otherDecimals := pool.Token0Amount, pool.Token1Amount, pool.Token1.Decimals
	if inputToken.MatchAddress(cfg.WrappedNative) != model.NormalizeAddress(pool.Token0.Address) {
		inputReserve, otherReserve, otherDecimals = pool.Token1Amount, pool.Token0Amount, pool.Token0.Decimals
	}

	derived, err := liquidity.CounterpartAmount(amount, inputToken.Decimals, inputReserve, otherReserve, otherDecimals)
	if err != nil {
		return err
	}
	share, err := liquidity.PoolSharePercent(amount, inputToken.Decimals, inputReserve)
	if err != nil {
		return err
	}

	logger.Debug("quote computed",
		zap.String("pair", pool.PairAddress),
		zap.String("input", amount),
		zap.String("derived", derived),
	)

	fmt.Printf("pool %s\n", pool.PairAddress)
	fmt.Printf("%s %s requires %s %s\n", amount, inputToken.Symbol, derived, otherToken.Symbol)
	fmt.Printf("pool share after provision: %s%%\n", share)
	return nil
}

func runShares(cmd *cobra.Command, _ []string) error {
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

	pairAddr, _ := cmd.Flags().GetString("pool")
	lpAmount, _ := cmd.Flags().GetString("lp")
	accountID, _ := cmd.Flags().GetString("account")

	if cfg.IndexerURL == "" {
		return fmt.Errorf("indexer url is required")
	}
	if pairAddr == "" {
		return fmt.Errorf("pool is required")
	}
	if lpAmount == "" && accountID == "" {
		return fmt.Errorf("either lp or account is required")
	}

	ctx := cmd.Context()
	client := graph.NewClient(cfg.IndexerURL, nil)

	var poolSet []model.PoolDescriptor
	if accountID != "" {
		poolSet, err = client.ListPoolsForAccount(ctx, accountID)
	} else {
		poolSet, err = client.ListPools(ctx)
	}
	if err != nil {
		return err
	}
	poolReg := pools.NewRegistry()
	poolReg.Replace(poolSet)

	pool, ok := poolReg.ByPairAddress(pairAddr)
	if !ok {
		return fmt.Errorf("unknown pool %s", pairAddr)
	}

	// No explicit amount means the account's whole LP position.
	var lpRaw *big.Int
	if lpAmount == "" {
		lpRaw, err = numeric.ParseRaw(pool.CallerLPShares)
		if err != nil {
			return fmt.Errorf("account %s holds no LP shares in %s", accountID, pairAddr)
		}
		lpAmount = numeric.FormatUnitsTrimmed(lpRaw, 18)
	} else {
		lpRaw, err = numeric.ParseUnits(lpAmount, 18)
		if err != nil {
			return fmt.Errorf("parse lp amount: %w", err)
		}
	}

	share0, share1 := liquidity.ComputeShare(
		lpRaw.String(), pool.TotalSupply,
		pool.Token0Amount, pool.Token1Amount,
		pool.Token0.Decimals, pool.Token1.Decimals,
	)

	fmt.Printf("pool %s\n", pool.PairAddress)
	fmt.Printf("%s LP shares redeem %s %s and %s %s\n",
		lpAmount, share0, pool.Token0.Symbol, share1, pool.Token1.Symbol)
	return nil
}
