// Package poll keeps the in-memory pool and token registries current by
// refreshing them from the indexer on an interval. A failed refresh keeps
// the previous snapshot; quoting against slightly stale reserves beats
// quoting against nothing.
package poll

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"liquidityFlow/internal/model"
	"liquidityFlow/internal/pools"
	"liquidityFlow/internal/tokens"
)

// Source lists pools and tokens from the indexer.
type Source interface {
	ListPools(ctx context.Context) ([]model.PoolDescriptor, error)
	ListTokens(ctx context.Context) ([]model.TokenDescriptor, error)
}

// Sink receives each accepted snapshot for persistence. Optional.
type Sink interface {
	UpsertPools(ctx context.Context, pools []model.PoolDescriptor) error
	UpsertTokens(ctx context.Context, tokens []model.TokenDescriptor) error
}

// Config holds runtime settings for the poller.
type Config struct {
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Poller refreshes the registries from the source on an interval.
type Poller struct {
	cfg     Config
	source  Source
	pools   *pools.Registry
	tokens  *tokens.Registry
	sink    Sink
	logger  *zap.Logger
}

// NewPoller builds a Poller with its dependencies. Sink may be nil.
func NewPoller(cfg Config, source Source, poolReg *pools.Registry, tokenReg *tokens.Registry, sink Sink, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Poller{
		cfg:    cfg,
		source: source,
		pools:  poolReg,
		tokens: tokenReg,
		sink:   sink,
		logger: logger,
	}
}

// Run refreshes once immediately, then on every tick until the context ends.
func (p *Poller) Run(ctx context.Context) error {
	if p.source == nil {
		return fmt.Errorf("source is nil")
	}
	if p.pools == nil || p.tokens == nil {
		return fmt.Errorf("registries are nil")
	}

	if err := p.refresh(ctx); err != nil {
		p.logger.Warn("initial refresh failed, serving stale data", zap.Error(err))
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				p.logger.Warn("refresh failed, serving stale data", zap.Error(err))
			}
		}
	}
}

// Refresh runs one refresh cycle outside the loop, for warm starts and tests.
func (p *Poller) Refresh(ctx context.Context) error {
	return p.refresh(ctx)
}

func (p *Poller) refresh(ctx context.Context) error {
	poolSet, err := p.listPoolsWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("list pools: %w", err)
	}
	tokenSet, err := p.listTokensWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}

	p.pools.Replace(poolSet)
	p.tokens.Replace(tokenSet)
	p.logger.Info("registries refreshed", zap.Int("pools", len(poolSet)), zap.Int("tokens", len(tokenSet)))

	if p.sink != nil {
		if err := p.sink.UpsertPools(ctx, poolSet); err != nil {
			p.logger.Warn("pool snapshot persist failed", zap.Error(err))
		}
		if err := p.sink.UpsertTokens(ctx, tokenSet); err != nil {
			p.logger.Warn("token snapshot persist failed", zap.Error(err))
		}
	}
	return nil
}

func (p *Poller) listPoolsWithRetry(ctx context.Context) ([]model.PoolDescriptor, error) {
	var poolSet []model.PoolDescriptor
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		poolSet, err = p.source.ListPools(ctx)
		if err != nil {
			p.logger.Warn("list pools failed", zap.Error(err))
		}
		return err
	})
	return poolSet, err
}

func (p *Poller) listTokensWithRetry(ctx context.Context) ([]model.TokenDescriptor, error) {
	var tokenSet []model.TokenDescriptor
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		tokenSet, err = p.source.ListTokens(ctx)
		if err != nil {
			p.logger.Warn("list tokens failed", zap.Error(err))
		}
		return err
	})
	return tokenSet, err
}
