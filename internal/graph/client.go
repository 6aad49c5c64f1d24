// Package graph is the client for the GraphQL pool indexer and token
// registry. The engine only consumes two list queries; query shape beyond
// that is the indexer's business.
package graph

import (
	"context"
	"fmt"
	"net/http"
	"time"

	graphql "github.com/hasura/go-graphql-client"

	"liquidityFlow/internal/model"
)

const defaultTimeout = 15 * time.Second

// Client wraps the GraphQL endpoint used for pool and token discovery.
type Client struct {
	gql *graphql.Client
}

// NewClient builds a client for the given endpoint. A nil httpClient gets a
// sane default timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{gql: graphql.NewClient(endpoint, httpClient)}
}

type tokenFields struct {
	ID       graphql.String `graphql:"id"`
	Address  graphql.String `graphql:"address"`
	Symbol   graphql.String `graphql:"symbol"`
	Decimals graphql.Int    `graphql:"decimals"`
	Type     graphql.String `graphql:"type"`
}

type poolFields struct {
	PairAddress  graphql.String `graphql:"pairAddress"`
	Token0       tokenFields    `graphql:"token0"`
	Token1       tokenFields    `graphql:"token1"`
	Token0Amount graphql.String `graphql:"token0Amount"`
	Token1Amount graphql.String `graphql:"token1Amount"`
	PairSupply   graphql.String `graphql:"pairSupply"`
	LPShares     graphql.String `graphql:"lpShares"`
}

// ListPools fetches the full pool set.
func (c *Client) ListPools(ctx context.Context) ([]model.PoolDescriptor, error) {
	var query struct {
		Pools []poolFields `graphql:"pools"`
	}
	if err := c.gql.Query(ctx, &query, nil); err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}

	pools := make([]model.PoolDescriptor, 0, len(query.Pools))
	for _, row := range query.Pools {
		pools = append(pools, toPoolDescriptor(row))
	}
	return pools, nil
}

// ListPoolsForAccount fetches the pool set with the account's LP share
// balances populated.
func (c *Client) ListPoolsForAccount(ctx context.Context, accountID string) ([]model.PoolDescriptor, error) {
	var query struct {
		Pools []poolFields `graphql:"poolsByUser(account: $account)"`
	}
	variables := map[string]interface{}{
		"account": graphql.String(accountID),
	}
	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("list pools for account %s: %w", accountID, err)
	}

	pools := make([]model.PoolDescriptor, 0, len(query.Pools))
	for _, row := range query.Pools {
		pools = append(pools, toPoolDescriptor(row))
	}
	return pools, nil
}

// ListTokens fetches the token registry.
func (c *Client) ListTokens(ctx context.Context) ([]model.TokenDescriptor, error) {
	var query struct {
		Tokens []tokenFields `graphql:"tokens"`
	}
	if err := c.gql.Query(ctx, &query, nil); err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	tokens := make([]model.TokenDescriptor, 0, len(query.Tokens))
	for _, row := range query.Tokens {
		tokens = append(tokens, toTokenDescriptor(row))
	}
	return tokens, nil
}

func toPoolDescriptor(row poolFields) model.PoolDescriptor {
	return model.PoolDescriptor{
		PairAddress:    string(row.PairAddress),
		Token0:         toTokenDescriptor(row.Token0),
		Token1:         toTokenDescriptor(row.Token1),
		Token0Amount:   string(row.Token0Amount),
		Token1Amount:   string(row.Token1Amount),
		TotalSupply:    string(row.PairSupply),
		CallerLPShares: string(row.LPShares),
	}
}

func toTokenDescriptor(row tokenFields) model.TokenDescriptor {
	return model.TokenDescriptor{
		LedgerID: string(row.ID),
		Address:  string(row.Address),
		Symbol:   string(row.Symbol),
		Decimals: int(row.Decimals),
		Standard: toStandard(string(row.Type)),
	}
}

func toStandard(indexerType string) model.TokenStandard {
	switch indexerType {
	case "HBAR", "NATIVE":
		return model.StandardNative
	case "HTS", "LEDGER_NATIVE_TOKEN":
		return model.StandardLedgerNative
	default:
		return model.StandardERC20
	}
}
