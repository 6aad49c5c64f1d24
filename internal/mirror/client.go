// Package mirror is a thin client for the ledger's mirror-node REST API.
// It serves the two read paths the engine needs: ledger-native token
// allowances and account balances.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client queries a mirror-node REST endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a mirror client. A nil httpClient gets a default timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type tokenAllowancesResponse struct {
	Allowances []struct {
		Amount  int64  `json:"amount"`
		TokenID string `json:"token_id"`
	} `json:"allowances"`
}

// TokenAllowance returns the remaining ledger-native token allowance granted
// by owner to spender for the given token, in the token's smallest unit.
// No allowance on record means zero, not an error.
func (c *Client) TokenAllowance(ctx context.Context, ownerID, spenderID, tokenID string) (*big.Int, error) {
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%s/allowances/tokens?spender.id=%s&token.id=%s",
		c.baseURL, url.PathEscape(ownerID), url.QueryEscape(spenderID), url.QueryEscape(tokenID))

	var decoded tokenAllowancesResponse
	if err := c.getJSON(ctx, endpoint, &decoded); err != nil {
		return nil, fmt.Errorf("token allowance %s->%s for %s: %w", ownerID, spenderID, tokenID, err)
	}

	total := new(big.Int)
	for _, allowance := range decoded.Allowances {
		if allowance.TokenID == tokenID && allowance.Amount > 0 {
			total.Add(total, big.NewInt(allowance.Amount))
		}
	}
	return total, nil
}

// TokenBalance is one token position in an account balance snapshot.
type TokenBalance struct {
	TokenID string `json:"token_id"`
	Balance int64  `json:"balance"`
}

// AccountBalance is an account's native balance plus token positions.
type AccountBalance struct {
	Balance int64          `json:"balance"`
	Tokens  []TokenBalance `json:"tokens"`
}

type balancesResponse struct {
	Balances []struct {
		Account string         `json:"account"`
		Balance int64          `json:"balance"`
		Tokens  []TokenBalance `json:"tokens"`
	} `json:"balances"`
}

// AccountBalances fetches the account's native and token balances.
func (c *Client) AccountBalances(ctx context.Context, accountID string) (AccountBalance, error) {
	endpoint := fmt.Sprintf("%s/api/v1/balances?account.id=%s", c.baseURL, url.QueryEscape(accountID))

	var decoded balancesResponse
	if err := c.getJSON(ctx, endpoint, &decoded); err != nil {
		return AccountBalance{}, fmt.Errorf("balances for %s: %w", accountID, err)
	}
	if len(decoded.Balances) == 0 {
		return AccountBalance{}, fmt.Errorf("no balance record for %s", accountID)
	}

	entry := decoded.Balances[0]
	return AccountBalance{Balance: entry.Balance, Tokens: entry.Tokens}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
