// Package polymarket implements the trade history source against the
// Polymarket Data API.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/models"
)

// DefaultBaseURL is the public Data API endpoint.
const DefaultBaseURL = "https://data-api.polymarket.com"

const defaultTimeout = 15 * time.Second

// Client is a read-only Data API client. It serves trade and position
// history; order placement goes through the execution boundary instead.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fetchLimit int
}

// NewClient creates a Data API client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string, fetchLimit int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if fetchLimit <= 0 {
		fetchLimit = 100
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		fetchLimit: fetchLimit,
	}
}

// wireTrade is the Data API trade shape, reduced to the fields we consume.
type wireTrade struct {
	TransactionHash string  `json:"transactionHash"`
	ProxyWallet     string  `json:"proxyWallet"`
	ConditionID     string  `json:"conditionId"`
	Asset           string  `json:"asset"`
	Side            string  `json:"side"`
	Outcome         string  `json:"outcome"`
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	Timestamp       int64   `json:"timestamp"`
	Market          struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	} `json:"market"`
}

// wirePosition is the Data API position shape, reduced likewise.
type wirePosition struct {
	ProxyWallet  string  `json:"proxyWallet"`
	ConditionID  string  `json:"conditionId"`
	Asset        string  `json:"asset"`
	Outcome      string  `json:"outcome"`
	Size         float64 `json:"size"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
	CashPnL      float64 `json:"cashPnl"`
	Redeemable   bool    `json:"redeemable"`
}

// GetTrades returns the wallet's trades since the given time, newest first
// as the API serves them.
func (c *Client) GetTrades(ctx context.Context, wallet models.Wallet, since time.Time) ([]models.Trade, error) {
	params := url.Values{}
	params.Set("user", string(wallet))
	params.Set("limit", strconv.Itoa(c.fetchLimit))
	if !since.IsZero() {
		params.Set("from", strconv.FormatInt(since.Unix(), 10))
	}

	var raw []wireTrade
	if err := c.get(ctx, "/trades", params, &raw); err != nil {
		return nil, apperrors.NewDataSourceError("get_trades", string(wallet), err)
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, models.Trade{
			ID:            t.TransactionHash,
			Wallet:        models.Wallet(t.ProxyWallet),
			MarketID:      marketID(t.ConditionID, t.Market.Slug),
			Side:          models.TradeSide(t.Side),
			Outcome:       outcomeID(t.Outcome, t.Asset),
			Size:          t.Size,
			Price:         t.Price,
			NotionalValue: t.Size * t.Price,
			Timestamp:     time.Unix(t.Timestamp, 0),
		})
	}
	return trades, nil
}

// GetPositions returns the wallet's positions, open and closed.
func (c *Client) GetPositions(ctx context.Context, wallet models.Wallet) ([]models.Position, error) {
	params := url.Values{}
	params.Set("user", string(wallet))
	params.Set("limit", strconv.Itoa(c.fetchLimit))

	var raw []wirePosition
	if err := c.get(ctx, "/positions", params, &raw); err != nil {
		return nil, apperrors.NewDataSourceError("get_positions", string(wallet), err)
	}

	positions := make([]models.Position, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, models.Position{
			Wallet:       models.Wallet(p.ProxyWallet),
			MarketID:     p.ConditionID,
			Outcome:      outcomeID(p.Outcome, p.Asset),
			Size:         p.Size,
			InitialValue: p.InitialValue,
			CurrentValue: p.CurrentValue,
			CashPnL:      p.CashPnL,
			IsOpen:       !p.Redeemable && p.Size > 0,
		})
	}
	return positions, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return apperrors.ErrRateLimited
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// marketID prefers the condition id; the slug is the fallback the API uses
// in older records.
func marketID(conditionID, slug string) string {
	if conditionID != "" {
		return conditionID
	}
	return slug
}

// outcomeID prefers the human outcome name, falling back to the token id.
func outcomeID(outcome, asset string) string {
	if outcome != "" {
		return outcome
	}
	return asset
}
