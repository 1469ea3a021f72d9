package polymarket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/models"
)

func TestGetTradesMapsWireFields(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"transactionHash": "0xhash1",
			"proxyWallet": "0xtrader",
			"conditionId": "cond-1",
			"asset": "token-1",
			"side": "BUY",
			"outcome": "Yes",
			"size": 1000,
			"price": 0.2,
			"timestamp": 1700000000,
			"market": {"slug": "us-election", "title": "US Election"}
		}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 50)
	since := time.Unix(1699990000, 0)
	trades, err := c.GetTrades(context.Background(), "0xtrader", since)
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}

	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	trade := trades[0]
	if trade.ID != "0xhash1" {
		t.Errorf("ID = %s, want 0xhash1", trade.ID)
	}
	if trade.Wallet != "0xtrader" {
		t.Errorf("Wallet = %s, want 0xtrader", trade.Wallet)
	}
	if trade.MarketID != "cond-1" {
		t.Errorf("MarketID = %s, want cond-1", trade.MarketID)
	}
	if trade.Side != models.TradeSideBuy {
		t.Errorf("Side = %s, want BUY", trade.Side)
	}
	if trade.Outcome != "Yes" {
		t.Errorf("Outcome = %s, want Yes", trade.Outcome)
	}
	if trade.Size != 1000 || trade.Price != 0.2 {
		t.Errorf("size/price = %v/%v, want 1000/0.2", trade.Size, trade.Price)
	}
	if !trade.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Timestamp = %v, want unix 1700000000", trade.Timestamp)
	}

	for _, want := range []string{"user=0xtrader", "limit=50", "from=1699990000"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestGetPositionsMapsWireFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{
			"proxyWallet": "0xtrader",
			"conditionId": "cond-1",
			"asset": "token-1",
			"outcome": "No",
			"size": 500,
			"initialValue": 125,
			"currentValue": 150,
			"cashPnl": 25,
			"redeemable": false
		}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 100)
	positions, err := c.GetPositions(context.Background(), "0xtrader")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}

	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	pos := positions[0]
	if pos.MarketID != "cond-1" || pos.Outcome != "No" {
		t.Errorf("market/outcome = %s/%s, want cond-1/No", pos.MarketID, pos.Outcome)
	}
	if pos.CashPnL != 25 || pos.InitialValue != 125 {
		t.Errorf("pnl/initial = %v/%v, want 25/125", pos.CashPnL, pos.InitialValue)
	}
	if !pos.IsOpen {
		t.Error("expected open position")
	}
}

func TestGetTradesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, 100)
	_, err := c.GetTrades(context.Background(), "0xtrader", time.Time{})
	if !errors.Is(err, apperrors.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestGetTradesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, 100)
	_, err := c.GetTrades(context.Background(), "0xtrader", time.Time{})
	if err == nil {
		t.Fatal("expected error on 500")
	}
	var dsErr *apperrors.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Errorf("error type = %T, want DataSourceError", err)
	}
}
