// Package models provides domain models for the copy-trading engine.
package models

import (
	"time"
)

// Wallet is an opaque on-chain address identifying a trader or follower.
type Wallet string

// TradeSide represents the side of a trade or order.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Opposite returns the opposing side.
func (s TradeSide) Opposite() TradeSide {
	if s == TradeSideBuy {
		return TradeSideSell
	}
	return TradeSideBuy
}

// Trade is an immutable historical fact observed from the trade history
// source. It is never mutated once observed.
type Trade struct {
	ID            string // unique transaction identifier
	Wallet        Wallet
	MarketID      string
	Side          TradeSide
	Outcome       string
	Size          float64
	Price         float64
	NotionalValue float64
	Timestamp     time.Time
}

// Notional returns the trade's notional value, deriving it from size and
// price when the source did not populate the field.
func (t Trade) Notional() float64 {
	if t.NotionalValue > 0 {
		return t.NotionalValue
	}
	return t.Size * t.Price
}

// Position represents a trader's position in a market, open or closed.
type Position struct {
	Wallet       Wallet
	MarketID     string
	Outcome      string
	Size         float64
	InitialValue float64
	CurrentValue float64
	CashPnL      float64
	IsOpen       bool
}
