// Package cli provides the command-line interface for the copy-trading engine.
package cli

import (
	"fmt"
	"time"

	"polymarket-copytrader/internal/models"
)

// FormatUSD formats a dollar amount with thousands separators.
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := int64(amount)
	cents := int64((amount-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}

	result := fmt.Sprintf("$%s.%02d", groupThousands(whole), cents)
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	result := s[len(s)-3:]
	s = s[:len(s)-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "," + result
		s = s[:len(s)-3]
	}
	return s + "," + result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatUSD(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatShares formats a share quantity, dropping trailing zeros.
func FormatShares(size float64) string {
	if size == float64(int64(size)) {
		return fmt.Sprintf("%d", int64(size))
	}
	return fmt.Sprintf("%.2f", size)
}

// FormatTier renders a tier name.
func FormatTier(tier models.Tier) string {
	if tier == "" {
		return string(models.TierBeginner)
	}
	return string(tier)
}

// FormatDuration renders a duration in whole days or hours.
func FormatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.0fm", d.Minutes())
}

// FormatTime renders a timestamp in local time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
