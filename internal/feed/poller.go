package feed

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/logging"
	"polymarket-copytrader/internal/models"
	"polymarket-copytrader/pkg/utils"
)

// TradeHandler processes one emitted new-trade event. Handlers run strictly
// in emission order; the poller does not advance its high-water mark past a
// trade whose handler returned an error, so the event is redelivered on the
// next cycle.
type TradeHandler func(ctx context.Context, trade models.Trade) error

// MarkStore persists a poller's high-water mark so at-least-once delivery
// holds across restarts.
type MarkStore interface {
	LoadMark(followID string) (time.Time, error)
	SaveMark(followID string, mark time.Time) error
}

// PollerConfig holds per-poller tuning.
type PollerConfig struct {
	Interval       time.Duration
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	RecencySetSize int
}

// DefaultPollerConfig returns the default poller configuration.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:       30 * time.Second,
		BackoffInitial: 2 * time.Second,
		BackoffMax:     5 * time.Minute,
		RecencySetSize: 512,
	}
}

// Poller watches one source wallet on behalf of one follow. Each active
// follow owns exactly one poller; pollers never share mutable state.
type Poller struct {
	followID string
	wallet   models.Wallet
	source   TradeSource
	marks    MarkStore
	config   PollerConfig
	logger   zerolog.Logger

	recent    *recencySet
	highWater time.Time
	failures  int
}

// NewPoller creates a poller for one follow relationship. marks may be nil,
// in which case the high-water mark starts at now and is not persisted.
func NewPoller(followID string, wallet models.Wallet, source TradeSource, marks MarkStore, cfg PollerConfig, logger zerolog.Logger) *Poller {
	p := &Poller{
		followID:  followID,
		wallet:    wallet,
		source:    source,
		marks:     marks,
		config:    cfg,
		logger:    logging.WithFollow(logger, followID),
		recent:    newRecencySet(cfg.RecencySetSize),
		highWater: time.Now(),
	}
	if marks != nil {
		if mark, err := marks.LoadMark(followID); err == nil && !mark.IsZero() {
			p.highWater = mark
		}
	}
	return p
}

// Run polls until the context is cancelled. Fetch failures back off
// exponentially (capped) and never abort the loop; the only way out is
// cancellation.
func (p *Poller) Run(ctx context.Context, handler TradeHandler) error {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// First poll happens immediately rather than one interval in.
	if err := p.poll(ctx, handler); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.poll(ctx, handler); err != nil {
				return err
			}
		}
	}
}

// poll runs one fetch-dedupe-emit cycle. It returns an error only when the
// context is cancelled.
func (p *Poller) poll(ctx context.Context, handler TradeHandler) error {
	start := time.Now()

	trades, err := p.source.GetTrades(ctx, p.wallet, p.highWater)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.failures++
		delay := utils.CalculateBackoff(p.failures-1, p.config.BackoffInitial, p.config.BackoffMax, 2.0)
		dsErr := apperrors.NewDataSourceError("get_trades", string(p.wallet), err)
		p.logger.Warn().Err(dsErr).Int("failures", p.failures).Dur("backoff", delay).Msg("Trade fetch failed, backing off")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			return nil
		}
	}
	p.failures = 0

	fresh := p.dedupe(trades)

	// Oldest first so downstream decisions see source order.
	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].Timestamp.Before(fresh[j].Timestamp)
	})

	emitted := 0
	for _, trade := range fresh {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := handler(ctx, trade); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Leave the high-water mark behind this trade; it will be
			// redelivered next cycle and the idempotency key downstream
			// keeps the retry safe.
			p.logger.Warn().Err(err).Str("trade_id", trade.ID).Msg("Handler rejected trade event, will redeliver")
			break
		}

		p.recent.Add(trade.ID)
		emitted++
		if trade.Timestamp.After(p.highWater) {
			p.highWater = trade.Timestamp
			p.persistMark()
		}
	}

	logging.LogPoll(p.logger, string(p.wallet), len(trades), emitted, time.Since(start))
	return nil
}

// dedupe filters out trades already seen or at/behind the high-water mark.
func (p *Poller) dedupe(trades []models.Trade) []models.Trade {
	fresh := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Timestamp.Before(p.highWater) {
			continue
		}
		if p.recent.Contains(t.ID) {
			continue
		}
		fresh = append(fresh, t)
	}
	return fresh
}

func (p *Poller) persistMark() {
	if p.marks == nil {
		return
	}
	if err := p.marks.SaveMark(p.followID, p.highWater); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to persist high-water mark")
	}
}

// HighWater returns the current high-water mark.
func (p *Poller) HighWater() time.Time {
	return p.highWater
}
