// Package copier is the orchestration layer: it owns the follow lifecycle
// and runs one trade monitor per active follow, wiring the feed poller into
// the decision engine, dispatcher, store and tracker.
package copier

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"polymarket-copytrader/internal/config"
	"polymarket-copytrader/internal/engine"
	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/executor"
	"polymarket-copytrader/internal/exposure"
	"polymarket-copytrader/internal/feed"
	"polymarket-copytrader/internal/logging"
	"polymarket-copytrader/internal/models"
	"polymarket-copytrader/internal/scoring"
	"polymarket-copytrader/internal/store"
	"polymarket-copytrader/internal/tracker"
	"polymarket-copytrader/pkg/utils"
)

// FollowRequest describes a new follow relationship. A nil Config means the
// configured defaults apply.
type FollowRequest struct {
	Follower models.Wallet
	Source   models.Wallet
	Config   *models.FollowConfig
}

// FollowStatus is the aggregate status view for one follow.
type FollowStatus struct {
	Follow        models.Follow
	Exposure      models.ExposureState
	Performance   tracker.PerformanceSnapshot
	OpenPositions []engine.MirroredPosition
}

// followState is the in-memory state for one follow. failures counts
// consecutive execution failures and is only touched by the follow's own
// monitor goroutine.
type followState struct {
	follow   *models.Follow
	cancel   context.CancelFunc
	done     chan struct{}
	failures int
}

// Copier manages follow relationships and drives the copy pipeline.
type Copier struct {
	config     *config.Config
	store      store.DataStore
	source     feed.TradeSource
	scoring    *scoring.Engine
	ledger     *exposure.Ledger
	mirrors    *engine.MirrorBook
	decider    *engine.DecisionEngine
	dispatcher *engine.Dispatcher
	tracker    *tracker.Tracker
	logger     zerolog.Logger

	mu      sync.Mutex
	follows map[string]*followState
	running bool
	baseCtx context.Context
	group   *errgroup.Group
}

// New creates a copier. The source should already be rate limited and
// circuit protected; the copier does not add its own throttling.
func New(cfg *config.Config, st store.DataStore, source feed.TradeSource, exec executor.OrderExecutor, logger zerolog.Logger) *Copier {
	ledger := exposure.NewLedger()
	mirrors := engine.NewMirrorBook()
	return &Copier{
		config:     cfg,
		store:      st,
		source:     source,
		scoring:    scoring.NewEngine(source, logger),
		ledger:     ledger,
		mirrors:    mirrors,
		decider:    engine.NewDecisionEngine(ledger, mirrors, cfg.Scoring.WhaleThreshold),
		dispatcher: engine.NewDispatcher(exec, ledger, mirrors, logger),
		tracker:    tracker.NewTracker(),
		logger:     logger,
		follows:    make(map[string]*followState),
	}
}

// Scoring exposes the trader scoring engine built over the same source.
func (c *Copier) Scoring() *scoring.Engine {
	return c.scoring
}

// Run resumes all active follows from the store, starts a monitor for each,
// and blocks until ctx is cancelled. Monitors started later through
// CreateFollow join the same group.
func (c *Copier) Run(ctx context.Context) error {
	follows, err := c.store.GetActiveFollows(ctx)
	if err != nil {
		return fmt.Errorf("loading active follows: %w", err)
	}

	c.mu.Lock()
	c.running = true
	c.baseCtx = ctx
	c.group = &errgroup.Group{}
	for i := range follows {
		follow := follows[i]
		c.registerLocked(&follow)
		c.startMonitorLocked(c.follows[follow.ID])
	}
	c.mu.Unlock()

	c.logger.Info().Int("follows", len(follows)).Msg("Copy engine started")

	<-ctx.Done()

	c.mu.Lock()
	c.running = false
	for _, state := range c.follows {
		if state.cancel != nil {
			state.cancel()
		}
	}
	group := c.group
	c.mu.Unlock()

	if group != nil {
		if err := group.Wait(); err != nil {
			return err
		}
	}
	c.logger.Info().Msg("Copy engine stopped")
	return ctx.Err()
}

// CreateFollow validates, persists and activates a new follow relationship.
// If the engine is running, a monitor starts immediately.
func (c *Copier) CreateFollow(ctx context.Context, req FollowRequest) (*models.Follow, error) {
	cfg := c.defaultFollowConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := validateFollowConfig(cfg); err != nil {
		return nil, err
	}
	if req.Follower == "" || req.Source == "" {
		return nil, apperrors.NewConfigurationError("wallet", "", "follower and source wallets are required")
	}
	if req.Follower == req.Source {
		return nil, apperrors.NewConfigurationError("source", string(req.Source), "cannot follow own wallet")
	}

	// The store is the authority on uniqueness: follows created by other
	// processes are not in c.follows. A race past this check still fails
	// at SaveFollow on the store's unique active-pair index.
	active, err := c.store.GetActiveFollows(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking existing follows: %w", err)
	}
	for _, f := range active {
		if f.Follower == req.Follower && f.Source == req.Source {
			return nil, apperrors.ErrAlreadyFollowing
		}
	}

	follow := &models.Follow{
		ID:        newFollowID(),
		Follower:  req.Follower,
		Source:    req.Source,
		Config:    cfg,
		Status:    models.FollowActive,
		CreatedAt: time.Now(),
	}

	if err := c.store.SaveFollow(ctx, follow); err != nil {
		return nil, fmt.Errorf("saving follow: %w", err)
	}

	c.mu.Lock()
	c.registerLocked(follow)
	if c.running {
		c.startMonitorLocked(c.follows[follow.ID])
	}
	c.mu.Unlock()

	c.logger.Info().
		Str("follow_id", follow.ID).
		Str("source", string(follow.Source)).
		Float64("copy_pct", cfg.CopyPercentage).
		Float64("max_exposure", cfg.MaxTotalExposure).
		Msg("Follow created")
	return follow, nil
}

// UpdateFollowConfig atomically replaces a follow's configuration. Trades
// already being evaluated finish under the old config; the next trade sees
// the new one. Follows not held in memory are read back from the store.
func (c *Copier) UpdateFollowConfig(ctx context.Context, followID string, cfg models.FollowConfig) error {
	if err := validateFollowConfig(cfg); err != nil {
		return err
	}

	c.mu.Lock()
	state, ok := c.follows[followID]
	if ok {
		if !state.follow.IsActive() {
			c.mu.Unlock()
			return apperrors.ErrFollowStopped
		}
		state.follow.Config = cfg
		follow := *state.follow
		c.mu.Unlock()

		c.ledger.Register(followID, cfg.MaxTotalExposure)

		if err := c.store.UpdateFollow(ctx, &follow); err != nil {
			return fmt.Errorf("updating follow: %w", err)
		}
		c.logger.Info().Str("follow_id", followID).Msg("Follow config updated")
		return nil
	}
	c.mu.Unlock()

	follow, err := c.store.GetFollow(ctx, followID)
	if err != nil {
		return err
	}
	if !follow.IsActive() {
		return apperrors.ErrFollowStopped
	}
	follow.Config = cfg
	if err := c.store.UpdateFollow(ctx, follow); err != nil {
		return fmt.Errorf("updating follow: %w", err)
	}
	c.logger.Info().Str("follow_id", followID).Msg("Follow config updated")
	return nil
}

// StopFollow stops a follow's monitor, waits for any in-flight copy to
// finish, releases its exposure accounting and marks it stopped. Historical
// copy records are retained. Follows active in the store but not held in
// memory are stopped directly against the store.
func (c *Copier) StopFollow(ctx context.Context, followID string) error {
	c.mu.Lock()
	state, ok := c.follows[followID]
	if !ok {
		c.mu.Unlock()
		return c.stopStoredFollow(ctx, followID)
	}
	if !state.follow.IsActive() {
		c.mu.Unlock()
		return apperrors.ErrFollowStopped
	}
	cancel := state.cancel
	done := state.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	now := time.Now()
	c.mu.Lock()
	state.follow.Status = models.FollowStopped
	state.follow.StoppedAt = &now
	follow := *state.follow
	c.mu.Unlock()

	c.ledger.Remove(followID)
	c.mirrors.DropFollow(followID)

	if err := c.store.UpdateFollow(ctx, &follow); err != nil {
		return fmt.Errorf("updating follow: %w", err)
	}
	c.logger.Info().Str("follow_id", followID).Msg("Follow stopped")
	return nil
}

// stopStoredFollow marks a follow stopped when no monitor owns it, which is
// the normal case for a management command running in its own process.
func (c *Copier) stopStoredFollow(ctx context.Context, followID string) error {
	follow, err := c.store.GetFollow(ctx, followID)
	if err != nil {
		return err
	}
	if !follow.IsActive() {
		return apperrors.ErrFollowStopped
	}

	now := time.Now()
	follow.Status = models.FollowStopped
	follow.StoppedAt = &now
	if err := c.store.UpdateFollow(ctx, follow); err != nil {
		return fmt.Errorf("updating follow: %w", err)
	}
	c.logger.Info().Str("follow_id", followID).Msg("Follow stopped")
	return nil
}

// Following returns all active follows from the store, including ones
// created by other processes.
func (c *Copier) Following(ctx context.Context) ([]models.Follow, error) {
	return c.store.GetActiveFollows(ctx)
}

// FollowStatus returns the aggregate status for one follow. Stopped follows
// not held in memory are read back from the store.
func (c *Copier) FollowStatus(ctx context.Context, followID string) (*FollowStatus, error) {
	c.mu.Lock()
	state, ok := c.follows[followID]
	var follow models.Follow
	if ok {
		follow = *state.follow
	}
	c.mu.Unlock()

	if !ok {
		stored, err := c.store.GetFollow(ctx, followID)
		if err != nil {
			return nil, err
		}
		follow = *stored
	}

	status := &FollowStatus{Follow: follow}
	if exp, ok := c.ledger.State(followID); ok {
		status.Exposure = exp
	}
	if perf, ok := c.tracker.Snapshot(followID); ok {
		status.Performance = perf
	}
	status.OpenPositions = c.mirrors.FollowPositions(followID)
	return status, nil
}

// Records returns stored copy records matching the filter.
func (c *Copier) Records(ctx context.Context, filter store.RecordFilter) ([]models.CopyRecord, error) {
	return c.store.GetCopyRecords(ctx, filter)
}

// registerLocked wires a follow into the ledger and tracker. Caller holds mu.
func (c *Copier) registerLocked(follow *models.Follow) {
	c.follows[follow.ID] = &followState{follow: follow}
	c.ledger.Register(follow.ID, follow.Config.MaxTotalExposure)
	c.tracker.Track(follow.ID)
}

// startMonitorLocked launches the poll loop for one follow. Caller holds mu
// and has verified c.running.
func (c *Copier) startMonitorLocked(state *followState) {
	ctx, cancel := context.WithCancel(c.baseCtx)
	state.cancel = cancel
	state.done = make(chan struct{})

	follow := state.follow
	pollerCfg := feed.PollerConfig{
		Interval:       c.config.Poller.Interval,
		BackoffInitial: c.config.Poller.BackoffInitial,
		BackoffMax:     c.config.Poller.BackoffMax,
		RecencySetSize: c.config.Poller.RecencySetSize,
	}
	poller := feed.NewPoller(follow.ID, follow.Source, c.source, c.store, pollerCfg, c.logger)

	c.group.Go(func() error {
		defer close(state.done)
		err := poller.Run(ctx, c.handleTrade(state))
		if err != nil && ctx.Err() != nil {
			// Stopped deliberately, not a monitor fault.
			return nil
		}
		return err
	})
}

// handleTrade builds the per-follow trade handler. Handlers run serially in
// the follow's monitor goroutine; a returned error keeps the poller's
// high-water mark in place so the trade is redelivered.
func (c *Copier) handleTrade(state *followState) feed.TradeHandler {
	return func(ctx context.Context, trade models.Trade) error {
		c.mu.Lock()
		follow := *state.follow
		c.mu.Unlock()

		seen, err := c.store.HasCopyRecord(ctx, follow.ID, trade.ID)
		if err != nil {
			return fmt.Errorf("checking copy record: %w", err)
		}
		if seen {
			return nil
		}

		stats := c.sourceStats(ctx, &follow)
		decision := c.decider.Evaluate(&follow, trade, stats)

		if decision.WhaleTrade {
			logging.LogWhale(c.logger, string(trade.Wallet), trade.ID, trade.MarketID, trade.Notional())
		}

		if !decision.Accepted {
			record := &models.CopyRecord{
				FollowID:      follow.ID,
				SourceTradeID: trade.ID,
				Decision:      models.DecisionSkipped,
				Reason:        string(decision.Reason),
				WhaleTrade:    decision.WhaleTrade,
				Timestamp:     time.Now(),
			}
			if err := c.saveRecord(ctx, record); err != nil {
				return fmt.Errorf("saving skip record: %w", err)
			}
			c.tracker.Observe(record)
			logging.LogSkip(c.logger, follow.ID, trade.ID, string(decision.Reason))
			return nil
		}

		record, dispatchErr := c.dispatcher.Dispatch(ctx, *decision.Intent)
		record.WhaleTrade = decision.WhaleTrade

		// The dispatch has already moved exposure and the mirror book; the
		// record must land even when the monitor is shutting down, or the
		// trade would be redelivered and dispatched a second time.
		if err := c.saveRecord(context.WithoutCancel(ctx), record); err != nil {
			return fmt.Errorf("saving copy record: %w", err)
		}
		c.tracker.Observe(record)

		if dispatchErr != nil {
			state.failures++
			max := c.config.Safety.MaxConsecutiveFailures
			if max > 0 && state.failures >= max {
				c.logger.Error().
					Str("follow_id", follow.ID).
					Int("consecutive_failures", state.failures).
					Msg("Stopping follow after repeated execution failures")
				go func() {
					if err := c.StopFollow(context.Background(), follow.ID); err != nil {
						c.logger.Error().Err(err).Str("follow_id", follow.ID).Msg("Auto-stop failed")
					}
				}()
			}
			// The failure is recorded; the trade is never retried.
			return nil
		}
		state.failures = 0
		return nil
	}
}

// sourceStats fetches a fresh snapshot of the source trader when the follow
// gates on risk or tier. Scoring failures do not block copying; the gate is
// simply skipped for that trade.
func (c *Copier) sourceStats(ctx context.Context, follow *models.Follow) *models.TraderStatsSnapshot {
	if follow.Config.MaxRiskScore <= 0 && follow.Config.MinTier == "" {
		return nil
	}
	stats, err := c.scoring.TraderStats(ctx, follow.Source, c.config.Scoring.DefaultLookbackDays)
	if err != nil {
		c.logger.Warn().Err(err).Str("follow_id", follow.ID).Msg("Source scoring unavailable, skipping gate")
		return nil
	}
	return stats
}

// saveRecord persists a copy record, retrying transient store failures.
// SaveCopyRecord is idempotent, so a retry after an ambiguous failure is safe.
func (c *Copier) saveRecord(ctx context.Context, record *models.CopyRecord) error {
	return utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
		return c.store.SaveCopyRecord(ctx, record)
	})
}

func (c *Copier) defaultFollowConfig() models.FollowConfig {
	return models.FollowConfig{
		MaxPositionSize:    c.config.Copy.MaxPositionSize,
		CopyPercentage:     c.config.Copy.CopyPercentage,
		MaxTotalExposure:   c.config.Copy.MaxTotalExposure,
		MinTradeConfidence: c.config.Copy.MinTradeConfidence,
		AutoExit:           c.config.Copy.AutoExit,
	}
}

func validateFollowConfig(cfg models.FollowConfig) error {
	if cfg.CopyPercentage <= 0 || cfg.CopyPercentage > 100 {
		return apperrors.NewConfigurationError("copy_percentage", fmt.Sprintf("%.2f", cfg.CopyPercentage), "must be in (0, 100]")
	}
	if cfg.MaxTotalExposure <= 0 {
		return apperrors.NewConfigurationError("max_total_exposure", fmt.Sprintf("%.2f", cfg.MaxTotalExposure), "must be positive")
	}
	if cfg.MaxPositionSize < 0 {
		return apperrors.NewConfigurationError("max_position_size", fmt.Sprintf("%.2f", cfg.MaxPositionSize), "cannot be negative")
	}
	if cfg.MinTradeConfidence < 0 {
		return apperrors.NewConfigurationError("min_trade_confidence", fmt.Sprintf("%.2f", cfg.MinTradeConfidence), "cannot be negative")
	}
	for _, market := range cfg.MarketAllowList {
		for _, denied := range cfg.MarketDenyList {
			if market == denied {
				return apperrors.NewConfigurationError("market_filters", market, "market appears in both allow and deny lists")
			}
		}
	}
	return nil
}

func newFollowID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("follow_%d", time.Now().UnixNano())
	}
	return "follow_" + hex.EncodeToString(b)
}
