package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/executor"
	"polymarket-copytrader/internal/exposure"
	"polymarket-copytrader/internal/logging"
	"polymarket-copytrader/internal/models"
)

// Dispatcher turns accepted copy intents into order submissions and settles
// the ledger according to the result. Failures are terminal for the trade
// that produced them: the reservation is released, the failure recorded,
// and no retry is attempted.
type Dispatcher struct {
	executor executor.OrderExecutor
	ledger   *exposure.Ledger
	mirrors  *MirrorBook
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(exec executor.OrderExecutor, ledger *exposure.Ledger, mirrors *MirrorBook, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		executor: exec,
		ledger:   ledger,
		mirrors:  mirrors,
		logger:   logger,
	}
}

// Dispatch submits the intent and returns the resulting CopyRecord. The
// record is always produced, success or failure; the returned error is
// non-nil only for failures, so callers can count them against safety
// limits.
func (d *Dispatcher) Dispatch(ctx context.Context, intent models.CopyOrderIntent) (*models.CopyRecord, error) {
	result, err := d.executor.SubmitOrder(ctx, executor.OrderRequest{
		MarketID: intent.MarketID,
		Outcome:  intent.Outcome,
		Side:     intent.Side,
		Size:     intent.Size,
		Price:    intent.Price,
	})
	if err == nil && result != nil && !result.Success {
		err = apperrors.NewExecutionError(intent.FollowID, intent.SourceTradeID, result.Message, nil)
	}

	if err != nil {
		d.settleFailure(intent)
		logging.LogExecutionFailure(d.logger, intent.FollowID, intent.SourceTradeID, err)
		return &models.CopyRecord{
			FollowID:      intent.FollowID,
			SourceTradeID: intent.SourceTradeID,
			Decision:      models.DecisionFailed,
			Reason:        err.Error(),
			Timestamp:     time.Now(),
		}, err
	}

	record := &models.CopyRecord{
		FollowID:      intent.FollowID,
		SourceTradeID: intent.SourceTradeID,
		Decision:      models.DecisionCopied,
		CopiedSize:    intent.Size,
		CopiedValue:   intent.Value(),
		OrderID:       result.OrderID,
		Timestamp:     time.Now(),
	}

	if intent.ClosesPosition {
		pos, ok := d.mirrors.Close(intent.FollowID, intent.MarketID, intent.Outcome)
		if ok {
			d.ledger.ReleaseCommitted(intent.FollowID, pos.Value)
			record.RealizedPnL = intent.Value() - pos.Value
		}
	} else {
		d.ledger.Commit(intent.FollowID, intent.Value())
		d.mirrors.Open(intent.FollowID, intent.MarketID, intent.Outcome, intent.Size, intent.Value())
	}

	logging.LogCopy(d.logger, intent.FollowID, intent.SourceTradeID, intent.MarketID, intent.Size, intent.Value())
	return record, nil
}

// settleFailure releases whatever the intent held. Opening intents hold a
// reservation; closing intents hold nothing.
func (d *Dispatcher) settleFailure(intent models.CopyOrderIntent) {
	if !intent.ClosesPosition {
		d.ledger.Release(intent.FollowID, intent.Value())
	}
}
