package tracker

import (
	"testing"

	"polymarket-copytrader/internal/models"
)

func TestObserveCountsByDecision(t *testing.T) {
	tr := NewTracker()
	tr.Track("f1")

	tr.Observe(&models.CopyRecord{FollowID: "f1", Decision: models.DecisionCopied, CopiedValue: 40})
	tr.Observe(&models.CopyRecord{FollowID: "f1", Decision: models.DecisionCopied, CopiedValue: 60, RealizedPnL: 12})
	tr.Observe(&models.CopyRecord{FollowID: "f1", Decision: models.DecisionFailed})
	tr.Observe(&models.CopyRecord{FollowID: "f1", Decision: models.DecisionSkipped, Reason: string(models.SkipExposureExceeded)})
	tr.Observe(&models.CopyRecord{FollowID: "f1", Decision: models.DecisionSkipped, Reason: string(models.SkipExposureExceeded)})
	tr.Observe(&models.CopyRecord{FollowID: "f1", Decision: models.DecisionSkipped, Reason: string(models.SkipMarketFiltered)})

	snap, ok := tr.Snapshot("f1")
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.CopiedTrades != 2 {
		t.Errorf("CopiedTrades = %d, want 2", snap.CopiedTrades)
	}
	if snap.VolumeCopied != 100 {
		t.Errorf("VolumeCopied = %v, want 100", snap.VolumeCopied)
	}
	if snap.AvgVolumePerTrade != 50 {
		t.Errorf("AvgVolumePerTrade = %v, want 50", snap.AvgVolumePerTrade)
	}
	if snap.Failures != 1 {
		t.Errorf("Failures = %d, want 1", snap.Failures)
	}
	if snap.RealizedPnL != 12 {
		t.Errorf("RealizedPnL = %v, want 12", snap.RealizedPnL)
	}
	if snap.Skips[models.SkipExposureExceeded] != 2 {
		t.Errorf("exposure skips = %d, want 2", snap.Skips[models.SkipExposureExceeded])
	}
	if snap.Skips[models.SkipMarketFiltered] != 1 {
		t.Errorf("market skips = %d, want 1", snap.Skips[models.SkipMarketFiltered])
	}
}

func TestObserveUntrackedFollowStartsCounters(t *testing.T) {
	tr := NewTracker()
	tr.Observe(&models.CopyRecord{FollowID: "f9", Decision: models.DecisionCopied, CopiedValue: 5})

	snap, ok := tr.Snapshot("f9")
	if !ok {
		t.Fatal("expected implicit tracking")
	}
	if snap.CopiedTrades != 1 {
		t.Errorf("CopiedTrades = %d, want 1", snap.CopiedTrades)
	}
}

func TestForget(t *testing.T) {
	tr := NewTracker()
	tr.Track("f1")
	tr.Forget("f1")

	if _, ok := tr.Snapshot("f1"); ok {
		t.Error("expected no snapshot after Forget")
	}
}
