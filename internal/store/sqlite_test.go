package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "copytrader.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleFollow(id string) *models.Follow {
	return &models.Follow{
		ID:       id,
		Follower: "0xfollower",
		Source:   "0xsource",
		Config: models.FollowConfig{
			MaxPositionSize:    100,
			CopyPercentage:     10,
			MaxTotalExposure:   1000,
			MinTradeConfidence: 10,
			MarketDenyList:     []string{"election-2028"},
			AutoExit:           true,
		},
		Status:    models.FollowActive,
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

func TestFollowRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	follow := sampleFollow("f1")
	if err := s.SaveFollow(ctx, follow); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}

	got, err := s.GetFollow(ctx, "f1")
	if err != nil {
		t.Fatalf("GetFollow: %v", err)
	}
	if got.Follower != follow.Follower || got.Source != follow.Source {
		t.Errorf("wallets = %s/%s, want %s/%s", got.Follower, got.Source, follow.Follower, follow.Source)
	}
	if got.Config.CopyPercentage != 10 || got.Config.MaxTotalExposure != 1000 {
		t.Errorf("config = %+v, want original values", got.Config)
	}
	if len(got.Config.MarketDenyList) != 1 || got.Config.MarketDenyList[0] != "election-2028" {
		t.Errorf("deny list = %v, want [election-2028]", got.Config.MarketDenyList)
	}
	if !got.Config.AutoExit {
		t.Error("AutoExit lost in round trip")
	}
}

func TestGetFollowNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetFollow(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrFollowNotFound) {
		t.Fatalf("err = %v, want ErrFollowNotFound", err)
	}
}

func TestSaveFollowRejectsSecondActivePair(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveFollow(ctx, sampleFollow("f1")); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}
	// Same (follower, source) pair under a fresh id, as a second process
	// over the same database would produce.
	err := s.SaveFollow(ctx, sampleFollow("f2"))
	if !errors.Is(err, apperrors.ErrAlreadyFollowing) {
		t.Fatalf("err = %v, want ErrAlreadyFollowing", err)
	}

	follows, err := s.GetActiveFollows(ctx)
	if err != nil {
		t.Fatalf("GetActiveFollows: %v", err)
	}
	if len(follows) != 1 {
		t.Errorf("active follows = %d, want 1", len(follows))
	}
}

func TestSaveFollowAllowsRefollowAfterStop(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := sampleFollow("f1")
	if err := s.SaveFollow(ctx, first); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}

	now := time.Now()
	first.Status = models.FollowStopped
	first.StoppedAt = &now
	if err := s.UpdateFollow(ctx, first); err != nil {
		t.Fatalf("UpdateFollow: %v", err)
	}

	if err := s.SaveFollow(ctx, sampleFollow("f2")); err != nil {
		t.Errorf("SaveFollow after stop: %v, want success", err)
	}
}

func TestGetActiveFollowsExcludesStopped(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	active := sampleFollow("f1")
	stopped := sampleFollow("f2")
	now := time.Now()
	stopped.Status = models.FollowStopped
	stopped.StoppedAt = &now

	if err := s.SaveFollow(ctx, active); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}
	if err := s.SaveFollow(ctx, stopped); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}

	follows, err := s.GetActiveFollows(ctx)
	if err != nil {
		t.Fatalf("GetActiveFollows: %v", err)
	}
	if len(follows) != 1 || follows[0].ID != "f1" {
		t.Errorf("active follows = %+v, want only f1", follows)
	}
}

func TestUpdateFollow(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	follow := sampleFollow("f1")
	if err := s.SaveFollow(ctx, follow); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}

	follow.Config.CopyPercentage = 25
	now := time.Now().Truncate(time.Second)
	follow.Status = models.FollowStopped
	follow.StoppedAt = &now
	if err := s.UpdateFollow(ctx, follow); err != nil {
		t.Fatalf("UpdateFollow: %v", err)
	}

	got, err := s.GetFollow(ctx, "f1")
	if err != nil {
		t.Fatalf("GetFollow: %v", err)
	}
	if got.Config.CopyPercentage != 25 {
		t.Errorf("CopyPercentage = %v, want 25", got.Config.CopyPercentage)
	}
	if got.Status != models.FollowStopped || got.StoppedAt == nil {
		t.Errorf("status = %s stoppedAt = %v, want STOPPED with timestamp", got.Status, got.StoppedAt)
	}
}

func TestCopyRecordIdempotency(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	record := &models.CopyRecord{
		FollowID:      "f1",
		SourceTradeID: "t1",
		Decision:      models.DecisionCopied,
		CopiedSize:    100,
		CopiedValue:   20,
		OrderID:       "PAPER_1",
		Timestamp:     time.Now(),
	}

	if err := s.SaveCopyRecord(ctx, record); err != nil {
		t.Fatalf("SaveCopyRecord: %v", err)
	}
	// A redelivered trade writes the same key again; the first record wins.
	dup := *record
	dup.OrderID = "PAPER_2"
	if err := s.SaveCopyRecord(ctx, &dup); err != nil {
		t.Fatalf("SaveCopyRecord duplicate: %v", err)
	}

	records, err := s.GetCopyRecords(ctx, RecordFilter{FollowID: "f1"})
	if err != nil {
		t.Fatalf("GetCopyRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].OrderID != "PAPER_1" {
		t.Errorf("OrderID = %s, want the first write retained", records[0].OrderID)
	}

	seen, err := s.HasCopyRecord(ctx, "f1", "t1")
	if err != nil {
		t.Fatalf("HasCopyRecord: %v", err)
	}
	if !seen {
		t.Error("expected HasCopyRecord true")
	}
	seen, err = s.HasCopyRecord(ctx, "f1", "t2")
	if err != nil {
		t.Fatalf("HasCopyRecord: %v", err)
	}
	if seen {
		t.Error("expected HasCopyRecord false for unknown trade")
	}
}

func TestCopyRecordFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()

	records := []*models.CopyRecord{
		{FollowID: "f1", SourceTradeID: "t1", Decision: models.DecisionCopied, Timestamp: now.Add(-48 * time.Hour)},
		{FollowID: "f1", SourceTradeID: "t2", Decision: models.DecisionSkipped, Reason: string(models.SkipBelowConfidence), Timestamp: now.Add(-2 * time.Hour)},
		{FollowID: "f2", SourceTradeID: "t3", Decision: models.DecisionCopied, Timestamp: now.Add(-time.Hour)},
	}
	for _, r := range records {
		if err := s.SaveCopyRecord(ctx, r); err != nil {
			t.Fatalf("SaveCopyRecord: %v", err)
		}
	}

	got, err := s.GetCopyRecords(ctx, RecordFilter{FollowID: "f1"})
	if err != nil {
		t.Fatalf("GetCopyRecords: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("f1 records = %d, want 2", len(got))
	}

	got, err = s.GetCopyRecords(ctx, RecordFilter{Decision: models.DecisionCopied})
	if err != nil {
		t.Fatalf("GetCopyRecords: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("copied records = %d, want 2", len(got))
	}

	got, err = s.GetCopyRecords(ctx, RecordFilter{StartDate: now.Add(-24 * time.Hour)})
	if err != nil {
		t.Fatalf("GetCopyRecords: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("recent records = %d, want 2", len(got))
	}

	got, err = s.GetCopyRecords(ctx, RecordFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetCopyRecords: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limited records = %d, want 1", len(got))
	}
}

func TestPollMarks(t *testing.T) {
	s := testStore(t)

	mark, err := s.LoadMark("f1")
	if err != nil {
		t.Fatalf("LoadMark: %v", err)
	}
	if !mark.IsZero() {
		t.Errorf("mark = %v, want zero for unknown follow", mark)
	}

	first := time.Now().Truncate(time.Second)
	if err := s.SaveMark("f1", first); err != nil {
		t.Fatalf("SaveMark: %v", err)
	}
	later := first.Add(time.Minute)
	if err := s.SaveMark("f1", later); err != nil {
		t.Fatalf("SaveMark upsert: %v", err)
	}

	mark, err = s.LoadMark("f1")
	if err != nil {
		t.Fatalf("LoadMark: %v", err)
	}
	if !mark.Equal(later) {
		t.Errorf("mark = %v, want %v", mark, later)
	}
}
