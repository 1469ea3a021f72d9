package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent pollers.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Follow relationships
	CREATE TABLE IF NOT EXISTS follows (
		id TEXT PRIMARY KEY,
		follower TEXT NOT NULL,
		source TEXT NOT NULL,
		config TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		stopped_at DATETIME
	);

	-- One record per (follow, source trade): the idempotency key
	CREATE TABLE IF NOT EXISTS copy_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		follow_id TEXT NOT NULL,
		source_trade_id TEXT NOT NULL,
		decision TEXT NOT NULL,
		reason TEXT,
		copied_size REAL,
		copied_value REAL,
		order_id TEXT,
		whale_trade INTEGER DEFAULT 0,
		realized_pnl REAL DEFAULT 0,
		timestamp DATETIME NOT NULL,
		UNIQUE(follow_id, source_trade_id)
	);

	-- Poller high-water marks
	CREATE TABLE IF NOT EXISTS poll_marks (
		follow_id TEXT PRIMARY KEY,
		mark DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_copy_records_follow ON copy_records(follow_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_follows_status ON follows(status);

	-- At most one active follow per (follower, source) pair
	CREATE UNIQUE INDEX IF NOT EXISTS idx_follows_active_pair
		ON follows(follower, source) WHERE status = 'ACTIVE';
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveFollow inserts a new follow relationship. Inserting a second active
// follow for the same (follower, source) pair returns ErrAlreadyFollowing.
func (s *SQLiteStore) SaveFollow(ctx context.Context, follow *models.Follow) error {
	cfg, err := json.Marshal(follow.Config)
	if err != nil {
		return fmt.Errorf("encoding follow config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO follows (id, follower, source, config, status, created_at, stopped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		follow.ID, string(follow.Follower), string(follow.Source), string(cfg),
		string(follow.Status), follow.CreatedAt, follow.StoppedAt)
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperrors.ErrAlreadyFollowing
		}
		return fmt.Errorf("inserting follow: %w", err)
	}
	return nil
}

// UpdateFollow replaces a follow's config, status, and stop time.
func (s *SQLiteStore) UpdateFollow(ctx context.Context, follow *models.Follow) error {
	cfg, err := json.Marshal(follow.Config)
	if err != nil {
		return fmt.Errorf("encoding follow config: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE follows SET config = ?, status = ?, stopped_at = ? WHERE id = ?`,
		string(cfg), string(follow.Status), follow.StoppedAt, follow.ID)
	if err != nil {
		return fmt.Errorf("updating follow: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", follow.ID, apperrors.ErrFollowNotFound)
	}
	return nil
}

// GetFollow fetches a follow by id.
func (s *SQLiteStore) GetFollow(ctx context.Context, id string) (*models.Follow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, follower, source, config, status, created_at, stopped_at
		FROM follows WHERE id = ?`, id)

	follow, err := scanFollow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", id, apperrors.ErrFollowNotFound)
	}
	return follow, err
}

// GetActiveFollows returns every follow with ACTIVE status.
func (s *SQLiteStore) GetActiveFollows(ctx context.Context) ([]models.Follow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, follower, source, config, status, created_at, stopped_at
		FROM follows WHERE status = ? ORDER BY created_at`, string(models.FollowActive))
	if err != nil {
		return nil, fmt.Errorf("querying active follows: %w", err)
	}
	defer rows.Close()

	var follows []models.Follow
	for rows.Next() {
		follow, err := scanFollow(rows)
		if err != nil {
			return nil, err
		}
		follows = append(follows, *follow)
	}
	return follows, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFollow(row rowScanner) (*models.Follow, error) {
	var follow models.Follow
	var follower, source, cfg, status string
	var stoppedAt sql.NullTime

	if err := row.Scan(&follow.ID, &follower, &source, &cfg, &status, &follow.CreatedAt, &stoppedAt); err != nil {
		return nil, err
	}

	follow.Follower = models.Wallet(follower)
	follow.Source = models.Wallet(source)
	follow.Status = models.FollowStatus(status)
	if stoppedAt.Valid {
		follow.StoppedAt = &stoppedAt.Time
	}
	if err := json.Unmarshal([]byte(cfg), &follow.Config); err != nil {
		return nil, fmt.Errorf("decoding follow config: %w", err)
	}
	return &follow, nil
}

// SaveCopyRecord appends a copy record. A second record for the same
// (follow, source trade) pair is silently ignored, enforcing idempotency
// at the storage layer.
func (s *SQLiteStore) SaveCopyRecord(ctx context.Context, record *models.CopyRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO copy_records
		(follow_id, source_trade_id, decision, reason, copied_size, copied_value, order_id, whale_trade, realized_pnl, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.FollowID, record.SourceTradeID, string(record.Decision), record.Reason,
		record.CopiedSize, record.CopiedValue, record.OrderID,
		boolToInt(record.WhaleTrade), record.RealizedPnL, record.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting copy record: %w", err)
	}
	return nil
}

// HasCopyRecord reports whether a record already exists for the pair.
func (s *SQLiteStore) HasCopyRecord(ctx context.Context, followID, sourceTradeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM copy_records WHERE follow_id = ? AND source_trade_id = ?`,
		followID, sourceTradeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking copy record: %w", err)
	}
	return n > 0, nil
}

// GetCopyRecords queries copy records with optional filters.
func (s *SQLiteStore) GetCopyRecords(ctx context.Context, filter RecordFilter) ([]models.CopyRecord, error) {
	query := `SELECT follow_id, source_trade_id, decision, reason, copied_size, copied_value, order_id, whale_trade, realized_pnl, timestamp
		FROM copy_records`

	var conditions []string
	var args []interface{}

	if filter.FollowID != "" {
		conditions = append(conditions, "follow_id = ?")
		args = append(args, filter.FollowID)
	}
	if filter.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, string(filter.Decision))
	}
	if !filter.StartDate.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.EndDate)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying copy records: %w", err)
	}
	defer rows.Close()

	var records []models.CopyRecord
	for rows.Next() {
		var r models.CopyRecord
		var decision string
		var whale int
		if err := rows.Scan(&r.FollowID, &r.SourceTradeID, &decision, &r.Reason,
			&r.CopiedSize, &r.CopiedValue, &r.OrderID, &whale, &r.RealizedPnL, &r.Timestamp); err != nil {
			return nil, err
		}
		r.Decision = models.CopyDecision(decision)
		r.WhaleTrade = whale != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// LoadMark returns the persisted high-water mark for a follow.
func (s *SQLiteStore) LoadMark(followID string) (time.Time, error) {
	var mark time.Time
	err := s.db.QueryRow(`SELECT mark FROM poll_marks WHERE follow_id = ?`, followID).Scan(&mark)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("loading poll mark: %w", err)
	}
	return mark, nil
}

// SaveMark upserts the high-water mark for a follow.
func (s *SQLiteStore) SaveMark(followID string, mark time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO poll_marks (follow_id, mark) VALUES (?, ?)
		ON CONFLICT(follow_id) DO UPDATE SET mark = excluded.mark`,
		followID, mark)
	if err != nil {
		return fmt.Errorf("saving poll mark: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
