package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityEntry is one row of activity_log: a mutation performed through the console.
type ActivityEntry struct {
	ID       int64
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// ActivityFilter narrows ActivityLog.List.
type ActivityFilter struct {
	Entity string
	Actor  string
	Limit  int
	Offset int
}

// ActivityLog writes and reads activity_log. A nil *ActivityLog records nothing,
// which is how the console runs without PG_DSN.
type ActivityLog struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewActivityLog returns an ActivityLog, or nil when pool is nil.
func NewActivityLog(pool *pgxpool.Pool, logger *slog.Logger) *ActivityLog {
	if pool == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityLog{pool: pool, logger: logger}
}

// Enabled reports whether entries are persisted.
func (l *ActivityLog) Enabled() bool {
	return l != nil && l.pool != nil
}

// Record persists the entry.
func (l *ActivityLog) Record(ctx context.Context, entry ActivityEntry) error {
	if !l.Enabled() {
		return nil
	}
	if entry.Action == "" || entry.Entity == "" {
		return errors.New("activity entry requires action and entity")
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !entry.At.IsZero() {
		at = &entry.At
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO activity_log (actor, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		entry.Actor, entry.Action, entry.Entity, entry.EntityID, metaJSON, at)
	return err
}

// RecordDetached records in the caller's goroutine on a context that ignores the
// caller's cancellation. Failures are logged and never reach the request.
func (l *ActivityLog) RecordDetached(ctx context.Context, entry ActivityEntry) {
	if !l.Enabled() {
		return
	}
	if err := l.Record(context.WithoutCancel(ctx), entry); err != nil {
		l.logger.Warn("record activity", slog.String("entity", entry.Entity), slog.String("action", entry.Action), slog.Any("error", err))
	}
}

// List returns the newest entries first along with the total count for the filter.
func (l *ActivityLog) List(ctx context.Context, filter ActivityFilter) ([]ActivityEntry, int, error) {
	if !l.Enabled() {
		return nil, 0, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var total int
	if err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log WHERE ($1 = '' OR entity = $1) AND ($2 = '' OR actor = $2)`,
		filter.Entity, filter.Actor).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := l.pool.Query(ctx, `SELECT id, actor, action, entity, entity_id, meta, occurred_at FROM activity_log
WHERE ($1 = '' OR entity = $1) AND ($2 = '' OR actor = $2)
ORDER BY occurred_at DESC, id DESC LIMIT $3 OFFSET $4`, filter.Entity, filter.Actor, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ActivityEntry, error) {
		var (
			e    ActivityEntry
			meta []byte
		)
		if err := row.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &meta, &e.At); err != nil {
			return e, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &e.Meta)
		}
		return e, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Prune deletes entries older than retention and reports how many went.
func (l *ActivityLog) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if !l.Enabled() {
		return 0, nil
	}
	tag, err := l.pool.Exec(ctx, `DELETE FROM activity_log WHERE occurred_at < $1`, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
