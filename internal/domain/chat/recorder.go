package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lexabot/lexa/pkg/uuid"
)

// Recorder persists chat turns beyond the in-memory conversation store.
type Recorder interface {
	RecordTurn(ctx context.Context, userID, role, content, provider string, at time.Time) error
	History(ctx context.Context, userID string, limit int) ([]StoredMessage, error)
}

// sqlTimeLayout is RFC 3339 UTC with a fixed-width 9-digit fraction.
// created_at is a TEXT column sorted lexicographically, so every stored value
// must have the same width; RFC3339Nano trims trailing zeros and would make
// "…00.2Z" sort after "…00.25Z".
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLRecorder stores turns in the messages table.
type SQLRecorder struct {
	db *sql.DB
}

func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

func (r *SQLRecorder) RecordTurn(ctx context.Context, userID, role, content, provider string, at time.Time) error {
	var prov *string
	if provider != "" {
		prov = &provider
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_id, role, content, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewV7().String(), userID, role, content, prov, at.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// History returns the user's most recent turns in chronological order.
// The UUIDv7 id is the secondary sort key so same-instant turns keep a stable
// order.
func (r *SQLRecorder) History(ctx context.Context, userID string, limit int) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, provider, created_at
		FROM (
			SELECT id, user_id, role, content, provider, created_at
			FROM messages
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY created_at ASC, id ASC`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []StoredMessage
	for rows.Next() {
		var m StoredMessage
		var created string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Provider, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			m.CreatedAt = t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
