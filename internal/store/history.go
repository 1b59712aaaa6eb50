// ABOUTME: Conversation history persistence with per-session ordering
// ABOUTME: Turns append in conversational order; reads return the most recent N

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendTurn appends a conversation turn for a session.
// Generates ID and CreatedAt if not set. A per-session sequence number
// preserves conversational order even when timestamps collide.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *Turn) error {
	if turn.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if turn.Role != RoleUser && turn.Role != RoleAssistant {
		return fmt.Errorf("invalid role %q", turn.Role)
	}
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO turns (id, session_id, role, content, delegated_to, seq, created_at)
		VALUES (?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?),
			?)
	`

	_, err := s.db.ExecContext(ctx, query,
		turn.ID,
		turn.SessionID,
		turn.Role,
		turn.Content,
		nullable(turn.DelegatedTo),
		turn.SessionID,
		turn.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}

	s.logger.Debug("appended turn",
		"session_id", turn.SessionID,
		"role", turn.Role,
		"delegated_to", turn.DelegatedTo,
	)
	return nil
}

// RecentTurns returns up to limit of the most recent turns for a session,
// in conversational (oldest-to-newest) order.
func (s *SQLiteStore) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 50
	}

	// Select the newest N by sequence, then flip back to conversational order.
	query := `
		SELECT id, session_id, role, content, delegated_to, created_at FROM (
			SELECT id, session_id, role, content, delegated_to, seq, created_at
			FROM turns
			WHERE session_id = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var delegatedTo *string
		var tsStr string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &delegatedTo, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if delegatedTo != nil {
			t.DelegatedTo = *delegatedTo
		}
		t.CreatedAt, err = time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	if turns == nil {
		turns = []Turn{}
	}
	return turns, nil
}

// nullable converts an empty string to a NULL-able pointer.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
