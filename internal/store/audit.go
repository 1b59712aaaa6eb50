// ABOUTME: Append-only permission audit trail with tool and decision queries
// ABOUTME: Records are never updated or deleted; queries return newest first

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// auditTimeLayout is a fixed-width RFC 3339 layout. RFC3339Nano trims
// trailing fractional zeros, which breaks the text collation the ts
// ordering relies on; padding the fraction keeps lexicographic order
// equal to time order.
const auditTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// AppendAudit appends a new record to the permission audit trail.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) AppendAudit(ctx context.Context, rec *AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	var contextJSON *string
	if rec.Context != nil {
		data, err := json.Marshal(rec.Context)
		if err != nil {
			return fmt.Errorf("marshaling audit context: %w", err)
		}
		str := string(data)
		contextJSON = &str
	}

	query := `
		INSERT INTO audit_log (audit_id, tool, decision, always_allow, context_json, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Tool,
		rec.Decision,
		rec.AlwaysAllow,
		contextJSON,
		rec.Timestamp.UTC().Format(auditTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}

	s.logger.Debug("appended audit record",
		"id", rec.ID,
		"tool", rec.Tool,
		"decision", rec.Decision,
		"always_allow", rec.AlwaysAllow,
	)
	return nil
}

// normalizeAuditLimit applies default (100) and cap (1000) to audit limit.
func normalizeAuditLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// scanAuditRecord scans a row into an AuditRecord.
func scanAuditRecord(scanner interface{ Scan(dest ...any) error }) (AuditRecord, error) {
	var rec AuditRecord
	var decisionStr, tsStr string
	var contextJSON *string

	if err := scanner.Scan(
		&rec.ID,
		&rec.Tool,
		&decisionStr,
		&rec.AlwaysAllow,
		&contextJSON,
		&tsStr,
	); err != nil {
		return rec, fmt.Errorf("scanning audit record: %w", err)
	}

	rec.Decision = AuditDecision(decisionStr)
	var err error
	rec.Timestamp, err = time.Parse(auditTimeLayout, tsStr)
	if err != nil {
		return rec, fmt.Errorf("parsing timestamp: %w", err)
	}

	if contextJSON != nil {
		if err := json.Unmarshal([]byte(*contextJSON), &rec.Context); err != nil {
			return rec, fmt.Errorf("unmarshaling context: %w", err)
		}
	}
	return rec, nil
}

const auditSelect = `
	SELECT audit_id, tool, decision, always_allow, context_json, ts
	FROM audit_log
`

// QueryAuditByTool returns audit records for the given tool, newest first.
func (s *SQLiteStore) QueryAuditByTool(ctx context.Context, tool string, limit int) ([]AuditRecord, error) {
	query := auditSelect + `WHERE tool = ? ORDER BY ts DESC, rowid DESC LIMIT ?`
	return s.queryAudit(ctx, query, tool, normalizeAuditLimit(limit))
}

// QueryAuditByDecision returns audit records with the given decision, newest first.
func (s *SQLiteStore) QueryAuditByDecision(ctx context.Context, decision AuditDecision, limit int) ([]AuditRecord, error) {
	query := auditSelect + `WHERE decision = ? ORDER BY ts DESC, rowid DESC LIMIT ?`
	return s.queryAudit(ctx, query, string(decision), normalizeAuditLimit(limit))
}

func (s *SQLiteStore) queryAudit(ctx context.Context, query string, args ...any) ([]AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []AuditRecord
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit records: %w", err)
	}

	if records == nil {
		records = []AuditRecord{}
	}
	return records, nil
}
