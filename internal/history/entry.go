package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Kind is the command that produced an entry.
type Kind string

const (
	KindBuildConfig Kind = "build-config"
	KindDeployStack Kind = "deploy-stack"
)

// Entry is one ledger row.
type Entry struct {
	ID              string    `json:"id"`
	Seq             int64     `json:"seq"`
	Kind            Kind      `json:"kind"`
	ProjectName     string    `json:"project_name"`
	ProjectID       string    `json:"project_id"`
	Stage           string    `json:"stage"`
	ModelPackageARN string    `json:"model_package_arn,omitempty"`
	StackName       string    `json:"stack_name,omitempty"`
	Action          string    `json:"action,omitempty"`
	ConfigHash      string    `json:"config_hash"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// Record appends e to the ledger and returns it with ID, Seq and RecordedAt
// filled in. A caller-supplied ID or RecordedAt is kept.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	switch e.Kind {
	case KindBuildConfig, KindDeployStack:
	default:
		return Entry{}, fmt.Errorf("record entry: unknown kind %q", e.Kind)
	}
	if e.ID == "" {
		e.ID = s.ids.Generate()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = s.now()
	}
	e.RecordedAt = e.RecordedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM deployments`).Scan(&e.Seq); err != nil {
		return Entry{}, fmt.Errorf("record entry: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deployments
		(id, seq, kind, project_name, project_id, stage, model_package_arn, stack_name, action, config_hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Seq,
		string(e.Kind),
		e.ProjectName,
		e.ProjectID,
		e.Stage,
		e.ModelPackageARN,
		e.StackName,
		e.Action,
		e.ConfigHash,
		e.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("record entry: commit: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. An empty project lists every
// project; a limit <= 0 means no limit.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, project string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT is unbounded
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, kind, project_name, project_id, stage, model_package_arn, stack_name, action, config_hash, recorded_at
		FROM deployments
		WHERE ? = '' OR project_name = ?
		ORDER BY seq DESC
		LIMIT ?
	`, project, project, limit)
	if err != nil {
		return nil, fmt.Errorf("query deployments: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return entries, nil
}

// ByConfigHash returns every entry that shipped the configuration with hash,
// oldest first.
func (s *Store) ByConfigHash(ctx context.Context, hash string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, kind, project_name, project_id, stage, model_package_arn, stack_name, action, config_hash, recorded_at
		FROM deployments
		WHERE config_hash = ?
		ORDER BY seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query deployments: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		kind       string
		recordedAt string
	)
	if err := rows.Scan(
		&e.ID,
		&e.Seq,
		&kind,
		&e.ProjectName,
		&e.ProjectID,
		&e.Stage,
		&e.ModelPackageARN,
		&e.StackName,
		&e.Action,
		&e.ConfigHash,
		&recordedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan deployment: %w", err)
	}
	e.Kind = Kind(kind)

	t, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("scan deployment %s: recorded_at: %w", e.ID, err)
	}
	e.RecordedAt = t
	return e, nil
}
