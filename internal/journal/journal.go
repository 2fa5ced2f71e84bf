// Package journal keeps an append-only sqlite record of the session's
// normalized event stream for post-session review. It is client-side
// tooling only; backend persistence is not its concern.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

type Journal struct {
	conn *sql.DB
}

func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// Single connection to prevent SQLITE_BUSY under concurrent reads.
	conn.SetMaxOpenConns(1)

	if err := applyPragmas(conn); err != nil {
		conn.Close()
		return nil, err
	}

	j := &Journal{conn: conn}
	if err := j.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	return j, nil
}

func (j *Journal) Close() error {
	return j.conn.Close()
}

func applyPragmas(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}
	return nil
}

func (j *Journal) migrate(ctx context.Context) error {
	var currentVersion int
	err := j.conn.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		// Table doesn't exist yet, run full schema
		if _, err := j.conn.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		_, err = j.conn.ExecContext(ctx,
			"INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	}

	if currentVersion >= schemaVersion {
		return nil
	}

	return nil
}

// Record appends one envelope as received.
func (j *Journal) Record(env event.Envelope) error {
	_, err := j.conn.Exec(
		"INSERT INTO events (channel, seq, payload, received_at) VALUES (?, ?, ?, ?)",
		env.Channel, env.Seq, string(env.Payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// Stats summarizes a session file.
type Stats struct {
	Events     int64
	ByChannel  map[string]int64
	FirstEvent time.Time
	LastEvent  time.Time
}

func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByChannel: make(map[string]int64)}

	var first, last sql.NullInt64
	err := j.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(received_at), MAX(received_at) FROM events").
		Scan(&st.Events, &first, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("counting events: %w", err)
	}
	if first.Valid {
		st.FirstEvent = time.UnixMilli(first.Int64)
	}
	if last.Valid {
		st.LastEvent = time.UnixMilli(last.Int64)
	}

	rows, err := j.conn.QueryContext(ctx,
		"SELECT channel, COUNT(*) FROM events GROUP BY channel")
	if err != nil {
		return Stats{}, fmt.Errorf("grouping events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var channel string
		var n int64
		if err := rows.Scan(&channel, &n); err != nil {
			return Stats{}, err
		}
		st.ByChannel[channel] = n
	}
	return st, rows.Err()
}
