package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Entry is one recorded write.
type Entry struct {
	ID        int64     `json:"id"`
	Strategy  string    `json:"strategy"`
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Outcome   string    `json:"outcome"`
	Checksum  string    `json:"checksum"`
	WrittenAt time.Time `json:"written_at"`
}

// Recorder is what the join service needs from a journal.
// Consumers depend on this interface so the journal can be disabled.
type Recorder interface {
	Record(e Entry) error
	Find(f Filter, limit int) ([]Entry, error)
}

// Filter narrows Find. Empty fields match everything, so the same key
// produced by two strategies is only told apart when Strategy is set.
type Filter struct {
	Strategy string
	Key      string
}

var _ Recorder = (*DB)(nil)

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Record appends e. A zero WrittenAt is stamped with the current time.
func (db *DB) Record(e Entry) error {
	if e.WrittenAt.IsZero() {
		e.WrittenAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO writes (strategy, note_key, path, outcome, checksum, written_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Strategy, e.Key, e.Path, e.Outcome, e.Checksum, e.WrittenAt)
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Find returns the entries matching f, newest first.
func (db *DB) Find(f Filter, limit int) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Strategy != "" {
		where = append(where, "strategy = ?")
		args = append(args, f.Strategy)
	}
	if f.Key != "" {
		where = append(where, "note_key = ?")
		args = append(args, f.Key)
	}
	q := `SELECT id, strategy, note_key, path, outcome, checksum, written_at FROM writes`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC LIMIT ?"
	return db.query(q, append(args, clampLimit(limit))...)
}

func (db *DB) query(q string, args ...any) ([]Entry, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Strategy, &e.Key, &e.Path, &e.Outcome, &e.Checksum, &e.WrittenAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
