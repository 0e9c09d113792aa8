// Package archive keeps heap snapshots in a SQLite database.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/metamodel/heap"
)

var log = commonlog.GetLogger("metamodel.archive")

// ErrSnapshotNotFound indicates the requested snapshot is not archived.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const schema = `CREATE TABLE IF NOT EXISTS snapshots (
	id    TEXT PRIMARY KEY,
	taken INTEGER NOT NULL,
	nodes INTEGER NOT NULL,
	roots INTEGER NOT NULL,
	data  BLOB NOT NULL
)`

// Entry summarizes an archived snapshot.
type Entry struct {
	ID    string
	Taken time.Time
	Nodes int
	Roots int
	Size  int
}

// Archive stores CBOR-encoded snapshots keyed by their ID.
type Archive struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the archive at path. Use ":memory:" for a
// throwaway archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &Archive{db: db, path: path}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Path returns the database path the archive was opened with.
func (a *Archive) Path() string {
	return a.path
}

// Save stores s, replacing any snapshot with the same ID.
func (a *Archive) Save(s *heap.Snapshot) error {
	data, err := heap.MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, err = a.db.Exec(
		"INSERT OR REPLACE INTO snapshots (id, taken, nodes, roots, data) VALUES (?, ?, ?, ?, ?)",
		s.ID, s.Taken, len(s.Nodes), len(s.Roots), data,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	log.Debugf("archived snapshot %s (%d nodes, %d bytes)", s.ID, len(s.Nodes), len(data))
	return nil
}

// Load retrieves the snapshot with the given ID.
func (a *Archive) Load(id string) (*heap.Snapshot, error) {
	var data []byte
	err := a.db.QueryRow("SELECT data FROM snapshots WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	return heap.UnmarshalSnapshot(data)
}

// Latest returns the most recently taken snapshot.
func (a *Archive) Latest() (*heap.Snapshot, error) {
	var data []byte
	err := a.db.QueryRow("SELECT data FROM snapshots ORDER BY taken DESC, id LIMIT 1").Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	return heap.UnmarshalSnapshot(data)
}

// List returns every archived snapshot, oldest first.
func (a *Archive) List() ([]Entry, error) {
	rows, err := a.db.Query("SELECT id, taken, nodes, roots, length(data) FROM snapshots ORDER BY taken, id")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			taken int64
		)
		if err := rows.Scan(&e.ID, &taken, &e.Nodes, &e.Roots, &e.Size); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		e.Taken = time.Unix(0, taken)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the snapshot with the given ID.
func (a *Archive) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}
	return nil
}
