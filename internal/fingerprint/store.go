package fingerprint

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fingerprints (
	module_path TEXT NOT NULL,
	source_hash TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	heap_id     TEXT NOT NULL,
	PRIMARY KEY (module_path, source_hash)
);`

// Store is the sqlite-backed reproducibility ledger: one row per
// (module path, source digest) recording the fingerprint of the
// frozen exports that source produced.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the recorded fingerprint for a module at a given source
// digest; ok is false when the pair was never recorded.
func (s *Store) Get(modulePath, sourceHash string) (fp string, ok bool, err error) {
	row := s.db.QueryRow(
		`SELECT fingerprint FROM fingerprints WHERE module_path = ? AND source_hash = ?`,
		modulePath, sourceHash)
	switch err := row.Scan(&fp); err {
	case nil:
		return fp, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, err
	}
}

// Put records (or overwrites) the fingerprint for a module at a given
// source digest. heapID tags which frozen heap produced it, which
// helps when debugging a mismatch.
func (s *Store) Put(modulePath, sourceHash, fp, heapID string) error {
	_, err := s.db.Exec(
		`INSERT INTO fingerprints (module_path, source_hash, fingerprint, heap_id)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (module_path, source_hash) DO UPDATE
		 SET fingerprint = excluded.fingerprint, heap_id = excluded.heap_id`,
		modulePath, sourceHash, fp, heapID)
	return err
}
