// Package manifest persists build state between runs: which fingerprint of
// each document was last written where. Incremental builds consult it to
// skip unchanged documents.
package manifest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Store is a SQLite-backed build manifest. Use ":memory:" for an ephemeral
// manifest (every build is then a full build).
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the manifest database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "failed to open manifest database").
			WithContext("path", dbPath).Build()
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryManifest, "failed to initialize manifest schema").
			WithContext("path", dbPath).Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		zone TEXT NOT NULL,
		permalink TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		output_path TEXT NOT NULL,
		built_at INTEGER NOT NULL,
		PRIMARY KEY (zone, permalink)
	);
	CREATE INDEX IF NOT EXISTS idx_pages_fingerprint ON pages(fingerprint);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Fingerprint returns the recorded fingerprint for a document, if any.
func (s *Store) Fingerprint(ctx context.Context, zone, permalink string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fp string
	err := s.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM pages WHERE zone = ? AND permalink = ?",
		zone, permalink).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryManifest, "failed to query manifest").Build()
	}
	return fp, true, nil
}

// Record upserts the manifest entry for a freshly written document.
func (s *Store) Record(ctx context.Context, zone, permalink, fingerprint, outputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (zone, permalink, fingerprint, output_path, built_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (zone, permalink) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			output_path = excluded.output_path,
			built_at = excluded.built_at`,
		zone, permalink, fingerprint, outputPath, time.Now().Unix())
	if err != nil {
		return errors.WrapError(err, errors.CategoryManifest, "failed to record manifest entry").
			WithContext("zone", zone).
			WithContext("permalink", permalink).Build()
	}
	return nil
}

// Prune removes entries for a zone whose permalinks are no longer in keep.
// Navigation entries come and go; stale manifest rows would otherwise shadow
// re-added documents forever.
func (s *Store) Prune(ctx context.Context, zone string, keep map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT permalink FROM pages WHERE zone = ?", zone)
	if err != nil {
		return errors.WrapError(err, errors.CategoryManifest, "failed to list manifest entries").Build()
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return errors.WrapError(err, errors.CategoryManifest, "failed to scan manifest entry").Build()
		}
		if !keep[p] {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.WrapError(err, errors.CategoryManifest, "failed to iterate manifest entries").Build()
	}

	for _, p := range stale {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM pages WHERE zone = ? AND permalink = ?", zone, p); err != nil {
			return errors.WrapError(err, errors.CategoryManifest, "failed to prune manifest entry").
				WithContext("permalink", p).Build()
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
