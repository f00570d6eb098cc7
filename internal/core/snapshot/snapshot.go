// Package snapshot persists a record store to sqlite so a successful
// migration can be made durable. The core never calls it; durability is the
// caller's decision after a migration succeeds.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/schevo/schevo/internal/core/store"
)

const driverName = "sqlite"

const ddl = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id   TEXT PRIMARY KEY,
	body TEXT NOT NULL
);`

const versionKey = "schema_version"

// Open opens (creating if needed) a snapshot database at path.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Save writes the store to db, replacing any previous snapshot, in one
// transaction.
func Save(ctx context.Context, db *sql.DB, st *store.Store) error {
	if st == nil {
		return fmt.Errorf("snapshot: nil store")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionKey, fmt.Sprintf("%d", st.Version())); err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx, `INSERT INTO records (id, body) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, id := range st.IDs() {
		rec, _ := st.Get(id)
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("snapshot: encode record %q: %w", id, err)
		}
		if _, err := insert.ExecContext(ctx, id, string(body)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load rebuilds a store from the snapshot in db.
func Load(ctx context.Context, db *sql.DB) (*store.Store, error) {
	var versionText string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_meta WHERE key = ?`, versionKey).Scan(&versionText)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot: no snapshot present")
	}
	if err != nil {
		return nil, err
	}
	var version int64
	if _, err := fmt.Sscanf(versionText, "%d", &version); err != nil {
		return nil, fmt.Errorf("snapshot: bad version %q: %w", versionText, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT id, body FROM records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := store.New(version)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		var rec store.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("snapshot: decode record %q: %w", id, err)
		}
		if err := st.Put(id, rec); err != nil {
			return nil, err
		}
	}
	return st, rows.Err()
}
