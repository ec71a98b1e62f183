// Package profile stores named credential profiles and the archive of
// published threads in a local sqlite database. The posting pipeline only
// ever reads the active profile's credentials.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"spindle/internal/xapi"
)

// Profile is one stored account. At most one profile is active.
type Profile struct {
	Name   string
	Active bool
	Creds  xapi.Credentials
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	name            TEXT PRIMARY KEY,
	active          INTEGER NOT NULL DEFAULT 0,
	consumer_key    TEXT NOT NULL,
	consumer_secret TEXT NOT NULL,
	access_token    TEXT NOT NULL,
	access_secret   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS threads (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_path      TEXT NOT NULL,
	root_post_id  TEXT NOT NULL,
	final_post_id TEXT NOT NULL,
	posts         INTEGER NOT NULL,
	posted_at     TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Add stores a new profile. The first profile added becomes active.
func (s *Store) Add(ctx context.Context, p Profile) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return err
	}
	active := 0
	if count == 0 || p.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (name, active, consumer_key, consumer_secret, access_token, access_secret)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, active, p.Creds.ConsumerKey, p.Creds.ConsumerSecret, p.Creds.AccessToken, p.Creds.AccessSecret)
	if err != nil {
		return fmt.Errorf("add profile %q: %w", p.Name, err)
	}
	if active == 1 && count > 0 {
		return s.Activate(ctx, p.Name)
	}
	return nil
}

// Activate marks name active and every other profile inactive, in one
// transaction so the at-most-one-active invariant holds.
func (s *Store) Activate(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET active = 0`); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE profiles SET active = 1 WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no such profile: %s", name)
	}
	return tx.Commit()
}

// Active returns the active profile's credentials.
func (s *Store) Active(ctx context.Context) (*Profile, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT name, active, consumer_key, consumer_secret, access_token, access_secret
		FROM profiles WHERE active = 1`))
}

// Get returns the named profile.
func (s *Store) Get(ctx context.Context, name string) (*Profile, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT name, active, consumer_key, consumer_secret, access_token, access_secret
		FROM profiles WHERE name = ?`, name))
}

func (s *Store) scanOne(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	var active int
	err := row.Scan(&p.Name, &active, &p.Creds.ConsumerKey, &p.Creds.ConsumerSecret, &p.Creds.AccessToken, &p.Creds.AccessSecret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no matching profile; add one with: spindle profile add")
	}
	if err != nil {
		return nil, err
	}
	p.Active = active == 1
	return p, nil
}

// List returns every profile, active flag included, ordered by name.
func (s *Store) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, active FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Profile
	for rows.Next() {
		var p Profile
		var active int
		if err := rows.Scan(&p.Name, &active); err != nil {
			return nil, err
		}
		p.Active = active == 1
		out = append(out, p)
	}
	return out, rows.Err()
}

// Remove deletes the named profile.
func (s *Store) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no such profile: %s", name)
	}
	return nil
}

// RecordThread archives a fully published thread. Partially published
// threads are never archived.
func (s *Store) RecordThread(ctx context.Context, docPath, rootID, finalID string, posts int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO threads (doc_path, root_post_id, final_post_id, posts)
		VALUES (?, ?, ?, ?)`, docPath, rootID, finalID, posts)
	return err
}
