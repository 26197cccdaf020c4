/*
Package catalog records the result of scanning BLP textures in an SQLite
database so a collection can be queried without decoding it again.
*/
package catalog

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/blp"
	_ "github.com/mattn/go-sqlite3" // register driver
)

// Entry is one scanned texture.
type Entry struct {
	Path       string
	SHA1       string
	Version    int
	Encoding   blp.Encoding
	AlphaDepth int
	Format     blp.PixelFormat
	Width      int
	Height     int
	Mips       int
	// Err holds the decode error, if any
	Err string
}

// EntryFromHeader fills in an Entry from a parsed header.
func EntryFromHeader(path, sha1 string, h blp.Header) *Entry {
	return &Entry{
		Path:       path,
		SHA1:       sha1,
		Version:    h.Version,
		Encoding:   h.Encoding,
		AlphaDepth: h.AlphaDepth,
		Format:     h.PreferredFormat,
		Width:      h.Width,
		Height:     h.Height,
		Mips:       h.MipCount(),
	}
}

// DB is the texture catalog.
type DB struct {
	db *sql.DB
}

// New opens or creates the catalog stored in file.
func New(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS texture (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, version INTEGER NOT NULL, encoding INTEGER NOT NULL, alpha_depth INTEGER NOT NULL, format INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, mips INTEGER NOT NULL, error TEXT)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS texture_sha1 ON texture (sha1)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the catalog.
func (db *DB) Close() error {
	return db.db.Close()
}

// Put adds e, replacing any existing entry with the same path.
func (db *DB) Put(e *Entry) error {
	var msg sql.NullString
	if e.Err != "" {
		msg.String = e.Err
		msg.Valid = true
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO texture (path, sha1, version, encoding, alpha_depth, format, width, height, mips, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", e.Path, e.SHA1, e.Version, int(e.Encoding), e.AlphaDepth, int(e.Format), e.Width, e.Height, e.Mips, msg); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

const columns = "path, sha1, version, encoding, alpha_depth, format, width, height, mips, error"

type scanner interface {
	Scan(...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		entry            Entry
		encoding, format int
		msg              sql.NullString
	)
	if err := s.Scan(&entry.Path, &entry.SHA1, &entry.Version, &encoding, &entry.AlphaDepth, &format, &entry.Width, &entry.Height, &entry.Mips, &msg); err != nil {
		return nil, err
	}
	entry.Encoding = blp.Encoding(encoding)
	entry.Format = blp.PixelFormat(format)
	entry.Err = msg.String
	return &entry, nil
}

// Get returns the entry for path, or nil if there isn't one.
func (db *DB) Get(path string) (*Entry, error) {
	e, err := scanEntry(db.db.QueryRow("SELECT "+columns+" FROM texture WHERE path = ?", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, fmt.Errorf("catalog: %w", err)
	}
}

func (db *DB) query(q string, args ...interface{}) ([]*Entry, error) {
	rows, err := db.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return entries, nil
}

// List returns every entry ordered by path.
func (db *DB) List() ([]*Entry, error) {
	return db.query("SELECT " + columns + " FROM texture ORDER BY path")
}

// FindBySHA1 returns every entry whose file content hashes to sha1.
func (db *DB) FindBySHA1(sha1 string) ([]*Entry, error) {
	return db.query("SELECT "+columns+" FROM texture WHERE sha1 = ? ORDER BY path", sha1)
}

// Failed returns every entry that could not be decoded.
func (db *DB) Failed() ([]*Entry, error) {
	return db.query("SELECT " + columns + " FROM texture WHERE error IS NOT NULL ORDER BY path")
}
