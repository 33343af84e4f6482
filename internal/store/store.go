package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/LFroesch/fcmd/internal/session"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists session snapshots, bookmarks and remembered directory
// sorts in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the last saved snapshot. An empty database yields an empty
// snapshot.
func (s *Store) Load() (session.Snapshot, error) {
	snap := session.Snapshot{
		Marks:       map[string]string{},
		VisualMarks: map[string]int{},
		Bookmarks:   map[string]string{},
		DirSorts:    map[string]session.SortState{},
	}

	meta, err := s.db.Query(`SELECT key, value FROM session_meta`)
	if err != nil {
		return snap, err
	}
	for meta.Next() {
		var k, v string
		if err := meta.Scan(&k, &v); err != nil {
			meta.Close()
			return snap, err
		}
		switch k {
		case "theme":
			snap.Theme = v
		case "active_tab":
			snap.ActiveTab, _ = strconv.Atoi(v)
		}
	}
	meta.Close()

	tabs, err := s.db.Query(`SELECT left_path, right_path, left_sort, right_sort, left_reverse, right_reverse, active_side
		FROM session_tabs ORDER BY idx`)
	if err != nil {
		return snap, err
	}
	for tabs.Next() {
		var t session.TabState
		if err := tabs.Scan(&t.Left.Path, &t.Right.Path, &t.Left.Sort, &t.Right.Sort,
			&t.Left.Reverse, &t.Right.Reverse, &t.Active); err != nil {
			tabs.Close()
			return snap, err
		}
		snap.Tabs = append(snap.Tabs, t)
	}
	tabs.Close()

	marks, err := s.db.Query(`SELECT letter, path FROM marks`)
	if err != nil {
		return snap, err
	}
	for marks.Next() {
		var letter, path string
		if err := marks.Scan(&letter, &path); err != nil {
			marks.Close()
			return snap, err
		}
		snap.Marks[letter] = path
	}
	marks.Close()

	visual, err := s.db.Query(`SELECT path, level FROM visual_marks`)
	if err != nil {
		return snap, err
	}
	for visual.Next() {
		var path string
		var level int
		if err := visual.Scan(&path, &level); err != nil {
			visual.Close()
			return snap, err
		}
		snap.VisualMarks[path] = level
	}
	visual.Close()

	bookmarks, err := s.db.Query(`SELECT name, path FROM bookmarks`)
	if err != nil {
		return snap, err
	}
	for bookmarks.Next() {
		var name, path string
		if err := bookmarks.Scan(&name, &path); err != nil {
			bookmarks.Close()
			return snap, err
		}
		snap.Bookmarks[name] = path
	}
	bookmarks.Close()

	sorts, err := s.db.Query(`SELECT path, sort_mode, sort_reverse FROM dir_sorts`)
	if err != nil {
		return snap, err
	}
	defer sorts.Close()
	for sorts.Next() {
		var path string
		var st session.SortState
		if err := sorts.Scan(&path, &st.Sort, &st.Reverse); err != nil {
			return snap, err
		}
		snap.DirSorts[path] = st
	}
	return snap, sorts.Err()
}

// Save replaces the stored snapshot.
func (s *Store) Save(snap session.Snapshot) error {
	return withTx(s.db, func(tx *sql.Tx) error {
		for _, table := range []string{"session_meta", "session_tabs", "marks", "visual_marks", "bookmarks", "dir_sorts"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(`INSERT INTO session_meta(key, value) VALUES ('theme', ?), ('active_tab', ?)`,
			snap.Theme, strconv.Itoa(snap.ActiveTab)); err != nil {
			return err
		}
		for i, t := range snap.Tabs {
			if _, err := tx.Exec(`INSERT INTO session_tabs
				(idx, left_path, right_path, left_sort, right_sort, left_reverse, right_reverse, active_side)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				i, t.Left.Path, t.Right.Path, t.Left.Sort, t.Right.Sort, t.Left.Reverse, t.Right.Reverse, t.Active); err != nil {
				return err
			}
		}
		for letter, path := range snap.Marks {
			if _, err := tx.Exec(`INSERT INTO marks(letter, path) VALUES (?, ?)`, letter, path); err != nil {
				return err
			}
		}
		for path, level := range snap.VisualMarks {
			if level < 1 || level > 3 {
				continue
			}
			if _, err := tx.Exec(`INSERT INTO visual_marks(path, level) VALUES (?, ?)`, path, level); err != nil {
				return err
			}
		}
		for name, path := range snap.Bookmarks {
			if _, err := tx.Exec(`INSERT INTO bookmarks(name, path) VALUES (?, ?)`, name, path); err != nil {
				return err
			}
		}
		for path, st := range snap.DirSorts {
			if _, err := tx.Exec(`INSERT INTO dir_sorts(path, sort_mode, sort_reverse) VALUES (?, ?, ?)`,
				path, st.Sort, st.Reverse); err != nil {
				return err
			}
		}
		return nil
	})
}

func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// OpenOrWarn opens the store, logging and returning nil when the database
// cannot be used. Callers treat a nil store as "no persistence".
func OpenOrWarn(path string) *Store {
	s, err := Open(path)
	if err != nil {
		logger.Warn("session store unavailable, starting empty: %v", err)
		return nil
	}
	return s
}
