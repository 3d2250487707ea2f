// internal/database/database.go
//
// SQLite access for the Battleship server.
//   - Open: creates the parent directory and opens the file with WAL,
//     a busy timeout and foreign keys on.
//   - Migrate: applies sql/*.sql from an fs.FS once each, in name order,
//     recording applied names in _migrations.

package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const dsnParams = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// Open opens (and creates if missing) the SQLite database at file.
func Open(file string) (*sql.DB, error) {
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+file+"?"+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", file, err)
	}
	return db, nil
}

// Migrate applies every pending sql/*.sql script of fsys.
//
// Scripts that open their own transaction (BEGIN TRANSACTION) or switch
// foreign keys off run as-is; all others run inside one transaction together
// with their _migrations row.
func Migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	names, err := fs.Glob(fsys, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	applied, err := appliedSet(db)
	if err != nil {
		return err
	}
	for _, name := range names {
		if applied[name] {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := apply(db, name, string(script)); err != nil {
			return err
		}
		log.Info().Str("migration", path.Base(name)).Msg("migration applied")
	}
	return nil
}

func appliedSet(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("read _migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out[n] = true
	}
	return out, rows.Err()
}

func apply(db *sql.DB, name, script string) error {
	if managesOwnTx(script) {
		if _, err := db.Exec(script); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(script); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func managesOwnTx(script string) bool {
	s := strings.ToUpper(strings.Join(strings.Fields(script), " "))
	return strings.Contains(s, "BEGIN TRANSACTION") || strings.Contains(s, "PRAGMA FOREIGN_KEYS = OFF") ||
		strings.Contains(s, "PRAGMA FOREIGN_KEYS=OFF")
}
