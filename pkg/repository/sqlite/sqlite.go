package sqlite

import (
	"database/sql"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the latest schema version. Bump when adding
// migrations.
const currentSchemaVersion = 1

// Client is a SQLite-backed repository.
type Client struct {
	db     *sql.DB
	memory *memoryRepository
}

var _ interfaces.Repository = &Client{}

// New opens (or creates) the SQLite database at path and applies pending
// schema migrations. WAL mode and a busy timeout are set for every
// connection; _txlock=immediate makes write transactions take the write
// lock at BEGIN so read-modify-write operations serialize per row.
func New(path string) (*Client, error) {
	dsn := path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Client{
		db:     db,
		memory: &memoryRepository{db: db},
	}, nil
}

func (c *Client) Memory() interfaces.MemoryRepository {
	return c.memory
}

func (c *Client) Close() error {
	if err := c.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close sqlite database")
	}
	return nil
}

// migrate applies schema migrations based on PRAGMA user_version.
func migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS memories (
		  id            INTEGER PRIMARY KEY AUTOINCREMENT,
		  title         TEXT NOT NULL,
		  content       TEXT NOT NULL,
		  ai_thoughts   TEXT,
		  telegraph_url TEXT,
		  created_at    TEXT NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return goerr.Wrap(err, "migration 1 failed")
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, goerr.Wrap(err, "failed to read user_version")
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	// PRAGMA does not accept bound parameters
	if _, err := db.Exec("PRAGMA user_version = " + strconv.Itoa(version)); err != nil {
		return goerr.Wrap(err, "failed to set user_version", goerr.V("version", version))
	}
	return nil
}
