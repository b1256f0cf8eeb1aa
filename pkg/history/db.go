// Package history keeps a local SQLite record of submitted essays and their
// projected results, so the CLI can list past work without a backend round
// trip and show results offline.
package history

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS essays (
	id TEXT PRIMARY KEY,
	titulo TEXT NOT NULL,
	tema TEXT NOT NULL DEFAULT '',
	tipo TEXT NOT NULL DEFAULT '',
	texto TEXT NOT NULL,
	status TEXT NOT NULL,
	nota_enem REAL,
	nota_geral REAL,
	data_submissao TIMESTAMP NOT NULL,
	synced_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_essays_data_submissao ON essays(data_submissao);

CREATE TABLE IF NOT EXISTS results (
	redacao_id TEXT PRIMARY KEY REFERENCES essays(id),
	nota_total INTEGER NOT NULL,
	comentario_geral TEXT NOT NULL DEFAULT '',
	payload_json TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Open opens (or creates) the history database at path and migrates it.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
