//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS objects_fts USING fts5(
			token UNINDEXED,
			tag UNINDEXED,
			name,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, token, tag, name, body string) error {
	_, _ = tx.Exec(`DELETE FROM objects_fts WHERE token = ?`, token)
	_, err := tx.Exec(`INSERT INTO objects_fts (token, tag, name, body) VALUES (?, ?, ?, ?)`,
		token, tag, name, body)
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, token string) {
	_, _ = tx.Exec(`DELETE FROM objects_fts WHERE token = ?`, token)
}

// Search runs an FTS5 query and returns hits with snippets of the record text.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT token,
		       tag,
		       name,
		       snippet(objects_fts, 3, '<b>', '</b>', '...', 32)
		FROM objects_fts
		WHERE objects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Token, &r.Tag, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
