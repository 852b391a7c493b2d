package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/obweb/internal/models"
)

// SearchResult is one search hit.
type SearchResult struct {
	Token   string `json:"id"`
	Tag     string `json:"tag"`
	Name    string `json:"name,omitempty"`
	Snippet string `json:"snippet"`
}

// UpsertObject replaces an object row, its search entry and its outgoing
// links in one transaction.
func (db *DB) UpsertObject(row models.CatalogEntry, body string, links []models.Link) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO objects (token, tag, name, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			tag        = excluded.tag,
			name       = excluded.name,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Token, row.Tag, row.Name, row.Checksum, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert object: %w", err)
	}

	if err := ftsUpsert(tx, row.Token, row.Tag, row.Name, body); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, row.Token); err != nil {
		return fmt.Errorf("catalog: clear links: %w", err)
	}
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, kind) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(row.Token, l.Target, l.Kind); err != nil {
				return fmt.Errorf("catalog: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteObject removes an object, its search entry and its outgoing links.
func (db *DB) DeleteObject(token string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, token)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, token)
	_, _ = tx.Exec(`DELETE FROM objects WHERE token = ?`, token)

	return tx.Commit()
}

// GetChecksum returns the stored checksum of token, or "" when absent.
func (db *DB) GetChecksum(token string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM objects WHERE token = ?`, token).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums maps every catalogued token to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT token, checksum FROM objects`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var tok, cs string
		if err := rows.Scan(&tok, &cs); err != nil {
			return nil, err
		}
		out[tok] = cs
	}
	return out, rows.Err()
}

// Backlinks returns the links pointing at target, ordered by source.
func (db *DB) Backlinks(target string) ([]models.Link, error) {
	rows, err := db.conn.Query(`SELECT source, target, kind FROM links WHERE target = ? ORDER BY source, kind`, target)
	if err != nil {
		return nil, fmt.Errorf("catalog: backlinks: %w", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.Source, &l.Target, &l.Kind); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// TagCounts returns the number of catalogued objects per type tag.
func (db *DB) TagCounts() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT tag, count(*) FROM objects GROUP BY tag`)
	if err != nil {
		return nil, fmt.Errorf("catalog: tag counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		out[tag] = n
	}
	return out, rows.Err()
}
