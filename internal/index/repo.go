package index

import (
	"fmt"

	"github.com/starford/ansuz/internal/models"
)

// UpsertNote replaces a note row and all its field rows within a transaction.
func (db *DB) UpsertNote(info models.NoteInfo, fields []models.Field) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, info.Path, info.Checksum, info.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM fields WHERE path = ?`, info.Path)
	if len(fields) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO fields (path, kind, key, value, pos) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare field insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range fields {
			if _, err := stmt.Exec(info.Path, f.Kind, f.Key, f.Value, f.Pos); err != nil {
				return fmt.Errorf("index: insert field: %w", err)
			}
		}
	}

	if err := ftsReplace(tx, info.Path, fields); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteNote removes a note and its field rows.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM fields WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetFields returns the indexed fields of a note in occurrence order.
func (db *DB) GetFields(path string) ([]models.Field, error) {
	rows, err := db.conn.Query(`
		SELECT kind, key, value, pos
		FROM fields
		WHERE path = ?
		ORDER BY rowid
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: get fields: %w", err)
	}
	defer rows.Close()

	var out []models.Field
	for rows.Next() {
		var f models.Field
		if err := rows.Scan(&f.Kind, &f.Key, &f.Value, &f.Pos); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListNotes returns a page of indexed notes ordered by path, plus the total count.
func (db *DB) ListNotes(limit, offset int) ([]models.NoteInfo, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, checksum, updated_at
		FROM notes
		ORDER BY path
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.NoteInfo
	for rows.Next() {
		var n models.NoteInfo
		if err := rows.Scan(&n.Path, &n.Checksum, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// QueryPaths returns the paths of notes matching the field query, ordered
// by path.
func (db *DB) QueryPaths(q FieldQuery) ([]string, error) {
	if q.Key == "" {
		return nil, fmt.Errorf("index: field query requires a key")
	}
	sql := `SELECT DISTINCT path FROM fields WHERE key = ?`
	args := []any{q.Key}
	if q.Value != "" {
		sql += ` AND value = ?`
		args = append(args, q.Value)
	}
	if q.Kind != "" {
		sql += ` AND kind = ?`
		args = append(args, q.Kind)
	}
	sql += ` ORDER BY path`

	rows, err := db.conn.Query(sql, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query paths: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListKeys returns every metadata key in the vault with the number of notes
// declaring it, ordered by key. Kind narrows the count to one store.
func (db *DB) ListKeys(kind string) ([]KeyCount, error) {
	sql := `SELECT key, COUNT(DISTINCT path) FROM fields`
	var args []any
	if kind != "" {
		sql += ` WHERE kind = ?`
		args = append(args, kind)
	}
	sql += ` GROUP BY key ORDER BY key`

	rows, err := db.conn.Query(sql, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list keys: %w", err)
	}
	defer rows.Close()

	var out []KeyCount
	for rows.Next() {
		var kc KeyCount
		if err := rows.Scan(&kc.Key, &kc.Notes); err != nil {
			return nil, err
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
