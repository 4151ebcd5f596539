package index

import (
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/metadata"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		disk[info.Path] = struct{}{}

		if checksums[info.Path] == info.Checksum {
			continue
		}

		data, err := store.Read(info.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", info.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, info.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", info.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", info.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses a note and upserts its metadata fields. Notes with a
// malformed frontmatter block are still indexed with whatever fields could
// be extracted, so the sync does not retry them on every pass.
func indexFile(db *DB, path string, data []byte) error {
	n, err := note.Parse(path, string(data))
	if n == nil {
		return err
	}

	info := models.NoteInfo{
		Path:      path,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertNote(info, FieldsOf(n.Meta()))
}

// FieldsOf flattens a note's metadata into index field rows. A declared key
// with no values becomes a single row with an empty value and pos -1.
func FieldsOf(m *metadata.NoteMetadata) []models.Field {
	var out []models.Field
	emit := func(kind string, s *metadata.Store) {
		for _, k := range s.Keys() {
			vals, _ := s.Get(k)
			if len(vals) == 0 {
				out = append(out, models.Field{Kind: kind, Key: k, Pos: -1})
				continue
			}
			for i, v := range vals {
				out = append(out, models.Field{Kind: kind, Key: k, Value: v, Pos: i})
			}
		}
	}
	emit(metadata.KindFrontmatter.String(), m.Frontmatter)
	emit(metadata.KindInline.String(), m.Inline)
	return out
}
