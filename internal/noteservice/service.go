// Package noteservice coordinates storage, parsing, and the index for
// vault-wide metadata operations.
package noteservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/filter"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/metadata"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/storage"
)

// editConcurrency bounds the number of notes processed in parallel
// during a batch edit.
const editConcurrency = 8

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path      string         `json:"path"`
	Content   string         `json:"content"`
	Checksum  string         `json:"checksum"`
	Fields    []models.Field `json:"fields"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Failure records one note that a batch edit could not process.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarizes a batch edit. Updated notes were recomposed and
// written (or would be, on a dry run); skipped notes matched the filter
// but came out byte-identical.
type Report struct {
	Updated []string  `json:"updated"`
	Skipped []string  `json:"skipped"`
	Failed  []Failure `json:"failed"`
	DryRun  bool      `json:"dry_run"`
}

// Service coordinates storage and index operations.
type Service struct {
	store   storage.Provider
	db      *index.DB
	logger  *slog.Logger
	compose note.ComposeConfig
}

// NewService creates a new note service. cfg supplies the default
// recompose settings for edits that do not override them.
func NewService(store storage.Provider, db *index.DB, logger *slog.Logger, cfg note.ComposeConfig) *Service {
	return &Service{store: store, db: db, logger: logger, compose: cfg}
}

// GetNote reads a note from storage and parses its metadata.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	n, err := note.Parse(path, string(data))
	if n == nil {
		return nil, err
	}
	return &NoteDetail{
		Path:      path,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Fields:    nonNilSlice(index.FieldsOf(n.Meta())),
		UpdatedAt: time.Now(),
	}, nil
}

// ListNotes returns paginated indexed notes.
func (s *Service) ListNotes(_ context.Context, limit, offset int) ([]models.NoteInfo, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(rows), total, nil
}

// Query returns the paths of notes whose indexed fields match q.
func (s *Service) Query(_ context.Context, q index.FieldQuery) ([]string, error) {
	paths, err := s.db.QueryPaths(q)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(paths), nil
}

// ListKeys returns the vault-wide key inventory.
func (s *Service) ListKeys(_ context.Context, kind string) ([]index.KeyCount, error) {
	keys, err := s.db.ListKeys(kind)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(keys), nil
}

// Search delegates full-text search over metadata to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Sync brings the index up to date with the vault on disk.
func (s *Service) Sync(_ context.Context) error {
	return index.Sync(s.db, s.store, s.logger)
}

// Edit applies ops to every note selected by f and recomposes the result.
// Notes are processed concurrently; a failure on one note never aborts
// the rest. When dryRun is set nothing is written or reindexed.
//
// A nil compose override uses the service defaults.
func (s *Service) Edit(ctx context.Context, f *filter.Filter, ops []Op, composeOverride *note.ComposeConfig, dryRun bool) (*Report, error) {
	if f == nil {
		f = &filter.Filter{}
	}
	if err := f.Compile(); err != nil {
		return nil, err
	}
	cfg := s.compose
	if composeOverride != nil {
		cfg = *composeOverride
	}

	infos, err := s.store.List("")
	if err != nil {
		return nil, err
	}

	report := &Report{DryRun: dryRun}
	var mu sync.Mutex
	fail := func(path string, err error) {
		mu.Lock()
		report.Failed = append(report.Failed, Failure{Path: path, Error: err.Error()})
		mu.Unlock()
		s.logger.Warn("edit: note failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(editConcurrency)
	for _, info := range infos {
		path := info.Path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := s.store.Read(path)
			if err != nil {
				fail(path, err)
				return nil
			}
			raw := string(data)
			n, err := note.Parse(path, raw)
			if n == nil {
				fail(path, err)
				return nil
			}
			if !f.Match(path, n.Meta()) {
				return nil
			}
			if err != nil {
				// Malformed frontmatter: editing would destroy the
				// retained block, so report instead of touching it.
				fail(path, err)
				return nil
			}

			for _, op := range ops {
				if opErr := applyOp(n, op); opErr != nil {
					fail(path, opErr)
					return nil
				}
			}

			composed := n.UpdateContent(cfg)
			if composed == raw {
				mu.Lock()
				report.Skipped = append(report.Skipped, path)
				mu.Unlock()
				return nil
			}

			if !dryRun {
				if err := s.store.Write(path, []byte(composed)); err != nil {
					fail(path, err)
					return nil
				}
				if err := s.reindex(path, []byte(composed), n.Meta()); err != nil {
					fail(path, err)
					return nil
				}
			}
			mu.Lock()
			report.Updated = append(report.Updated, path)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(report.Updated)
	sort.Strings(report.Skipped)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Path < report.Failed[j].Path })
	report.Updated = nonNilSlice(report.Updated)
	report.Skipped = nonNilSlice(report.Skipped)
	report.Failed = nonNilSlice(report.Failed)

	s.logger.Info("edit: done",
		slog.Int("updated", len(report.Updated)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)),
		slog.Bool("dry_run", dryRun))
	return report, nil
}

// reindex upserts the already-parsed metadata of a freshly written note.
func (s *Service) reindex(path string, data []byte, m *metadata.NoteMetadata) error {
	info := models.NoteInfo{
		Path:      path,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.UpsertNote(info, index.FieldsOf(m))
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
