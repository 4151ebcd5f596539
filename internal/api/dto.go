package api

import (
	"fmt"

	"github.com/starford/ansuz/internal/filter"
	"github.com/starford/ansuz/internal/metadata"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/noteservice"
)

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []models.NoteInfo `json:"notes" validate:"required"`
	Total int               `json:"total" example:"42" validate:"required"`
}

// QueryResponse wraps a metadata query result.
type QueryResponse struct {
	Paths []string `json:"paths" validate:"required"`
}

// FilterDTO selects the notes an edit applies to. Where clauses use the
// "key", "key=v1,v2" or "kind:key=v" forms.
type FilterDTO struct {
	Prefix  string   `json:"prefix,omitempty"`
	Suffix  string   `json:"suffix,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
	Where   []string `json:"where,omitempty"`
}

// ComposeDTO overrides the recompose settings for a single edit.
type ComposeDTO struct {
	Position string `json:"position,omitempty"`
	Template string `json:"template,omitempty"`
	Inplace  bool   `json:"inplace,omitempty"`
}

// EditRequest is the request body for a batch metadata edit.
type EditRequest struct {
	Filter  FilterDTO        `json:"filter"`
	Ops     []noteservice.Op `json:"ops" validate:"required"`
	Compose *ComposeDTO      `json:"compose,omitempty"`
	DryRun  bool             `json:"dry_run,omitempty"`
}

// buildFilter converts the wire form into a compiled filter.
func (d FilterDTO) buildFilter() (*filter.Filter, error) {
	f := &filter.Filter{Prefix: d.Prefix, Suffix: d.Suffix, Pattern: d.Pattern}
	for _, w := range d.Where {
		c, err := filter.ParseMetaClause(w)
		if err != nil {
			return nil, err
		}
		f.Meta = append(f.Meta, c)
	}
	if err := f.Compile(); err != nil {
		return nil, err
	}
	return f, nil
}

// buildCompose converts the wire form into an engine compose config.
func (d *ComposeDTO) buildCompose() (*note.ComposeConfig, error) {
	if d == nil {
		return nil, nil
	}
	pos, err := note.ParsePosition(d.Position)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	tpl, err := metadata.ParseInlineTemplate(d.Template)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	return &note.ComposeConfig{Position: pos, Template: tpl, Inplace: d.Inplace}, nil
}
