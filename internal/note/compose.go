package note

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/metadata"
)

// Position says where a regrouped or newly added inline block lands in the
// composed note.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// ParsePosition converts a string flag value into a Position.
// The empty string means PositionBottom.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "top":
		return PositionTop, nil
	case "bottom", "":
		return PositionBottom, nil
	}
	return PositionBottom, fmt.Errorf("note: unknown inline position %q", s)
}

// ComposeConfig drives how UpdateContent rebuilds note text.
type ComposeConfig struct {
	// Position places the regrouped inline block (Inplace=false) or any
	// newly added inline fields (Inplace=true). Defaults to bottom.
	Position Position
	// Template renders grouped inline fields. Defaults to standard.
	Template metadata.InlineTemplate
	// Inplace rewrites each originally matched inline line in its original
	// position instead of regrouping all fields into one block.
	Inplace bool
}

func (c ComposeConfig) withDefaults() ComposeConfig {
	if c.Position == "" {
		c.Position = PositionBottom
	}
	if c.Template == "" {
		c.Template = metadata.TemplateStandard
	}
	return c
}

// compose rebuilds full note text from the current stores and the original
// body. The frontmatter block is always fully reserialized at the top (or
// omitted when its store is empty). With unchanged stores and config,
// repeated composition is byte-identical.
func compose(m *metadata.NoteMetadata, body string, cfg ComposeConfig) string {
	cfg = cfg.withDefaults()

	var main, block string
	if cfg.Inplace {
		rewritten, written := metadata.RewriteInline(body, m.Inline)
		main = rewritten
		// Fields added to the store but never present in the body get
		// grouped at the configured position.
		fresh := metadata.NewStore()
		for _, k := range m.Inline.Keys() {
			if written[k] {
				continue
			}
			vals, _ := m.Inline.Get(k)
			fresh.Set(k, vals)
		}
		block = metadata.InlineString(fresh, cfg.Template)
	} else {
		main = metadata.EraseInline(body)
		block = metadata.InlineString(m.Inline, cfg.Template)
	}

	var parts []string
	push := func(p string) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if cfg.Position == PositionTop {
		push(block)
		push(main)
	} else {
		push(main)
		push(block)
	}

	out := strings.Join(parts, "\n\n")
	if out != "" {
		out += "\n"
	}
	return metadata.FrontmatterString(m.Frontmatter) + out
}
