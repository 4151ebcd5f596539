// Package metadata models the structured metadata embedded in Markdown
// notes: the YAML frontmatter block and inline "key :: value" fields.
// Both forms parse into an ordered Store, and NoteMetadata exposes one
// mutation surface over the two stores selected by a Kind.
package metadata

import "fmt"

// Kind selects which metadata store an operation targets.
type Kind int

const (
	// KindFrontmatter targets the frontmatter store only.
	KindFrontmatter Kind = iota
	// KindInline targets the inline store only.
	KindInline
	// KindAll applies an operation to both stores independently.
	KindAll
)

// ParseKind converts a string flag value into a Kind.
// The empty string means KindAll.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "frontmatter":
		return KindFrontmatter, nil
	case "inline":
		return KindInline, nil
	case "all", "":
		return KindAll, nil
	}
	return KindAll, fmt.Errorf("metadata: unknown kind %q", s)
}

func (k Kind) String() string {
	switch k {
	case KindFrontmatter:
		return "frontmatter"
	case KindInline:
		return "inline"
	case KindAll:
		return "all"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Order is a sort direction. Comparison is always ordinal (byte-wise),
// never locale-aware. The zero value OrderNone is accepted only by the
// composite NoteMetadata.Order to skip one of its sub-orders.
type Order int

const (
	OrderNone Order = iota
	OrderAsc
	OrderDesc
)

// ParseOrder converts a string flag value into an Order.
// The empty string means OrderNone (skip).
func ParseOrder(s string) (Order, error) {
	switch s {
	case "asc":
		return OrderAsc, nil
	case "desc":
		return OrderDesc, nil
	case "":
		return OrderNone, nil
	}
	return OrderNone, fmt.Errorf("metadata: unknown order %q", s)
}

func (o Order) String() string {
	switch o {
	case OrderAsc:
		return "asc"
	case OrderDesc:
		return "desc"
	case OrderNone:
		return "none"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}
