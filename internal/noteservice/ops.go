package noteservice

import (
	"fmt"

	"github.com/starford/ansuz/internal/metadata"
	"github.com/starford/ansuz/internal/note"
)

// Op is one declarative edit applied to a note's metadata or body. The
// same shape is used by the CLI flags, the HTTP API, and the MCP tools.
type Op struct {
	Action    string   `json:"action"`
	Key       string   `json:"key,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	Values    []string `json:"values,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	Order     string   `json:"order,omitempty"`
	KeyOrder  string   `json:"key_order,omitempty"`
	Overwrite bool     `json:"overwrite,omitempty"`

	// Body operations.
	Text        string `json:"text,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Replace     string `json:"replace,omitempty"`
	Regex       bool   `json:"regex,omitempty"`
	AllowRepeat bool   `json:"allow_repeat,omitempty"`
}

// applyOp mutates n according to op.
func applyOp(n *note.Note, op Op) error {
	kind, err := metadata.ParseKind(op.Kind)
	if err != nil {
		return err
	}

	switch op.Action {
	case "add":
		if op.Key == "" {
			return fmt.Errorf("noteservice: add requires a key")
		}
		n.Add(op.Key, op.Values, kind, op.Overwrite)

	case "remove":
		if op.Key == "" {
			return fmt.Errorf("noteservice: remove requires a key")
		}
		n.Remove(op.Key, op.Values, kind)

	case "remove-empty":
		n.RemoveEmpty(kind)

	case "move":
		from, err := metadata.ParseKind(op.From)
		if err != nil {
			return err
		}
		to, err := metadata.ParseKind(op.To)
		if err != nil {
			return err
		}
		keys := op.Keys
		if op.Key != "" {
			keys = append([]string{op.Key}, keys...)
		}
		return n.Move(keys, from, to)

	case "dedupe":
		n.DedupeValues(targets(op), kind)

	case "sort-values":
		ord, err := metadata.ParseOrder(op.Order)
		if err != nil {
			return err
		}
		n.SortValues(targets(op), ord, kind)

	case "sort-keys":
		ord, err := metadata.ParseOrder(op.KeyOrder)
		if err != nil {
			return err
		}
		n.SortKeys(ord, kind)

	case "order":
		oKeys, err := metadata.ParseOrder(op.KeyOrder)
		if err != nil {
			return err
		}
		oValues, err := metadata.ParseOrder(op.Order)
		if err != nil {
			return err
		}
		n.Order(targets(op), oKeys, oValues, kind)

	case "append":
		n.Append(op.Text, op.AllowRepeat)

	case "sub":
		return n.Sub(op.Pattern, op.Replace, op.Regex)

	default:
		return fmt.Errorf("noteservice: unknown action %q", op.Action)
	}
	return nil
}

func targets(op Op) []string {
	if op.Key != "" {
		return append([]string{op.Key}, op.Keys...)
	}
	if len(op.Keys) > 0 {
		return op.Keys
	}
	return nil
}
