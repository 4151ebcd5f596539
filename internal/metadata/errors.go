package metadata

import "fmt"

// InvalidFrontmatterError reports a frontmatter-shaped block that is
// structurally broken: an opening delimiter without a matching closing
// delimiter, or block content that is not a flat key-to-scalar/list
// mapping. The malformed block text stays available on the note's
// segments for diagnostics.
type InvalidFrontmatterError struct {
	Reason string
	Err    error
}

func (e *InvalidFrontmatterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid frontmatter: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid frontmatter: %s", e.Reason)
}

func (e *InvalidFrontmatterError) Unwrap() error { return e.Err }
