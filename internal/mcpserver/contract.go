package mcpserver

// MetadataFormatContract describes the canonical metadata format that
// LLM consumers should follow when editing notes through the tools.
const MetadataFormatContract = `# Ansuz Metadata Format Contract

Every Markdown note managed by Ansuz carries metadata in two stores.

## Frontmatter

` + "```" + `markdown
---
title: Human-readable title         # single value
tags:                               # multi-value keys use a YAML list
  - tag-one
  - tag-two
reviewed:                           # a key may be declared with no values
---
` + "```" + `

1. The ` + "`" + `---` + "`" + ` fence must be the first line of the file (no leading blank lines).
2. The block is a flat YAML mapping of scalars and lists of scalars. Nested
   mappings are rejected.
3. A note without frontmatter is valid; edits that add frontmatter keys will
   create the block.

## Inline fields

` + "```" + `markdown
Body text.

status :: draft
tags :: tag-one, tag-two
` + "```" + `

1. An inline field is a body line of the form ` + "`" + `key :: value` + "`" + `. Multiple
   values are comma-separated on one line.
2. Keys may contain letters, digits, spaces, hyphens and underscores, and
   must start with a letter.
3. Tokens enclosed in brackets or parentheses, such as ` + "`" + `[key:: value]` + "`" + `,
   are not fields and are left untouched.
4. Fields inside a ` + "`" + `> [!info]- metadata` + "`" + ` callout block are regular
   inline fields with a ` + "`" + `> ` + "`" + ` prefix.

## Editing rules

1. Use the ` + "`" + `edit_metadata` + "`" + ` tool instead of rewriting file content;
   it recomposes notes deterministically and keeps the index in step.
2. ` + "`" + `kind` + "`" + ` selects the store: ` + "`" + `frontmatter` + "`" + `, ` + "`" + `inline` + "`" + `, or ` + "`" + `all` + "`" + `.
   With ` + "`" + `all` + "`" + `, an add touches the stores where the key already exists
   and falls back to the frontmatter for brand-new keys.
3. Removing all values of a key keeps the key declared; use a remove without
   values to drop the key entirely.
4. File paths are vault-relative, end with ` + "`" + `.md` + "`" + `, and use forward slashes.
`
