package mcpserver

// NoteFormatContract describes the note format that LLM consumers should
// follow when joining notes.
const NoteFormatContract = `# vaultjoin Note Format Contract

A note is a text file (default extension ` + "`" + `.md` + "`" + `) whose first line may open a
metadata block.

## Structure

` + "```" + `markdown
---
type: person          # fields are free-form; strategies read the ones they need
id: "42"              # the join key
name: Ada Lovelace
---
Body text. Everything after the closing fence is the body.
` + "```" + `

## Rules

1. **The opening fence is the first line.** It is exactly ` + "`" + `---` + "`" + `. A note whose
   first line is anything else has no metadata and its whole text is the body.
2. **The block must be closed.** A note that opens a block and never closes it
   with a ` + "`" + `---` + "`" + ` line is unreadable and is skipped by every strategy.
3. **Metadata is a mapping.** The vault codec decides the syntax (YAML by
   default, JSON with comments when configured).
4. **Keys come from strategies.** A branded strategy reads the key from one
   field. A type-and-key strategy only matches notes whose type field equals
   its note type, then reads the key from its id field. Include those fields in
   the metadata you send to ` + "`" + `join_note` + "`" + `, or the written note will not be found
   again under that key.
5. **Joins overwrite.** When a note already carries the key, ` + "`" + `join_note` + "`" + ` replaces
   its metadata and body entirely at its current path. ` + "`" + `default_path` + "`" + ` is only
   used when no note carries the key.
6. **Paths** are vault-relative, use forward slashes, and must stay inside the
   vault. Hidden directories (starting with ` + "`" + `.` + "`" + `) are never scanned.
7. **Encoding** is UTF-8. The body is written exactly as sent.

## Example

` + "```" + `json
{
  "strategy": "person",
  "key": "42",
  "dir": "people",
  "title": "Ada Lovelace",
  "metadata": {"type": "person", "id": "42", "name": "Ada Lovelace"},
  "contents": "Wrote the first published algorithm."
}
` + "```" + `

creates ` + "`" + `people/ada-lovelace.md` + "`" + ` the first time and updates that same file on
every later call with key 42.
`
