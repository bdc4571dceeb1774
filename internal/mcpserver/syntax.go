package mcpserver

const querySyntaxURI = "notekit://query-syntax"

// QuerySyntax documents the search operators understood by search_notes.
const QuerySyntax = `# Notekit Query Syntax

A query is free text plus any number of operators. Matching is
case-insensitive.

| Operator | Example | Meaning |
|---|---|---|
| word | ` + "`cake`" + ` | term matched against title, content, folder and tags, with typo tolerance |
| "phrase" | ` + "`\"carrot cake\"`" + ` | exact phrase in title or content |
| tag:x, #x | ` + "`tag:dessert`, `#dessert`" + ` | note has the tag (near spellings also match) |
| folder:x | ` + "`folder:recipes`" + ` | folder name contains x; the note must match |
| -word | ` + "`-chocolate`" + ` | exclude notes containing word |
| before:date | ` + "`before:2024-06-01`" + ` | modified strictly before the date |
| after:date | ` + "`after:2024-01-01`" + ` | modified strictly after the date |

Notes:

1. A query with only exclusions or dates matches every note unranked.
2. With a single free-text word, notes that do not contain it (even
   fuzzily) are dropped.
3. Unreadable dates match nothing.
4. ` + "`-tag:x`" + ` is read as ` + "`tag:x`" + `.

## Links

- ` + "`[[Title]]`" + ` or ` + "`[[Title|alias]]`" + ` links to the note with that title.
- ` + "`[text](app://note/<id>)`" + ` links to a note by id.
`
