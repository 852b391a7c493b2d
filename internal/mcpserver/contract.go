package mcpserver

// RecordFormatContract describes the record text accepted by the
// insert_record tool and by bulk-load files.
const RecordFormatContract = `# obweb Record Format Contract

Records are written in Wood, a labeled-tree text format. A branch is a
parenthesised list whose first element is its label: ` + "`" + `(name Alice)` + "`" + ` is the
field "name" holding "Alice". Atoms containing spaces, parentheses or quotes
are written as double-quoted strings with ` + "`" + `\n \t \" \\` + "`" + ` escapes. A ` + "`" + `;` + "`" + `
starts a comment that runs to the end of the line.

## Record types

` + "```" + `
(profile (id TOKEN) (name NAME) (description TEXT))
(endorsement (id TOKEN) (by PROFILE) (of TARGET) (statement TEXT))
(post (id TOKEN) (author PROFILE) (title TEXT) (body TEXT) (replying_to POST))
` + "```" + `

- ` + "`" + `id` + "`" + ` is optional. Records without one get a fresh id above every id
  already known.
- ` + "`" + `statement` + "`" + `, ` + "`" + `title` + "`" + ` and ` + "`" + `replying_to` + "`" + ` are optional.
- Every record may also carry ` + "`" + `(branch_root TOKEN)` + "`" + ` and
  ` + "`" + `(edits TOKEN ...)` + "`" + ` to place it in the edit history of earlier records.
  An absent branch_root means the record starts its own branch.

## Ids

An id token is 22 characters: the 16 little-endian bytes of a 128-bit id in
unpadded standard base64 (alphabet ` + "`" + `A-Z a-z 0-9 + /` + "`" + `). Id 1 is
` + "`" + `AQAAAAAAAAAAAAAAAAAAAA` + "`" + `.

## Load files

A load file is a sequence of directives. ` + "`" + `insert` + "`" + ` is followed by records,
either inline or indented on the following lines:

` + "```" + `
insert
  profile (id AQAAAAAAAAAAAAAAAAAAAA) (name Alice) (description "writes about wood")
  post (author AQAAAAAAAAAAAAAAAAAAAA) (body "hello")
` + "```" + `

` + "`" + `(insert report_ids)` + "`" + ` as the directive head asks for the ids of the inserted
records to be reported.
`
