package wood

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineWidth is the column budget used by Indented.
const lineWidth = 80

// String renders w on a single line. Leaves are quoted only when they would
// not survive a round trip through Parse as bare atoms.
func (w *Wood) String() string {
	var b strings.Builder
	w.writeCompact(&b)
	return b.String()
}

// Indented renders w across several lines, keeping any subtree that fits in
// the remaining width on one line.
func (w *Wood) Indented() string {
	var b strings.Builder
	w.writeIndented(&b, 0)
	return b.String()
}

// Document renders each term on its own line, the inverse of Parse for a
// root branch.
func Document(terms []*Wood) string {
	var b strings.Builder
	for _, t := range terms {
		t.writeIndented(&b, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

func (w *Wood) writeCompact(b *strings.Builder) {
	if w.leaf {
		writeAtom(b, w.str)
		return
	}
	b.WriteByte('(')
	for i, c := range w.children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.writeCompact(b)
	}
	b.WriteByte(')')
}

func (w *Wood) writeIndented(b *strings.Builder, depth int) {
	flat := w.String()
	if w.leaf || len(w.children) < 2 || depth*2+len(flat) <= lineWidth {
		b.WriteString(flat)
		return
	}
	b.WriteByte('(')
	w.children[0].writeIndented(b, depth+1)
	pad := strings.Repeat("  ", depth+1)
	for _, c := range w.children[1:] {
		b.WriteByte('\n')
		b.WriteString(pad)
		c.writeIndented(b, depth+1)
	}
	b.WriteByte(')')
}

func writeAtom(b *strings.Builder, s string) {
	if !needsQuote(s) {
		b.WriteString(s)
		return
	}
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteString(s[i : i+n])
		}
		i += n
	}
	b.WriteByte('"')
}

func needsQuote(s string) bool {
	if s == "" || s[0] == ';' {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' || r == '\\' {
			return true
		}
	}
	return false
}
