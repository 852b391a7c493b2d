package wood

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokOpen tokenKind = iota + 1
	tokClose
	tokAtom
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
	// lineStart marks the first token of a source line at paren depth 0.
	lineStart bool
	indent    string
}

// Parse reads a document of zero or more terms and returns a root branch whose
// children are those terms.
//
// Parenthesised terms may span lines. Outside parens, indentation nests: a
// line holding several terms is a branch, and lines indented beneath it are
// appended to that branch. A single-term line that has indented children
// becomes a branch headed by that term. A line's leading whitespace must
// extend or repeat that of the lines it nests under, so tabs and spaces
// cannot be mixed between related lines.
func Parse(src string) (*Wood, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.document()
}

type parser struct {
	toks []token
	pos  int
}

type frame struct {
	indent string
	node   *Wood
}

func (p *parser) document() (*Wood, error) {
	root := Branch()
	stack := []frame{{node: root}}

	for p.pos < len(p.toks) {
		first := p.toks[p.pos]
		var terms []*Wood
		for p.pos < len(p.toks) {
			if len(terms) > 0 && p.toks[p.pos].lineStart {
				break
			}
			t, err := p.term()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}

		var node *Wood
		if len(terms) == 1 {
			node = terms[0]
		} else {
			node = &Wood{children: terms, Line: first.line, Col: first.col}
		}

		for len(stack) > 1 {
			top := stack[len(stack)-1].indent
			if len(first.indent) > len(top) && strings.HasPrefix(first.indent, top) {
				break
			}
			if !strings.HasPrefix(top, first.indent) {
				return nil, &SyntaxError{Line: first.line, Col: first.col, Msg: "inconsistent indentation"}
			}
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.promote()
		parent.children = append(parent.children, node)
		stack = append(stack, frame{indent: first.indent, node: node})
	}
	return root, nil
}

func (p *parser) term() (*Wood, error) {
	t := p.toks[p.pos]
	p.pos++
	switch t.kind {
	case tokAtom:
		return &Wood{leaf: true, str: t.text, Line: t.line, Col: t.col}, nil
	case tokClose:
		return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "unexpected ')'"}
	}

	b := &Wood{Line: t.line, Col: t.col}
	for {
		if p.pos >= len(p.toks) {
			return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "unclosed '('"}
		}
		if p.toks[p.pos].kind == tokClose {
			p.pos++
			return b, nil
		}
		c, err := p.term()
		if err != nil {
			return nil, err
		}
		b.children = append(b.children, c)
	}
}

func tokenize(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	atLineStart := true
	lineBegin := 0
	depth := 0

	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == '\n' {
			i += size
			line++
			col = 1
			atLineStart = true
			lineBegin = i
			continue
		}
		if unicode.IsSpace(r) {
			i += size
			col++
			continue
		}
		if r == ';' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		}

		t := token{line: line, col: col, lineStart: atLineStart && depth == 0}
		if t.lineStart {
			t.indent = src[lineBegin:i]
		}
		atLineStart = false

		switch r {
		case '(':
			t.kind = tokOpen
			depth++
			i += size
			col++
		case ')':
			t.kind = tokClose
			if depth > 0 {
				depth--
			}
			i += size
			col++
		case '"':
			i += size
			col++
			var sb strings.Builder
			closed := false
			for i < len(src) {
				c, n := utf8.DecodeRuneInString(src[i:])
				i += n
				col++
				if c == '"' {
					closed = true
					break
				}
				if c == '\n' {
					line++
					col = 1
				}
				if c == '\\' {
					if i >= len(src) {
						break
					}
					e, m := utf8.DecodeRuneInString(src[i:])
					i += m
					col++
					switch e {
					case 'n':
						sb.WriteByte('\n')
					case 't':
						sb.WriteByte('\t')
					case 'r':
						sb.WriteByte('\r')
					case '"', '\\':
						sb.WriteRune(e)
					default:
						return nil, &SyntaxError{Line: line, Col: col - 1, Msg: "unknown escape \\" + string(e)}
					}
					continue
				}
				sb.WriteString(src[i-n : i])
			}
			if !closed {
				return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "unterminated string"}
			}
			t.kind = tokAtom
			t.text = sb.String()
		default:
			start := i
			for i < len(src) {
				c, n := utf8.DecodeRuneInString(src[i:])
				if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' {
					break
				}
				i += n
				col++
			}
			t.kind = tokAtom
			t.text = src[start:i]
		}
		toks = append(toks, t)
	}
	return toks, nil
}
