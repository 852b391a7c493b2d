package wood

import (
	"fmt"
	"strings"
)

// DecodeError reports a node that could not be turned into a typed value.
// Node is the offending subtree (nil when the failure has no tree context) and
// Cause is the underlying error, reachable through errors.Unwrap.
type DecodeError struct {
	Node  *Wood
	Msg   string
	Cause error
}

// NewDecodeError builds a DecodeError.
func NewDecodeError(node *Wood, msg string, cause error) *DecodeError {
	return &DecodeError{Node: node, Msg: msg, Cause: cause}
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("wood: ")
	if e.Node != nil && e.Node.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Node.Line)
	}
	b.WriteString(e.Msg)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("wood: %d:%d: %s", e.Line, e.Col, e.Msg)
}
