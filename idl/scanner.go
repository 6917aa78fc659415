package idl

import (
	"strings"
)

// scanner tokenizes a Varlink interface description (spec.md §4.1). It
// yields raw token text; the parser (parser.go) assigns meaning to each
// token in context, the same one-token-lookahead style as the grammar in
// spec.md §4.2.
type scanner struct {
	src []byte
	pos int

	// doc accumulates the docstring immediately preceding the next
	// token: contiguous "#" comment lines with no blank line or other
	// content between them and the token (spec.md §4.1).
	doc           strings.Builder
	docLineActive bool
}

func newScanner(src string) *scanner {
	return &scanner{src: []byte(src)}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte { return s.src[s.pos] }

// takeDoc returns the accumulated docstring and resets it, the same
// exchange-and-clear behavior as the original scanner's get_docstring().
func (s *scanner) takeDoc() string {
	doc := s.doc.String()
	s.doc.Reset()
	s.docLineActive = false
	return doc
}

func (s *scanner) clearDoc() {
	s.doc.Reset()
	s.docLineActive = false
}

// skipSpaceAndComments advances past runs of whitespace and "#...\n"
// comment lines, accumulating contiguous comment lines into s.doc. A
// blank line, or any non-comment content already consumed since the last
// token, clears the accumulator (spec.md §4.1).
func (s *scanner) skipSpaceAndComments() {
	sawNewlineSinceComment := false
	for !s.eof() {
		c := s.peek()
		switch {
		case c == '#':
			start := s.pos
			for !s.eof() && s.src[s.pos] != '\n' {
				s.pos++
			}
			s.doc.Write(s.src[start:s.pos])
			s.doc.WriteByte('\n')
			// Consume the comment's own line break: a further newline
			// before the next comment is a blank line and clears doc.
			if !s.eof() {
				s.pos++
			}
			sawNewlineSinceComment = true
			s.docLineActive = true
		case c == '\n':
			if sawNewlineSinceComment {
				// Two consecutive newlines with nothing but
				// whitespace between: a blank line, clears doc.
				s.clearDoc()
			}
			sawNewlineSinceComment = true
			s.pos++
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
		default:
			return
		}
	}
}

// next returns the next raw token, or ("", false) at end of input.
func (s *scanner) next() (string, bool) {
	s.skipSpaceAndComments()
	if s.eof() {
		return "", false
	}

	switch s.peek() {
	case '(', ')', '{', '}', ':', ',':
		tok := string(s.peek())
		s.pos++
		return tok, true
	case '?':
		s.pos++
		return "?", true
	case '[':
		if strings.HasPrefix(string(s.src[s.pos:]), "[]") {
			s.pos += 2
			return "[]", true
		}
		if strings.HasPrefix(string(s.src[s.pos:]), "[string]") {
			s.pos += len("[string]")
			return "[string]", true
		}
		// Unrecognized bracket form.
		s.pos++
		return "[", true
	case '-':
		if strings.HasPrefix(string(s.src[s.pos:]), "->") {
			s.pos += 2
			return "->", true
		}
	}

	start := s.pos
	for !s.eof() && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		// Unrecognized character sequence.
		s.pos++
		return string(s.src[start:s.pos]), true
	}
	return string(s.src[start:s.pos]), true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if len(s) == 0 || !isAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '_' {
			continue
		}
		if !isAlphaNum(s[i]) {
			return false
		}
	}
	return true
}

func isMemberName(s string) bool {
	if len(s) == 0 || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isAlphaNum(s[i]) {
			return false
		}
	}
	return true
}

// isInterfaceName validates a reverse-DNS interface name per spec.md §3:
// at least two dot-separated labels, each starting with [a-z], containing
// [a-z0-9] or internal '-' runs, and starting/ending on an alphanumeric.
func isInterfaceName(s string) bool {
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isInterfaceLabel(label) {
			return false
		}
	}
	return true
}

func isInterfaceLabel(label string) bool {
	if len(label) == 0 {
		return false
	}
	if label[0] < 'a' || label[0] > 'z' {
		return false
	}
	last := label[len(label)-1]
	if !(last >= 'a' && last <= 'z') && !(last >= '0' && last <= '9') {
		return false
	}
	for i := 1; i < len(label); i++ {
		c := label[i]
		if c == '-' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}
