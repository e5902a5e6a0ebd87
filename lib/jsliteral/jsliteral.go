// Package jsliteral parses JavaScript object literals of the kind that
// server-rendered pages inline into <script> tags to seed client state.
// It is a data parser, not an interpreter: the input is evaluated only as
// far as maps, slices and scalars go, nothing is executed.
//
// The accepted grammar is deliberately looser than JSON: unquoted and
// single-quoted keys, single-quoted strings, trailing commas, comments,
// hex integers and a bare `undefined` (decoded as nil) are all tolerated,
// since that is what the observed embedded datasets actually contain.
package jsliteral

import "fmt"

// ParseError reports the byte offset at which the literal stopped making
// sense, which is the main debugging handle when a page ships a truncated
// or reshaped dataset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsliteral: %s at offset %d", e.Msg, e.Offset)
}

// Parse decodes a single object or array literal into a generic tree of
// map[string]any, []any, string, int64, float64, bool and nil.
func Parse(src string) (any, error) {
	p := &parser{src: src}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing garbage after literal")
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			end := p.pos + 2
			for end+1 < len(p.src) && !(p.src[end] == '*' && p.src[end+1] == '/') {
				end++
			}
			if end+1 >= len(p.src) {
				p.pos = len(p.src)
				return
			}
			p.pos = end + 2
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) value() (any, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of literal")
	}
	switch {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"' || c == '\'':
		return p.quotedString()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.word()
	}
}

func (p *parser) object() (map[string]any, error) {
	p.pos++ // consume '{'
	obj := map[string]any{}
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated object")
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return nil, p.errorf("expected ':' after object key %q", key)
		}
		p.pos++
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		obj[key] = val

		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errorf("unterminated object")
		}
		switch c {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, p.errorf("expected ',' or '}' in object, got %q", c)
		}
	}
}

func (p *parser) key() (string, error) {
	c, ok := p.peek()
	if !ok {
		return "", p.errorf("unexpected end of literal in object key")
	}
	if c == '"' || c == '\'' {
		return p.quotedString()
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("invalid object key starting with %q", c)
	}
	return p.src[start:p.pos], nil
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) array() ([]any, error) {
	p.pos++ // consume '['
	arr := []any{}
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated array")
		}
		if c == ']' {
			p.pos++
			return arr, nil
		}

		val, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)

		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errorf("unterminated array")
		}
		switch c {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' in array, got %q", c)
		}
	}
}
