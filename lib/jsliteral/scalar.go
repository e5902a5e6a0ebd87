package jsliteral

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

func (p *parser) quotedString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape sequence")
			}
			esc := p.src[p.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '0':
				b.WriteByte(0)
			case 'u':
				r, err := p.unicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
				continue
			case 'x':
				if p.pos+2 >= len(p.src) {
					return "", p.errorf("truncated \\x escape")
				}
				n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+3], 16, 8)
				if err != nil {
					return "", p.errorf("bad \\x escape")
				}
				b.WriteRune(rune(n))
				p.pos += 2
			case '\n':
				// line continuation, emits nothing
			default:
				// \" \' \\ \/ and anything else pass through verbatim
				b.WriteByte(esc)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

// consumes uXXXX (the backslash is already consumed, p.pos is on 'u'),
// pairing surrogates when both halves are present.
func (p *parser) unicodeEscape() (rune, error) {
	if p.pos+4 >= len(p.src) {
		return 0, p.errorf("truncated \\u escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
	if err != nil {
		return 0, p.errorf("bad \\u escape")
	}
	p.pos += 5
	r := rune(n)
	if utf16.IsSurrogate(r) && p.pos+5 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
		n2, err := strconv.ParseUint(p.src[p.pos+2:p.pos+6], 16, 32)
		if err == nil {
			if paired := utf16.DecodeRune(r, rune(n2)); paired != 0xFFFD {
				p.pos += 6
				return paired, nil
			}
		}
	}
	return r, nil
}

func (p *parser) number() (any, error) {
	start := p.pos
	if c, _ := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	if strings.HasPrefix(p.src[p.pos:], "0x") || strings.HasPrefix(p.src[p.pos:], "0X") {
		p.pos += 2
		digits := p.pos
		for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == digits {
			return nil, p.errorf("malformed hex number")
		}
		n, err := strconv.ParseInt(p.src[start:p.pos], 0, 64)
		if err != nil {
			return nil, p.errorf("malformed hex number %q", p.src[start:p.pos])
		}
		return n, nil
	}

	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && isFloat {
			// exponent sign
			prev := p.src[p.pos-1]
			if prev == 'e' || prev == 'E' {
				p.pos++
				continue
			}
		}
		break
	}
	text := p.src[start:p.pos]
	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		// out of int64 range, fall back to float
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("malformed number %q", text)
	}
	return f, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (p *parser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	switch p.src[start:p.pos] {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	case "NaN":
		return nil, nil
	case "":
		return nil, p.errorf("unexpected character %q", p.src[start])
	default:
		return nil, p.errorf("unexpected token %q", p.src[start:p.pos])
	}
}
