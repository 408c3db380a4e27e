package core

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrSyntax marks malformed PDF syntax.
var ErrSyntax = errors.New("pdf syntax error")

// TokenKind classifies a Token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenString
	TokenName
	TokenKeyword
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of data"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenName:
		return "name"
	case TokenKeyword:
		return "keyword"
	case TokenArrayStart:
		return "["
	case TokenArrayEnd:
		return "]"
	case TokenDictStart:
		return "<<"
	case TokenDictEnd:
		return ">>"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexical element. Numbers, strings and names carry their
// decoded Value; keywords carry their Text.
type Token struct {
	Kind  TokenKind
	Value Object
	Text  string
	Pos   int
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Kind == TokenKeyword && t.Text == kw
}

func (t Token) String() string {
	switch t.Kind {
	case TokenKeyword:
		return t.Text
	case TokenNumber, TokenName:
		return t.Value.String()
	case TokenString:
		return objectString(t.Value)
	}
	return t.Kind.String()
}

// Scanner tokenizes PDF bytes. It is shared by the object parser and the
// content stream parser.
type Scanner struct {
	data []byte
	pos  int
}

func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Pos returns the offset of the next unread byte.
func (s *Scanner) Pos() int { return s.pos }

// Seek moves to an absolute offset, clamped to the data.
func (s *Scanner) Seek(pos int) {
	s.pos = clamp(pos, 0, len(s.data))
}

// Bytes returns the whole input.
func (s *Scanner) Bytes() []byte { return s.data }

// SkipSpace skips white space and comments.
func (s *Scanner) SkipSpace() {
	for s.pos < len(s.data) {
		switch c := s.data[s.pos]; {
		case isSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		default:
			return
		}
	}
}

// Next returns the next token. At the end of the data it returns a
// TokenEOF token and no error.
func (s *Scanner) Next() (Token, error) {
	s.SkipSpace()
	start := s.pos
	if start >= len(s.data) {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	c := s.data[start]
	switch {
	case c == '(':
		str, err := s.literal()
		return Token{Kind: TokenString, Value: str, Pos: start}, err
	case c == '<' && s.peekAt(1) == '<':
		s.pos += 2
		return Token{Kind: TokenDictStart, Pos: start}, nil
	case c == '<':
		str, err := s.hex()
		return Token{Kind: TokenString, Value: str, Pos: start}, err
	case c == '>' && s.peekAt(1) == '>':
		s.pos += 2
		return Token{Kind: TokenDictEnd, Pos: start}, nil
	case c == '[':
		s.pos++
		return Token{Kind: TokenArrayStart, Pos: start}, nil
	case c == ']':
		s.pos++
		return Token{Kind: TokenArrayEnd, Pos: start}, nil
	case c == '/':
		s.pos++
		return Token{Kind: TokenName, Value: s.name(), Pos: start}, nil
	case c == '{' || c == '}':
		// PostScript calculator braces.
		s.pos++
		return Token{Kind: TokenKeyword, Text: string(c), Pos: start}, nil
	case isDelimiter(c):
		s.pos++
		return Token{Pos: start}, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, c, start)
	}

	word := s.regular()
	if c == '+' || c == '-' || c == '.' || isDigit(c) {
		num, err := parseNumber(word)
		if err != nil {
			return Token{Pos: start}, fmt.Errorf("%w: number %q at offset %d", ErrSyntax, word, start)
		}
		return Token{Kind: TokenNumber, Value: num, Pos: start}, nil
	}
	return Token{Kind: TokenKeyword, Text: string(word), Pos: start}, nil
}

func (s *Scanner) peekAt(n int) byte {
	if s.pos+n < len(s.data) {
		return s.data[s.pos+n]
	}
	return 0
}

// regular consumes a run of regular characters.
func (s *Scanner) regular() []byte {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
	return s.data[start:s.pos]
}

// name decodes the characters after '/'. "#xx" is a hex escaped byte; a
// '#' not followed by two hex digits stands for itself.
func (s *Scanner) name() Name {
	raw := s.regular()
	if bytes.IndexByte(raw, '#') < 0 {
		return Name(raw)
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) && isHexDigit(raw[i+1]) && isHexDigit(raw[i+2]) {
			out = append(out, unhex(raw[i+1])<<4|unhex(raw[i+2]))
			i += 2
			continue
		}
		out = append(out, raw[i])
	}
	return Name(out)
}

// literal reads a parenthesised string with its escapes. Balanced
// parentheses need no escaping and an end of line reads as "\n".
func (s *Scanner) literal() (String, error) {
	start := s.pos
	s.pos++
	var out []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return String(out), nil
			}
		case '\r':
			if s.peekAt(0) == '\n' {
				s.pos++
			}
			c = '\n'
		case '\\':
			if s.pos >= len(s.data) {
				continue
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\r':
				if s.peekAt(0) == '\n' {
					s.pos++
				}
				continue
			case '\n':
				continue
			default:
				if e < '0' || e > '7' {
					// \( \) \\ and unknown escapes keep the character.
					c = e
					break
				}
				v := int(e - '0')
				for n := 1; n < 3 && s.pos < len(s.data) && isOctal(s.data[s.pos]); n++ {
					v = v*8 + int(s.data[s.pos]-'0')
					s.pos++
				}
				c = byte(v)
			}
		}
		out = append(out, c)
	}
	return String(out), fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, start)
}

// hex reads a <...> string. White space is ignored and an odd final digit
// is followed by an implied 0.
func (s *Scanner) hex() (String, error) {
	start := s.pos
	s.pos++
	var out []byte
	var hi byte
	odd := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch {
		case c == '>':
			if odd {
				out = append(out, hi<<4)
			}
			return String(out), nil
		case isSpace(c):
		case isHexDigit(c):
			if odd {
				out = append(out, hi<<4|unhex(c))
			} else {
				hi = unhex(c)
			}
			odd = !odd
		default:
			return "", fmt.Errorf("%w: %q in hex string at offset %d", ErrSyntax, c, start)
		}
	}
	return "", fmt.Errorf("%w: unterminated hex string at offset %d", ErrSyntax, start)
}

// parseNumber accepts PDF numbers: optional sign, digits, at most one
// point. Doubled signs, as some writers emit, count once.
func parseNumber(word []byte) (Object, error) {
	for len(word) > 1 && (word[0] == '+' || word[0] == '-') && (word[1] == '+' || word[1] == '-') {
		word = word[1:]
	}
	text := string(word)
	if bytes.IndexByte(word, '.') < 0 {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(v), nil
		}
	}
	if bytes.ContainsAny(word, "eEinfINFxX_") {
		return nil, ErrSyntax
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return Real(v), nil
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
func isOctal(c byte) bool { return '0' <= c && c <= '7' }

func isHexDigit(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsSpace reports whether c is PDF white space.
func IsSpace(c byte) bool { return isSpace(c) }

// IsDelimiter reports whether c ends a keyword or number.
func IsDelimiter(c byte) bool { return isDelimiter(c) }
