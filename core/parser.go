package core

import (
	"bytes"
	"fmt"
)

// ReferenceResolver loads indirect objects, such as a stream /Length that
// lives elsewhere in the file.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds objects from the tokens of a Scanner.
type Parser struct {
	s        *Scanner
	resolver ReferenceResolver
	pending  []Token // read ahead; the last one comes back first
}

func NewParser(data []byte) *Parser {
	return &Parser{s: NewScanner(data)}
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(r ReferenceResolver) {
	p.resolver = r
}

// Seek moves to an absolute offset and forgets any read-ahead.
func (p *Parser) Seek(pos int) {
	p.pending = p.pending[:0]
	p.s.Seek(pos)
}

// Scanner returns the underlying scanner. Read-ahead tokens are not
// visible through it.
func (p *Parser) Scanner() *Scanner { return p.s }

// Next returns the next token, honouring tokens given back with Unread.
func (p *Parser) Next() (Token, error) {
	if n := len(p.pending); n > 0 {
		tok := p.pending[n-1]
		p.pending = p.pending[:n-1]
		return tok, nil
	}
	return p.s.Next()
}

// Unread gives a token back; the next call to Next returns it.
func (p *Parser) Unread(tok Token) {
	p.pending = append(p.pending, tok)
}

// ParseObject parses one direct object, or an "n g R" reference.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.Next()
	if err != nil {
		return nil, err
	}
	return p.ParseValue(tok)
}

// ParseValue parses the object that starts with tok.
func (p *Parser) ParseValue(tok Token) (Object, error) {
	switch tok.Kind {
	case TokenNumber:
		return p.maybeReference(tok), nil
	case TokenString, TokenName:
		return tok.Value, nil
	case TokenArrayStart:
		return p.parseArray(tok.Pos)
	case TokenDictStart:
		return p.parseDict(tok.Pos)
	case TokenKeyword:
		switch tok.Text {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, fmt.Errorf("%w: unexpected keyword %q at offset %d", ErrSyntax, tok.Text, tok.Pos)
	}
	return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, tok.Kind, tok.Pos)
}

// maybeReference turns "n g R" into an IndirectRef and otherwise returns
// the number, leaving the tokens after it unread.
func (p *Parser) maybeReference(num Token) Object {
	n, ok := num.Value.(Int)
	if !ok || n < 0 {
		return num.Value
	}

	gen, err := p.Next()
	if err != nil {
		p.s.Seek(gen.Pos)
		return num.Value
	}
	g, ok := gen.Value.(Int)
	if gen.Kind != TokenNumber || !ok || g < 0 {
		p.Unread(gen)
		return num.Value
	}

	r, err := p.Next()
	if err != nil {
		p.s.Seek(r.Pos)
		p.Unread(gen)
		return num.Value
	}
	if !r.Is("R") {
		p.Unread(r)
		p.Unread(gen)
		return num.Value
	}
	return IndirectRef{Number: int(n), Generation: int(g)}
}

func (p *Parser) parseArray(start int) (Array, error) {
	arr := Array{}
	for {
		tok, err := p.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokenArrayEnd:
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("%w: unterminated array at offset %d", ErrSyntax, start)
		}
		v, err := p.ParseValue(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func (p *Parser) parseDict(start int) (Dict, error) {
	dict := Dict{}
	for {
		tok, err := p.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("%w: unterminated dictionary at offset %d", ErrSyntax, start)
		case TokenName:
		default:
			return nil, fmt.Errorf("%w: dictionary key is a %s at offset %d", ErrSyntax, tok.Kind, tok.Pos)
		}
		key := string(tok.Value.(Name))

		next, err := p.Next()
		if err != nil {
			return nil, err
		}
		if next.Kind == TokenDictEnd {
			// A key without a value reads as null.
			return dict, nil
		}
		v, err := p.ParseValue(next)
		if err != nil {
			return nil, err
		}
		if _, isNull := v.(Null); !isNull {
			dict[key] = v
		}
	}
}

// ParseIndirectObject parses "n g obj ... endobj" at the current position,
// reading the data of a stream object. A missing endobj is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	num, err := p.nonNegativeInt("object number")
	if err != nil {
		return nil, err
	}
	gen, err := p.nonNegativeInt("generation")
	if err != nil {
		return nil, err
	}
	kw, err := p.Next()
	if err != nil {
		return nil, err
	}
	if !kw.Is("obj") {
		return nil, fmt.Errorf("%w: expected obj, got %s at offset %d", ErrSyntax, kw, kw.Pos)
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}

	tok, err := p.Next()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	if tok.Is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("%w: object %d: stream after %T", ErrSyntax, num, obj)
		}
		stream, err := p.streamBody(dict, tok.Pos+len("stream"))
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", num, err)
		}
		obj = stream
		if tok, err = p.Next(); err != nil {
			return nil, fmt.Errorf("object %d: %w", num, err)
		}
	}
	if !tok.Is("endobj") {
		p.Unread(tok)
	}

	return &IndirectObject{Ref: IndirectRef{Number: num, Generation: gen}, Object: obj}, nil
}

func (p *Parser) nonNegativeInt(what string) (int, error) {
	tok, err := p.Next()
	if err != nil {
		return 0, err
	}
	n, ok := tok.Value.(Int)
	if tok.Kind != TokenNumber || !ok || n < 0 {
		return 0, fmt.Errorf("%w: expected %s, got %s at offset %d", ErrSyntax, what, tok, tok.Pos)
	}
	return int(n), nil
}

var endstream = []byte("endstream")

// streamBody reads the data that follows the stream keyword ending at
// offset kwEnd. /Length is trusted when "endstream" follows it; otherwise
// the data runs up to the next "endstream".
func (p *Parser) streamBody(dict Dict, kwEnd int) (*Stream, error) {
	data := p.s.Bytes()
	p.pending = p.pending[:0]

	start := kwEnd
	for start < len(data) && (data[start] == ' ' || data[start] == '\t') {
		start++
	}
	if start < len(data) && data[start] == '\r' {
		start++
	}
	if start < len(data) && data[start] == '\n' {
		start++
	}

	if n, ok := p.streamLength(dict); ok && start+n <= len(data) {
		end := start + n
		after := end
		for after < len(data) && isSpace(data[after]) {
			after++
		}
		if bytes.HasPrefix(data[after:], endstream) {
			p.s.Seek(after + len(endstream))
			return &Stream{Dict: dict, Data: data[start:end]}, nil
		}
	}

	idx := bytes.Index(data[start:], endstream)
	if idx < 0 {
		return nil, fmt.Errorf("%w: stream at offset %d has no endstream", ErrSyntax, start)
	}
	end := start + idx
	switch {
	case end-start >= 2 && data[end-2] == '\r' && data[end-1] == '\n':
		end -= 2
	case end > start && (data[end-1] == '\n' || data[end-1] == '\r'):
		end--
	}
	p.s.Seek(start + idx + len(endstream))
	return &Stream{Dict: dict, Data: data[start:end]}, nil
}

func (p *Parser) streamLength(dict Dict) (int, bool) {
	obj := dict.Get("Length")
	if ref, ok := obj.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, false
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, false
		}
		obj = resolved
	}
	n, ok := obj.(Int)
	if !ok || n < 0 {
		return 0, false
	}
	return int(n), true
}
