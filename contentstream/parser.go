package contentstream

import (
	"fmt"

	"github.com/mvvtools/linecolors/core"
)

// Operation is an operator together with the operands written before it.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parser splits a content stream into operations. Tokens and operand
// objects come from the core object parser.
type Parser struct {
	data []byte
	p    *core.Parser
}

// NewParser returns a parser over one content stream.
func NewParser(data []byte) *Parser {
	return &Parser{data: data, p: core.NewParser(data)}
}

// Parse returns all operations in stream order. Operands left without an
// operator at the end of the stream are dropped.
func (cp *Parser) Parse() ([]Operation, error) {
	var ops []Operation
	var operands []core.Object
	for {
		tok, err := cp.p.Next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case core.TokenEOF:
			return ops, nil
		case core.TokenNumber, core.TokenString, core.TokenName:
			operands = append(operands, tok.Value)
			continue
		case core.TokenArrayStart, core.TokenDictStart:
			obj, err := cp.p.ParseValue(tok)
			if err != nil {
				return nil, err
			}
			operands = append(operands, obj)
			continue
		case core.TokenKeyword:
		default:
			return nil, fmt.Errorf("%w: unexpected %s at offset %d", core.ErrSyntax, tok.Kind, tok.Pos)
		}

		switch tok.Text {
		case "true", "false", "null":
			obj, _ := cp.p.ParseValue(tok)
			operands = append(operands, obj)
		case "BI":
			op, err := cp.inlineImage(tok.Pos)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			operands = nil
		default:
			ops = append(ops, Operation{Operator: tok.Text, Operands: operands})
			operands = nil
		}
	}
}

// inlineImage reads "BI key value ... ID data EI" into a single BI
// operation with the image dictionary and the raw data as operands.
func (cp *Parser) inlineImage(start int) (Operation, error) {
	dict := core.Dict{}
	for {
		tok, err := cp.p.Next()
		if err != nil {
			return Operation{}, fmt.Errorf("inline image at %d: %w", start, err)
		}
		if tok.Is("ID") {
			return cp.imageData(start, dict, tok.Pos+len("ID"))
		}
		if tok.Kind != core.TokenName {
			return Operation{}, fmt.Errorf("%w: inline image at %d: %s before ID", core.ErrSyntax, start, tok)
		}

		next, err := cp.p.Next()
		if err != nil {
			return Operation{}, fmt.Errorf("inline image at %d: %w", start, err)
		}
		var value core.Object
		switch {
		case next.Kind == core.TokenKeyword && next.Text != "true" && next.Text != "false" && next.Text != "null":
			// Some writers leave the slash off abbreviated names.
			value = core.Name(next.Text)
		default:
			if value, err = cp.p.ParseValue(next); err != nil {
				return Operation{}, fmt.Errorf("inline image at %d: %w", start, err)
			}
		}
		dict[string(tok.Value.(core.Name))] = value
	}
}

// imageData takes the bytes after ID up to an EI that stands alone
// between white space and white space, a delimiter or the end.
func (cp *Parser) imageData(start int, dict core.Dict, from int) (Operation, error) {
	data := cp.data
	if from < len(data) && core.IsSpace(data[from]) {
		from++
	}
	for i := from; i+1 < len(data); i++ {
		if data[i] != 'E' || data[i+1] != 'I' {
			continue
		}
		if i > from && !core.IsSpace(data[i-1]) {
			continue
		}
		if i+2 < len(data) && !core.IsSpace(data[i+2]) && !core.IsDelimiter(data[i+2]) {
			continue
		}

		img := data[from:i]
		if n := len(img); n > 0 && core.IsSpace(img[n-1]) {
			img = img[:n-1]
		}
		cp.p.Seek(i + 2)
		return Operation{Operator: "BI", Operands: []core.Object{dict, core.String(img)}}, nil
	}
	return Operation{}, fmt.Errorf("%w: inline image at %d has no EI", core.ErrSyntax, start)
}
