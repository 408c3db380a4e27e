package text

import (
	"fmt"
	"strings"

	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/core"
	"github.com/mvvtools/linecolors/graphicsstate"
	"github.com/mvvtools/linecolors/model"
)

// baseOperators are registered on every new Extractor.
var baseOperators = map[string]OperatorFunc{
	// Graphics state
	"q":  func(e *Extractor, _ contentstream.Operation) error { e.gs.Save(); return nil },
	"Q":  func(e *Extractor, _ contentstream.Operation) error { return e.gs.Restore() },
	"cm": concatMatrix,
	"w":  setLineWidth,

	// Text objects and state
	"BT": func(e *Extractor, _ contentstream.Operation) error { e.gs.BeginText(); return nil },
	"ET": ignoreOperator,
	"Tf": setFont,
	"Tc": textStateNumber(func(ts *graphicsstate.TextState, v float64) { ts.CharSpacing = v }),
	"Tw": textStateNumber(func(ts *graphicsstate.TextState, v float64) { ts.WordSpacing = v }),
	"Tz": textStateNumber(func(ts *graphicsstate.TextState, v float64) { ts.Scaling = v }),
	"TL": textStateNumber(func(ts *graphicsstate.TextState, v float64) { ts.Leading = v }),
	"Ts": textStateNumber(func(ts *graphicsstate.TextState, v float64) { ts.Rise = v }),
	"Tr": textStateNumber(func(ts *graphicsstate.TextState, v float64) { ts.RenderingMode = int(v) }),

	// Text positioning
	"Tm": setTextMatrix,
	"Td": moveText,
	"TD": moveText,
	"T*": func(e *Extractor, _ contentstream.Operation) error { e.gs.NextLine(); return nil },

	// Text showing
	"Tj":  showString,
	"'":   showString,
	"\"":  showString,
	"TJ":  showArray,
	"Do":  paintXObject,
	"d0":  ignoreOperator,
	"d1":  ignoreOperator,
	"BI":  ignoreOperator,
	"sh":  ignoreOperator,
	"gs":  ignoreOperator,
	"d":   ignoreOperator,
	"i":   ignoreOperator,
	"j":   ignoreOperator,
	"J":   ignoreOperator,
	"M":   ignoreOperator,
	"ri":  ignoreOperator,
	"BX":  ignoreOperator,
	"EX":  ignoreOperator,
	"BMC": ignoreOperator,
	"BDC": ignoreOperator,
	"EMC": ignoreOperator,
	"MP":  ignoreOperator,
	"DP":  ignoreOperator,
}

// Path construction, painting and clipping never affect text.
func init() {
	for _, name := range strings.Fields("m l c v y h re S s f F f* B B* b b* n W W*") {
		baseOperators[name] = ignoreOperator
	}
}

func ignoreOperator(*Extractor, contentstream.Operation) error { return nil }

// lastNumbers returns the last n operands as numbers.
func lastNumbers(op contentstream.Operation, n int) ([]float64, error) {
	if len(op.Operands) < n {
		return nil, fmt.Errorf("%s: %d operands, need %d: %w", op.Operator, len(op.Operands), n, contentstream.ErrMissingOperand)
	}
	out := make([]float64, n)
	for i, obj := range op.Operands[len(op.Operands)-n:] {
		v, ok := core.Number(obj)
		if !ok {
			return nil, fmt.Errorf("%s: operand %d is %T: %w", op.Operator, i, obj, contentstream.ErrMissingOperand)
		}
		out[i] = v
	}
	return out, nil
}

func textStateNumber(set func(ts *graphicsstate.TextState, v float64)) OperatorFunc {
	return func(e *Extractor, op contentstream.Operation) error {
		v, err := lastNumbers(op, 1)
		if err != nil {
			return err
		}
		set(&e.gs.Text, v[0])
		return nil
	}
}

func matrixOperand(op contentstream.Operation) (model.Matrix, error) {
	v, err := lastNumbers(op, 6)
	if err != nil {
		return model.Matrix{}, err
	}
	return model.Matrix(v), nil
}

func concatMatrix(e *Extractor, op contentstream.Operation) error {
	m, err := matrixOperand(op)
	if err != nil {
		return err
	}
	e.gs.Concat(m)
	return nil
}

func setTextMatrix(e *Extractor, op contentstream.Operation) error {
	m, err := matrixOperand(op)
	if err != nil {
		return err
	}
	e.gs.SetTextMatrix(m)
	return nil
}

func setLineWidth(e *Extractor, op contentstream.Operation) error {
	v, err := lastNumbers(op, 1)
	if err != nil {
		return err
	}
	e.gs.LineWidth = v[0]
	return nil
}

// setFont selects a font resource. Names missing from the resources are
// shown with Helvetica metrics.
func setFont(e *Extractor, op contentstream.Operation) error {
	if len(op.Operands) < 2 {
		return fmt.Errorf("Tf: %d operands: %w", len(op.Operands), contentstream.ErrMissingOperand)
	}
	name, ok := op.Operands[len(op.Operands)-2].(core.Name)
	if !ok {
		return fmt.Errorf("Tf: font operand is %T: %w", op.Operands[len(op.Operands)-2], contentstream.ErrMissingOperand)
	}
	size, err := lastNumbers(op, 1)
	if err != nil {
		return err
	}
	e.gs.SetFont(string(name), size[0])
	return nil
}

// moveText implements Td and TD, which also sets the leading.
func moveText(e *Extractor, op contentstream.Operation) error {
	v, err := lastNumbers(op, 2)
	if err != nil {
		return err
	}
	if op.Operator == "TD" {
		e.gs.Text.Leading = -v[1]
	}
	e.gs.MoveText(v[0], v[1])
	return nil
}

// showString implements Tj, ' and ".
func showString(e *Extractor, op contentstream.Operation) error {
	want := 1
	if op.Operator == "\"" {
		want = 3
	}
	if len(op.Operands) < want {
		return fmt.Errorf("%s: %d operands: %w", op.Operator, len(op.Operands), contentstream.ErrMissingOperand)
	}
	operands := op.Operands[len(op.Operands)-want:]
	str, ok := operands[want-1].(core.String)
	if !ok {
		return fmt.Errorf("%s: text operand is %T: %w", op.Operator, operands[want-1], contentstream.ErrMissingOperand)
	}

	if op.Operator == "\"" {
		if aw, ok := core.Number(operands[0]); ok {
			e.gs.Text.WordSpacing = aw
		}
		if ac, ok := core.Number(operands[1]); ok {
			e.gs.Text.CharSpacing = ac
		}
	}
	if op.Operator != "Tj" {
		e.gs.NextLine()
	}
	e.showText([]byte(str))
	return nil
}

func showArray(e *Extractor, op contentstream.Operation) error {
	if len(op.Operands) < 1 {
		return fmt.Errorf("TJ: %w", contentstream.ErrMissingOperand)
	}
	arr, ok := op.Operands[len(op.Operands)-1].(core.Array)
	if !ok {
		return fmt.Errorf("TJ: operand is %T: %w", op.Operands[len(op.Operands)-1], contentstream.ErrMissingOperand)
	}
	e.showTextArray(arr)
	return nil
}

// paintXObject runs Form XObjects. Images carry no text and are skipped.
func paintXObject(e *Extractor, op contentstream.Operation) error {
	if len(op.Operands) < 1 {
		return fmt.Errorf("Do: %w", contentstream.ErrMissingOperand)
	}
	name, ok := op.Operands[len(op.Operands)-1].(core.Name)
	if !ok {
		return fmt.Errorf("Do: operand is %T: %w", op.Operands[len(op.Operands)-1], contentstream.ErrMissingOperand)
	}

	stream, err := e.xobject(string(name))
	if err != nil {
		return err
	}
	if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Form" {
		return nil
	}
	return e.runForm(string(name), stream)
}
