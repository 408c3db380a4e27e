package graphicsstate

import (
	"fmt"
	"sort"

	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/core"
)

// ColorHandler applies one colour operator to a graphics state. Named colour
// spaces are resolved through lookup.
type ColorHandler func(gs *GraphicsState, op contentstream.Operation, lookup ColorSpaceLookup) error

// Colour operator handlers, one per operator.
var (
	SetStrokeColorSpace ColorHandler = func(gs *GraphicsState, op contentstream.Operation, lookup ColorSpaceLookup) error {
		return setColorSpace(&gs.StrokeColor, op, lookup)
	}
	SetFillColorSpace ColorHandler = func(gs *GraphicsState, op contentstream.Operation, lookup ColorSpaceLookup) error {
		return setColorSpace(&gs.FillColor, op, lookup)
	}
	SetStrokeColor ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setColor(&gs.StrokeColor, op, false)
	}
	SetStrokeColorN ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setColor(&gs.StrokeColor, op, true)
	}
	SetFillColor ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setColor(&gs.FillColor, op, false)
	}
	SetFillColorN ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setColor(&gs.FillColor, op, true)
	}
	SetStrokeGray ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setDeviceColor(&gs.StrokeColor, DeviceGray, op)
	}
	SetFillGray ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setDeviceColor(&gs.FillColor, DeviceGray, op)
	}
	SetStrokeRGB ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setDeviceColor(&gs.StrokeColor, DeviceRGB, op)
	}
	SetFillRGB ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setDeviceColor(&gs.FillColor, DeviceRGB, op)
	}
	SetStrokeCMYK ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setDeviceColor(&gs.StrokeColor, DeviceCMYK, op)
	}
	SetFillCMYK ColorHandler = func(gs *GraphicsState, op contentstream.Operation, _ ColorSpaceLookup) error {
		return setDeviceColor(&gs.FillColor, DeviceCMYK, op)
	}
)

var colorHandlers = map[string]ColorHandler{
	"CS":  SetStrokeColorSpace,
	"cs":  SetFillColorSpace,
	"SC":  SetStrokeColor,
	"SCN": SetStrokeColorN,
	"sc":  SetFillColor,
	"scn": SetFillColorN,
	"G":   SetStrokeGray,
	"g":   SetFillGray,
	"RG":  SetStrokeRGB,
	"rg":  SetFillRGB,
	"K":   SetStrokeCMYK,
	"k":   SetFillCMYK,
}

// ColorOperators returns the names of the colour operators, sorted.
func ColorOperators() []string {
	names := make([]string, 0, len(colorHandlers))
	for name := range colorHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyColorOperator dispatches op to the handler for its operator.
func ApplyColorOperator(gs *GraphicsState, op contentstream.Operation, lookup ColorSpaceLookup) error {
	h, ok := colorHandlers[op.Operator]
	if !ok {
		return fmt.Errorf("%s: %w", op.Operator, contentstream.ErrUnsupportedOperator)
	}
	return h(gs, op, lookup)
}

func setColorSpace(c *Color, op contentstream.Operation, lookup ColorSpaceLookup) error {
	if len(op.Operands) < 1 {
		return fmt.Errorf("%s: %w", op.Operator, contentstream.ErrMissingOperand)
	}
	last := op.Operands[len(op.Operands)-1]
	name, ok := last.(core.Name)
	if !ok {
		return fmt.Errorf("%s: operand is %T: %w", op.Operator, last, contentstream.ErrMissingOperand)
	}
	if lookup == nil {
		lookup = NewResourceLookup(nil, nil)
	}

	space, err := lookup(string(name))
	if err != nil {
		return err
	}
	*c = NewColor(space)
	return nil
}

// setColor implements SC/sc and, with allowPattern, SCN/scn. A trailing
// name operand selects a pattern.
func setColor(c *Color, op contentstream.Operation, allowPattern bool) error {
	operands := op.Operands
	pattern := ""
	if allowPattern && len(operands) > 0 {
		if name, ok := operands[len(operands)-1].(core.Name); ok {
			pattern = string(name)
			operands = operands[:len(operands)-1]
		}
	}

	space := c.Space
	if space == nil {
		space = DeviceGray
	}
	n := space.NumComponents()
	if pattern == "" && len(operands) < n {
		return fmt.Errorf("%s: %d operands for %s: %w", op.Operator, len(operands), space.Name(), contentstream.ErrMissingOperand)
	}

	comps, err := numbers(op.Operator, operands)
	if err != nil {
		return err
	}
	if len(comps) > n {
		comps = comps[len(comps)-n:]
	}

	*c = Color{Space: space, Components: comps, Pattern: pattern}
	return nil
}

func setDeviceColor(c *Color, space ColorSpace, op contentstream.Operation) error {
	n := space.NumComponents()
	if len(op.Operands) < n {
		return fmt.Errorf("%s: %d operands, need %d: %w", op.Operator, len(op.Operands), n, contentstream.ErrMissingOperand)
	}
	comps, err := numbers(op.Operator, op.Operands[len(op.Operands)-n:])
	if err != nil {
		return err
	}
	*c = Color{Space: space, Components: comps}
	return nil
}

func numbers(operator string, operands []core.Object) ([]float64, error) {
	out := make([]float64, len(operands))
	for i, obj := range operands {
		v, ok := number(obj)
		if !ok {
			return nil, fmt.Errorf("%s: operand %d is %T: %w", operator, i, obj, contentstream.ErrMissingOperand)
		}
		out[i] = v
	}
	return out, nil
}
