// Package graphicsstate tracks the part of the PDF graphics state that
// matters for placing and colouring text: the CTM, the text state with its
// two matrices, and the stroke and fill colours.
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()                              // q
//	gs.Concat(model.Translate(0, 842))     // cm
//	gs.BeginText()                         // BT
//	gs.SetFont("F1", 12)                   // Tf
//	gs.MoveText(72, -100)                  // Td
//	p := gs.Origin()                       // where the next glyph goes
//	gs.Advance(556, false, false)          // after a glyph 556 units wide
//	err := gs.Restore()                    // Q
//
// Restore on an empty stack wraps contentstream.ErrEmptyStack.
//
// # Colour
//
// Colours are kept in their colour space and converted to [RGB] on demand.
// [ApplyColorOperator] runs one of the twelve colour operators
// (CS cs SC SCN sc scn G g RG rg K k) against a state, looking named colour
// spaces up in the page resources:
//
//	lookup := graphicsstate.NewResourceLookup(resources, resolve)
//	err := graphicsstate.ApplyColorOperator(gs, op, lookup)
//	fmt.Println(gs.FillColor.RGB().Hex())
package graphicsstate
