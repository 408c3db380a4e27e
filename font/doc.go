// Package font turns the strings shown by text operators into Unicode
// text and glyph widths.
//
// [Load] reads a font dictionary of any subtype text can come from:
// Type1, MMType1, TrueType and Type3 simple fonts, and Type0 composite
// fonts with a CIDFont descendant.
//
//	f, err := font.Load("F1", fontDict, resolver)
//	for _, g := range f.Decode(raw) {
//	    fmt.Println(g.Code, g.Text, g.Width)
//	}
//
// Text comes from the ToUnicode CMap when one maps the code, and from the
// simple font's encoding otherwise. Widths come from /Widths or /W, then
// from an embedded TrueType program, then from the built-in standard 14
// metrics.
package font
