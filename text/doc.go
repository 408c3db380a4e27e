// Package text provides text extraction from PDF content streams.
//
// # Extractor
//
// The [Extractor] drives a contentstream.Processor over one content stream
// and tracks the graphics and text state as operators run:
//
//	ex := text.NewExtractor()
//	if err := ex.SetPageResources(page, doc); err != nil {
//		// some fonts failed to load and fall back to Helvetica metrics
//	}
//	fragments, err := ex.ExtractFromBytes(contentData)
//
// Each [TextFragment] carries its text, device space position, em height,
// font, fill and stroke colour, and the [TextPosition] of every character.
// Glyph widths come from the font: its /Widths or /W, an embedded TrueType
// program, or the standard 14 metrics.
//
// Text, positioning, graphics state and XObject operators are handled out of
// the box. Colour operators are not: register them with
// [Extractor.AddOperator] when colours matter. In strict mode any operator
// without a handler stops extraction with
// contentstream.ErrUnsupportedOperator; otherwise it is counted in
// [Extractor.Unsupported] and skipped.
//
// Operand errors and missing resources are recoverable. They are recorded
// as warnings and extraction continues with the next operator.
//
// # Stripper
//
// A [Stripper] walks the pages of a [Document], runs a fresh Extractor per
// page, and writes the text line by line. Hooks observe page starts and
// ends, line and word separators, words and individual characters:
//
//	s := text.NewStripper(text.WithPageRange(2, 3))
//	s.OnLineSeparator(func() error { lines++; return nil })
//	out, err := s.Text(doc)
//
// Characters on the same baseline (within half the glyph height) form a
// line. Within a line, explicit spaces and gaps of at least half a space
// width separate words.
package text
