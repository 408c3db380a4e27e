// Package lineaware extends text.Stripper so colour operators are
// understood and callers can tell whether a line boundary has occurred
// since they last looked.
//
// The flag is advisory and never cleared by the extractor. A typical
// caller inspects it in an OnString hook and resets it after every token:
//
//	ex, err := lineaware.New()
//	ex.OnString(func(s string, pos []text.TextPosition) error {
//		if ex.IsNewLine() {
//			// s starts a line
//		}
//		ex.SetNewLine(false)
//		return nil
//	})
//	_, err = ex.Text(doc)
package lineaware

import (
	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/graphicsstate"
	"github.com/mvvtools/linecolors/pages"
	"github.com/mvvtools/linecolors/text"
)

// colorOperators pairs every colour setting operator with its handler.
var colorOperators = []struct {
	name    string
	handler graphicsstate.ColorHandler
}{
	{"CS", graphicsstate.SetStrokeColorSpace},
	{"cs", graphicsstate.SetFillColorSpace},
	{"K", graphicsstate.SetStrokeCMYK},
	{"k", graphicsstate.SetFillCMYK},
	{"RG", graphicsstate.SetStrokeRGB},
	{"rg", graphicsstate.SetFillRGB},
	{"G", graphicsstate.SetStrokeGray},
	{"g", graphicsstate.SetFillGray},
	{"SC", graphicsstate.SetStrokeColor},
	{"SCN", graphicsstate.SetStrokeColorN},
	{"sc", graphicsstate.SetFillColor},
	{"scn", graphicsstate.SetFillColorN},
}

// Extractor is a text.Stripper that tracks colour and line boundaries.
// It is not safe for concurrent use; use one Extractor per document.
type Extractor struct {
	*text.Stripper
	newLine bool
}

// New returns an Extractor configured with opts. Registration errors from
// the stripper are returned as they are.
func New(opts ...text.StripperOption) (*Extractor, error) {
	e := &Extractor{
		Stripper: text.NewStripper(opts...),
		newLine:  true,
	}

	for _, op := range colorOperators {
		if err := e.AddOperator(op.name, colorOperator(op.handler)); err != nil {
			return nil, err
		}
	}

	e.OnStartPage(e.StartPage)
	e.OnLineSeparator(e.LineSeparator)
	return e, nil
}

func colorOperator(h graphicsstate.ColorHandler) text.OperatorFunc {
	return func(ex *text.Extractor, op contentstream.Operation) error {
		return h(ex.GraphicsState(), op, ex.ColorSpaces())
	}
}

// StartPage runs before each page is written and marks a line boundary.
func (e *Extractor) StartPage(int, *pages.Page) error {
	e.newLine = true
	return nil
}

// LineSeparator runs before each line separator is written and marks a
// line boundary.
func (e *Extractor) LineSeparator() error {
	e.newLine = true
	return nil
}

// IsNewLine reports whether a page start or line separator has occurred
// since the flag was last set to false.
func (e *Extractor) IsNewLine() bool {
	return e.newLine
}

// SetNewLine sets the flag.
func (e *Extractor) SetNewLine(v bool) {
	e.newLine = v
}
