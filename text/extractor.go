package text

import (
	"fmt"
	"strings"

	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/core"
	"github.com/mvvtools/linecolors/font"
	"github.com/mvvtools/linecolors/graphicsstate"
	"github.com/mvvtools/linecolors/model"
	"github.com/mvvtools/linecolors/pages"
)

// maxFormDepth limits how deeply Form XObjects may nest.
const maxFormDepth = 8

// TextPosition is one shown character with the state it was painted in.
// Coordinates are in device space; X, Y is the glyph origin.
type TextPosition struct {
	Text        string
	X, Y        float64
	Width       float64
	Height      float64
	FontName    string
	FontSize    float64
	FillColor   graphicsstate.RGB
	StrokeColor graphicsstate.RGB
}

// TextFragment is the text of one string operand of Tj, ', " or TJ.
type TextFragment struct {
	Text        string
	X, Y        float64
	Width       float64
	Height      float64
	FontName    string
	FontSize    float64
	FillColor   graphicsstate.RGB
	StrokeColor graphicsstate.RGB

	// Chars holds one position per character code that maps to text.
	Chars []TextPosition
}

// Resolver loads the object an IndirectRef points at and returns any other
// object unchanged.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// direct is the Resolver of content without a document behind it.
type direct struct{}

func (direct) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return nil, fmt.Errorf("reference %s: no document: %w", ref, contentstream.ErrMissingResource)
	}
	return obj, nil
}

// OperatorFunc handles one content stream operation on behalf of an
// Extractor. Handlers read and modify the extractor's graphics state.
type OperatorFunc func(e *Extractor, op contentstream.Operation) error

// Extractor runs content streams and records the text they show. An
// Extractor is used for one page and is not safe for concurrent use.
type Extractor struct {
	gs   *graphicsstate.GraphicsState
	proc *contentstream.Processor

	resources   core.Dict
	resolver    Resolver
	fonts       map[string]*font.Font
	colorSpaces graphicsstate.ColorSpaceLookup
	formDepth   int

	fragments []TextFragment
}

// NewExtractor returns an Extractor with the text, graphics state and
// XObject operators registered. Colour operators are left unregistered.
func NewExtractor() *Extractor {
	e := &Extractor{
		gs:       graphicsstate.NewGraphicsState(),
		proc:     contentstream.NewProcessor(),
		resolver: direct{},
		fonts:    make(map[string]*font.Font),
	}
	e.colorSpaces = graphicsstate.NewResourceLookup(nil, nil)
	for name, fn := range baseOperators {
		e.AddOperator(name, fn)
	}
	return e
}

// AddOperator registers fn for the named operator, replacing the built-in
// handler if there is one.
func (e *Extractor) AddOperator(name string, fn OperatorFunc) error {
	if fn == nil {
		return e.proc.AddOperator(name, nil)
	}
	return e.proc.AddOperator(name, func(op contentstream.Operation) error {
		return fn(e, op)
	})
}

// Operators returns the names of all registered operators, sorted.
func (e *Extractor) Operators() []string { return e.proc.Operators() }

// SetStrict makes operators without a handler fail extraction.
func (e *Extractor) SetStrict(strict bool) { e.proc.SetStrict(strict) }

// GraphicsState returns the current graphics state.
func (e *Extractor) GraphicsState() *graphicsstate.GraphicsState { return e.gs }

// ColorSpaces resolves colour space names against the resources currently
// in effect.
func (e *Extractor) ColorSpaces() graphicsstate.ColorSpaceLookup { return e.colorSpaces }

// Warnings returns the recoverable problems met so far.
func (e *Extractor) Warnings() []string { return e.proc.Warnings() }

// AddWarning records a problem that did not stop extraction.
func (e *Extractor) AddWarning(msg string) { e.proc.AddWarning(msg) }

// Unsupported reports how often each operator without a handler occurred.
func (e *Extractor) Unsupported() map[string]int { return e.proc.Unsupported() }

// SetFont makes f the font selected by name in Tf operators.
func (e *Extractor) SetFont(name string, f *font.Font) {
	e.fonts[name] = f
}

// SetPageResources makes the page's fonts, colour spaces and XObjects
// available to the operators.
func (e *Extractor) SetPageResources(page *pages.Page, r Resolver) error {
	resources, err := page.Resources()
	if err != nil {
		e.useResolver(r)
		return err
	}
	return e.SetResources(resources, r)
}

// SetResources installs a resources dictionary and loads its fonts. Fonts
// that fail to load are reported in the returned error; the others are
// still installed. A nil Resolver only accepts direct objects.
func (e *Extractor) SetResources(resources core.Dict, r Resolver) error {
	e.useResolver(r)
	e.resources = resources
	e.colorSpaces = graphicsstate.NewResourceLookup(resources, e.resolver.Resolve)
	return e.loadFonts(resources)
}

func (e *Extractor) useResolver(r Resolver) {
	if r == nil {
		r = direct{}
	}
	e.resolver = r
}

// loadFonts loads every entry of the /Font resource dictionary, in name
// order so failures are reported deterministically.
func (e *Extractor) loadFonts(resources core.Dict) error {
	obj, err := e.resolver.Resolve(resources.Get("Font"))
	if err != nil {
		return fmt.Errorf("font resources: %w", err)
	}
	dict, _ := obj.(core.Dict)

	var failed []string
	for _, name := range dict.Keys() {
		fontObj, err := e.resolver.Resolve(dict[name])
		if err != nil {
			failed = append(failed, fmt.Sprintf("font %s: %v", name, err))
			continue
		}
		fontDict, ok := fontObj.(core.Dict)
		if !ok {
			failed = append(failed, fmt.Sprintf("font %s is %T", name, fontObj))
			continue
		}
		f, err := font.Load(name, fontDict, e.resolver)
		if err != nil {
			failed = append(failed, err.Error())
			continue
		}
		e.fonts[name] = f
	}
	if len(failed) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(failed, "; "), contentstream.ErrMissingResource)
	}
	return nil
}

// Extract runs operations and returns the fragments they show.
func (e *Extractor) Extract(operations []contentstream.Operation) ([]TextFragment, error) {
	e.fragments = nil
	if err := e.proc.Process(operations); err != nil {
		return nil, err
	}
	return e.fragments, nil
}

// ExtractFromBytes parses a content stream and runs it.
func (e *Extractor) ExtractFromBytes(data []byte) ([]TextFragment, error) {
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse content stream: %w", err)
	}
	return e.Extract(ops)
}

// currentFont returns the font selected by the last Tf. Names the
// resources do not define get Helvetica metrics.
func (e *Extractor) currentFont() *font.Font {
	name := e.gs.Text.Font
	f, ok := e.fonts[name]
	if !ok {
		f = font.Standard(name, "Helvetica")
		e.fonts[name] = f
	}
	return f
}

// showText records one string operand as a fragment and moves the text
// matrix past each of its glyphs. Codes without text still advance but
// take no part in the fragment.
func (e *Extractor) showText(data []byte) {
	f := e.currentFont()
	vertical := f.Vertical()
	fill := e.gs.FillColor.RGB()
	stroke := e.gs.StrokeColor.RGB()
	height := e.gs.FontHeight()

	var chars []TextPosition
	for _, g := range f.Decode(data) {
		at := e.gs.Origin()
		w := g.Width
		if vertical {
			w = 1000
		}
		e.gs.Advance(w, g.Space, vertical)
		if g.Text == "" {
			continue
		}
		chars = append(chars, TextPosition{
			Text:        g.Text,
			X:           at.X,
			Y:           at.Y,
			Width:       at.Distance(e.gs.Origin()),
			Height:      height,
			FontName:    f.Name,
			FontSize:    height,
			FillColor:   fill,
			StrokeColor: stroke,
		})
	}
	if len(chars) == 0 {
		return
	}

	var sb strings.Builder
	for _, c := range chars {
		sb.WriteString(c.Text)
	}
	start := model.Point{X: chars[0].X, Y: chars[0].Y}
	e.fragments = append(e.fragments, TextFragment{
		Text:        sb.String(),
		X:           start.X,
		Y:           start.Y,
		Width:       start.Distance(e.gs.Origin()),
		Height:      height,
		FontName:    f.Name,
		FontSize:    height,
		FillColor:   fill,
		StrokeColor: stroke,
		Chars:       chars,
	})
}

// showTextArray runs the elements of a TJ array: strings are shown and
// numbers move the text position.
func (e *Extractor) showTextArray(arr core.Array) {
	for _, item := range arr {
		if s, ok := item.(core.String); ok {
			e.showText([]byte(s))
			continue
		}
		if n, ok := core.Number(item); ok {
			e.gs.Adjust(n, e.currentFont().Vertical())
		}
	}
}

// runForm interprets a Form XObject with its own resources and a copy of
// the graphics state. The caller's fonts and resources come back after.
func (e *Extractor) runForm(name string, form *core.Stream) error {
	if e.formDepth >= maxFormDepth {
		e.AddWarning(fmt.Sprintf("form %s: nested deeper than %d, skipped", name, maxFormDepth))
		return nil
	}
	data, err := form.Decode()
	if err != nil {
		e.AddWarning(fmt.Sprintf("form %s: %v", name, err))
		return nil
	}
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		e.AddWarning(fmt.Sprintf("form %s: %v", name, err))
		return nil
	}

	gs, resources, colorSpaces, fonts := e.gs, e.resources, e.colorSpaces, e.fonts
	e.formDepth++
	defer func() {
		e.gs, e.resources, e.colorSpaces, e.fonts = gs, resources, colorSpaces, fonts
		e.formDepth--
	}()

	e.gs = gs.Clone()
	if m, ok := form.Dict.GetArray("Matrix"); ok && len(m) == 6 {
		e.gs.Concat(toMatrix(m))
	}
	if obj := form.Dict.Get("Resources"); obj != nil {
		e.fonts = make(map[string]*font.Font, len(fonts))
		for k, v := range fonts {
			e.fonts[k] = v
		}
		if res, err := e.resolver.Resolve(obj); err == nil {
			if dict, ok := res.(core.Dict); ok {
				e.resources = dict
				e.colorSpaces = graphicsstate.NewResourceLookup(dict, e.resolver.Resolve)
				if err := e.loadFonts(dict); err != nil {
					e.AddWarning(fmt.Sprintf("form %s: %v", name, err))
				}
			}
		}
	}
	return e.proc.Process(ops)
}

// xobject looks up a named XObject in the current resources.
func (e *Extractor) xobject(name string) (*core.Stream, error) {
	obj, err := e.resolver.Resolve(e.resources.Get("XObject"))
	if err != nil {
		return nil, fmt.Errorf("xobject %s: %v: %w", name, err, contentstream.ErrMissingResource)
	}
	xobjects, _ := obj.(core.Dict)
	if !xobjects.Has(name) {
		return nil, fmt.Errorf("xobject %s: %w", name, contentstream.ErrMissingResource)
	}
	obj, err = e.resolver.Resolve(xobjects[name])
	if err != nil {
		return nil, fmt.Errorf("xobject %s: %v: %w", name, err, contentstream.ErrMissingResource)
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("xobject %s is %T: %w", name, obj, contentstream.ErrMissingResource)
	}
	return stream, nil
}

// spaceWidth returns the device space width of a space in the named font.
func (e *Extractor) spaceWidth(fontName string, fontSize float64) float64 {
	if f, ok := e.fonts[fontName]; ok {
		return f.SpaceWidth() * fontSize / 1000
	}
	return fontSize / 4
}

func toMatrix(operands []core.Object) model.Matrix {
	var m model.Matrix
	for i, obj := range operands {
		m[i], _ = core.Number(obj)
	}
	return m
}
