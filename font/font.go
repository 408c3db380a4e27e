package font

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mvvtools/linecolors/core"
)

// Resolver loads the object an IndirectRef points at and returns any
// other object unchanged.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

var (
	// ErrUnsupportedFont reports a font subtype text cannot be read from.
	ErrUnsupportedFont = errors.New("unsupported font")
	// ErrMalformedFont reports a font dictionary with entries of the wrong type.
	ErrMalformedFont = errors.New("malformed font")
)

// Glyph is one character code of a shown string.
type Glyph struct {
	Code int
	// Text is the Unicode text of the code, empty when nothing maps it.
	Text string
	// Width is the horizontal displacement in thousandths of text space.
	Width float64
	// Space marks the single-byte code 32, the only code word spacing
	// applies to.
	Space bool
}

// Font decodes the strings shown with one font resource.
type Font struct {
	Name     string // resource name, such as "F1"
	BaseFont string
	Subtype  string
	Encoding string

	enc       Encoding // simple fonts only
	toUnicode *CMap

	composite bool
	identity  bool // two-byte Identity-H or Identity-V codes
	vertical  bool
	ordering  string

	widths  map[int]float64 // by code, or by CID for composite fonts
	missing float64
	scale   float64          // glyph space width to thousandths
	metrics map[rune]float64 // standard 14 metrics, by character
	program *program
}

// Load builds a Font from a font dictionary. A ToUnicode CMap that fails
// to parse is ignored and the font's encoding is used instead.
func Load(name string, dict core.Dict, r Resolver) (*Font, error) {
	subtype, _ := dict.GetName("Subtype")
	base, _ := dict.GetName("BaseFont")
	f := &Font{
		Name:     name,
		BaseFont: string(base),
		Subtype:  string(subtype),
		widths:   make(map[int]float64),
		scale:    1,
	}

	var err error
	switch subtype {
	case "Type0":
		err = f.loadComposite(dict, r)
	case "Type1", "MMType1", "TrueType", "Type3":
		err = f.loadSimple(dict, r)
	default:
		return nil, fmt.Errorf("font %s: %w: subtype %q", name, ErrUnsupportedFont, subtype)
	}
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", name, err)
	}

	if obj, err := r.Resolve(dict.Get("ToUnicode")); err == nil {
		if s, ok := obj.(*core.Stream); ok {
			if cm, err := ParseToUnicodeCMap(s); err == nil {
				f.toUnicode = cm
			}
		}
	}
	return f, nil
}

// Standard returns a simple font with the built-in metrics of baseFont and
// WinAnsiEncoding, for text shown in fonts the resources do not define.
func Standard(name, baseFont string) *Font {
	return &Font{
		Name:     name,
		BaseFont: baseFont,
		Subtype:  "Type1",
		Encoding: WinAnsiEncoding.Name(),
		enc:      WinAnsiEncoding,
		widths:   make(map[int]float64),
		scale:    1,
		metrics:  standardMetrics(baseFont),
	}
}

// Composite reports whether f is a Type0 font.
func (f *Font) Composite() bool { return f.composite }

// Vertical reports whether f writes top to bottom.
func (f *Font) Vertical() bool { return f.vertical }

// Ordering returns the character collection of a composite font, such as
// "Japan1", or "" for simple fonts.
func (f *Font) Ordering() string { return f.ordering }

// IsStandardFont reports whether f carries built-in metrics.
func (f *Font) IsStandardFont() bool {
	_, ok := standardWidths[canonicalName(f.BaseFont)]
	return ok
}

// Decode splits data into character codes and maps each to text and width.
func (f *Font) Decode(data []byte) []Glyph {
	glyphs := make([]Glyph, 0, len(data))
	for len(data) > 0 {
		n := f.codeLength(data)
		code := int(codeValue(data[:n]))
		text := f.text(code, data[:n])
		glyphs = append(glyphs, Glyph{
			Code:  code,
			Text:  text,
			Width: f.width(code, text),
			Space: n == 1 && code == ' ',
		})
		data = data[n:]
	}
	return glyphs
}

// DecodeString returns the text of data.
func (f *Font) DecodeString(data []byte) string {
	var sb strings.Builder
	for _, g := range f.Decode(data) {
		sb.WriteString(g.Text)
	}
	return sb.String()
}

// SpaceWidth returns the width of a space in thousandths of text space.
func (f *Font) SpaceWidth() float64 {
	if !f.composite {
		if w := f.width(' ', " "); w > 0 {
			return w
		}
	}
	if w, ok := f.metrics[' ']; ok {
		return w
	}
	return 250
}

func (f *Font) codeLength(data []byte) int {
	switch {
	case !f.composite:
		return 1
	case f.identity || f.toUnicode == nil:
		return min(2, len(data))
	}
	return f.toUnicode.codeLength(data)
}

func (f *Font) text(code int, raw []byte) string {
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.lookup(raw); ok {
			return NormalizeUnicode(s)
		}
	}
	if f.composite {
		return ""
	}
	r := f.enc.Decode(byte(code))
	if r == 0 {
		return ""
	}
	return NormalizeUnicode(string(r))
}

// width follows the font's own widths, then the embedded program, then
// the standard metrics and finally the missing width. A code left out of
// a width table the font does have takes the missing width.
func (f *Font) width(code int, text string) float64 {
	if w, ok := f.widths[code]; ok {
		return w * f.scale
	}
	if len(f.widths) > 0 && f.missing > 0 {
		return f.missing * f.scale
	}
	r, _ := utf8.DecodeRuneInString(text)
	if f.program != nil {
		var w float64
		var ok bool
		if f.composite {
			w, ok = f.program.glyphAdvance(code)
		} else if text != "" {
			w, ok = f.program.runeAdvance(r)
		}
		if ok {
			return w
		}
	}
	if w, ok := f.metrics[r]; ok && text != "" {
		return w
	}
	if f.missing > 0 {
		return f.missing * f.scale
	}
	return 500
}

// resolveDict resolves obj and accepts a dictionary or nothing.
func resolveDict(r Resolver, obj core.Object, what string) (core.Dict, error) {
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	switch d := v.(type) {
	case nil:
		return nil, nil
	case core.Dict:
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s is %T", ErrMalformedFont, what, v)
}

func resolveArray(r Resolver, obj core.Object, what string) (core.Array, error) {
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	switch a := v.(type) {
	case nil:
		return nil, nil
	case core.Array:
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s is %T", ErrMalformedFont, what, v)
}
