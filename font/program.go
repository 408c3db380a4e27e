package font

import (
	"github.com/mvvtools/linecolors/core"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// program is an embedded TrueType or OpenType font program. It supplies
// widths when the font dictionary leaves them out.
type program struct {
	f   *sfnt.Font
	buf sfnt.Buffer
}

// loadProgram parses the program behind /FontFile2 or /FontFile3. Fonts
// without a usable program yield nil.
func loadProgram(desc core.Dict, r Resolver) *program {
	for _, key := range []string{"FontFile2", "FontFile3"} {
		obj, err := r.Resolve(desc.Get(key))
		if err != nil {
			continue
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		data, err := s.Decode()
		if err != nil {
			continue
		}
		if f, err := sfnt.Parse(data); err == nil {
			return &program{f: f}
		}
	}
	return nil
}

// glyphAdvance returns the advance of glyph gid in thousandths of an em.
func (p *program) glyphAdvance(gid int) (float64, bool) {
	if gid <= 0 || gid >= p.f.NumGlyphs() {
		return 0, false
	}
	adv, err := p.f.GlyphAdvance(&p.buf, sfnt.GlyphIndex(gid), fixed.I(1000), xfont.HintingNone)
	if err != nil {
		return 0, false
	}
	return float64(adv) / 64, true
}

// runeAdvance looks r up in the program's Unicode cmap.
func (p *program) runeAdvance(r rune) (float64, bool) {
	gid, err := p.f.GlyphIndex(&p.buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return p.glyphAdvance(int(gid))
}
