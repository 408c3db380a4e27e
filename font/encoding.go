package font

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mvvtools/linecolors/core"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Encoding maps single-byte character codes to Unicode.
type Encoding interface {
	Name() string
	Decode(code byte) rune
	DecodeString(data []byte) string
}

// tableEncoding is a simple-font encoding backed by a 256-entry table.
// Zero entries are unmapped and decode as the byte value itself.
type tableEncoding struct {
	name  string
	table [256]rune
}

func (e *tableEncoding) Name() string { return e.name }

func (e *tableEncoding) Decode(code byte) rune {
	if r := e.table[code]; r != 0 {
		return r
	}
	return rune(code)
}

func (e *tableEncoding) DecodeString(data []byte) string {
	return decodeBytes(e, data)
}

func decodeBytes(e Encoding, data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(e.Decode(b))
	}
	return sb.String()
}

// Predefined simple-font encodings.
var (
	WinAnsiEncoding       Encoding = fromCharmap("WinAnsiEncoding", charmap.Windows1252)
	MacRomanEncoding      Encoding = fromCharmap("MacRomanEncoding", charmap.Macintosh)
	PDFDocEncoding        Encoding = newPDFDocEncoding()
	StandardEncodingTable Encoding = newStandardEncoding()
)

func fromCharmap(name string, cm *charmap.Charmap) *tableEncoding {
	e := &tableEncoding{name: name}
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r == utf8.RuneError {
			continue
		}
		e.table[i] = r
	}
	return e
}

func newPDFDocEncoding() *tableEncoding {
	e := &tableEncoding{name: "PDFDocEncoding"}
	// Latin-1 everywhere except the ranges PDFDocEncoding redefines
	for i := 0; i < 256; i++ {
		e.table[i] = rune(i)
	}
	copy(e.table[0x18:0x20], []rune{0x02D8, 0x02C7, 0x02C6, 0x02D9, 0x02DD, 0x02DB, 0x02DA, 0x02DC})
	copy(e.table[0x80:0xA1], []rune{
		0x2022, 0x2020, 0x2021, 0x2026, 0x2014, 0x2013, 0x0192, 0x2044,
		0x2039, 0x203A, 0x2212, 0x2030, 0x201E, 0x201C, 0x201D, 0x2018,
		0x2019, 0x201A, 0x2122, 0xFB01, 0xFB02, 0x0141, 0x0152, 0x0160,
		0x0178, 0x017D, 0x0131, 0x0142, 0x0153, 0x0161, 0x017E, 0xFFFD,
		0x20AC,
	})
	return e
}

// standardHigh lists the non-ASCII half of Adobe StandardEncoding by glyph name.
var standardHigh = map[byte]string{
	0xA1: "exclamdown", 0xA2: "cent", 0xA3: "sterling", 0xA4: "fraction",
	0xA5: "yen", 0xA6: "florin", 0xA7: "section", 0xA8: "currency",
	0xA9: "quotesingle", 0xAA: "quotedblleft", 0xAB: "guillemotleft",
	0xAC: "guilsinglleft", 0xAD: "guilsinglright", 0xAE: "fi", 0xAF: "fl",
	0xB1: "endash", 0xB2: "dagger", 0xB3: "daggerdbl", 0xB4: "periodcentered",
	0xB6: "paragraph", 0xB7: "bullet", 0xB8: "quotesinglbase",
	0xB9: "quotedblbase", 0xBA: "quotedblright", 0xBB: "guillemotright",
	0xBC: "ellipsis", 0xBD: "perthousand", 0xBF: "questiondown",
	0xC1: "grave", 0xC2: "acute", 0xC3: "circumflex", 0xC4: "tilde",
	0xC5: "macron", 0xC6: "breve", 0xC7: "dotaccent", 0xC8: "dieresis",
	0xCA: "ring", 0xCB: "cedilla", 0xCD: "hungarumlaut", 0xCE: "ogonek",
	0xCF: "caron", 0xD0: "emdash", 0xE1: "AE", 0xE3: "ordfeminine",
	0xE8: "Lslash", 0xE9: "Oslash", 0xEA: "OE", 0xEB: "ordmasculine",
	0xF1: "ae", 0xF5: "dotlessi", 0xF8: "lslash", 0xF9: "oslash",
	0xFA: "oe", 0xFB: "germandbls",
}

func newStandardEncoding() *tableEncoding {
	e := &tableEncoding{name: "StandardEncoding"}
	for i := 0x20; i < 0x7F; i++ {
		e.table[i] = rune(i)
	}
	e.table[0x27] = 0x2019
	e.table[0x60] = 0x2018
	for code, glyph := range standardHigh {
		e.table[code] = glyphNameToUnicode[glyph]
	}
	return e
}

// GetEncoding returns the named predefined encoding. Unknown names fall
// back to WinAnsiEncoding.
func GetEncoding(name string) Encoding {
	switch name {
	case "MacRomanEncoding":
		return MacRomanEncoding
	case "PDFDocEncoding":
		return PDFDocEncoding
	case "StandardEncoding":
		return StandardEncodingTable
	default:
		return WinAnsiEncoding
	}
}

// CustomEncoding overrides some codes of a base encoding, as a font's
// /Differences array does.
type CustomEncoding struct {
	base        Encoding
	differences map[byte]rune
}

// NewCustomEncoding layers rune overrides on top of base.
func NewCustomEncoding(base Encoding, differences map[byte]rune) *CustomEncoding {
	return &CustomEncoding{base: base, differences: differences}
}

func (e *CustomEncoding) Name() string { return e.base.Name() + "+custom" }

func (e *CustomEncoding) Decode(code byte) rune {
	if r, ok := e.differences[code]; ok {
		return r
	}
	return e.base.Decode(code)
}

func (e *CustomEncoding) DecodeString(data []byte) string {
	return decodeBytes(e, data)
}

// ParseDifferences reads a /Differences array ([code name name code name ...])
// into code overrides. Unknown glyph names are skipped.
func ParseDifferences(diffs core.Array) map[byte]rune {
	out := make(map[byte]rune)
	code := 0
	for _, item := range diffs {
		switch v := item.(type) {
		case core.Int:
			code = int(v)
		case core.Real:
			code = int(v)
		case core.Name:
			if code >= 0 && code < 256 {
				if r, ok := GlyphToRune(string(v)); ok {
					out[byte(code)] = r
				}
			}
			code++
		}
	}
	return out
}

// GlyphToRune maps an Adobe glyph name to Unicode. Besides the named glyphs
// it understands uniXXXX, uXXXX[XX] and single-character names.
func GlyphToRune(name string) (rune, bool) {
	if r, ok := glyphNameToUnicode[name]; ok {
		return r, true
	}
	// Suffixed variants such as "a.sc" or "one.oldstyle"
	if dot := strings.IndexByte(name, '.'); dot > 0 {
		return GlyphToRune(name[:dot])
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil && v <= utf8.MaxRune {
			return rune(v), true
		}
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return r, true
	}
	return 0, false
}

// glyphNameToUnicode covers the Adobe Glyph List entries used by the
// Latin text encodings.
var glyphNameToUnicode = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": '‘', "quoteright": '’',
	"quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„',
	"guilsinglleft": '‹', "guilsinglright": '›',
	"guillemotleft": '«', "guillemotright": '»',
	"endash": '–', "emdash": '—', "bullet": '•',
	"ellipsis": '…', "dagger": '†', "daggerdbl": '‡',
	"perthousand": '‰', "trademark": '™', "Euro": '€',
	"fraction": '⁄', "minus": '−', "florin": 'ƒ',
	"fi": 'ﬁ', "fl": 'ﬂ', "dotlessi": 'ı',
	"circumflex": 'ˆ', "tilde": '˜', "breve": '˘',
	"dotaccent": '˙', "ring": '˚', "ogonek": '˛',
	"hungarumlaut": '˝', "caron": 'ˇ',
	"exclamdown": '¡', "cent": '¢', "sterling": '£', "currency": '¤',
	"yen": '¥', "brokenbar": '¦', "section": '§', "dieresis": '¨',
	"copyright": '©', "ordfeminine": 'ª', "logicalnot": '¬',
	"registered": '®', "macron": '¯', "degree": '°', "plusminus": '±',
	"twosuperior": '²', "threesuperior": '³', "acute": '´', "mu": 'µ',
	"paragraph": '¶', "periodcentered": '·', "cedilla": '¸',
	"onesuperior": '¹', "ordmasculine": 'º', "onequarter": '¼',
	"onehalf": '½', "threequarters": '¾', "questiondown": '¿',
	"multiply": '×', "divide": '÷', "nbspace": ' ', "sfthyphen": '­',
	"Agrave": 'À', "Aacute": 'Á', "Acircumflex": 'Â', "Atilde": 'Ã',
	"Adieresis": 'Ä', "Aring": 'Å', "AE": 'Æ', "Ccedilla": 'Ç',
	"Egrave": 'È', "Eacute": 'É', "Ecircumflex": 'Ê', "Edieresis": 'Ë',
	"Igrave": 'Ì', "Iacute": 'Í', "Icircumflex": 'Î', "Idieresis": 'Ï',
	"Eth": 'Ð', "Ntilde": 'Ñ', "Ograve": 'Ò', "Oacute": 'Ó',
	"Ocircumflex": 'Ô', "Otilde": 'Õ', "Odieresis": 'Ö', "Oslash": 'Ø',
	"Ugrave": 'Ù', "Uacute": 'Ú', "Ucircumflex": 'Û', "Udieresis": 'Ü',
	"Yacute": 'Ý', "Thorn": 'Þ', "germandbls": 'ß',
	"agrave": 'à', "aacute": 'á', "acircumflex": 'â', "atilde": 'ã',
	"adieresis": 'ä', "aring": 'å', "ae": 'æ', "ccedilla": 'ç',
	"egrave": 'è', "eacute": 'é', "ecircumflex": 'ê', "edieresis": 'ë',
	"igrave": 'ì', "iacute": 'í', "icircumflex": 'î', "idieresis": 'ï',
	"eth": 'ð', "ntilde": 'ñ', "ograve": 'ò', "oacute": 'ó',
	"ocircumflex": 'ô', "otilde": 'õ', "odieresis": 'ö', "oslash": 'ø',
	"ugrave": 'ù', "uacute": 'ú', "ucircumflex": 'û', "udieresis": 'ü',
	"yacute": 'ý', "thorn": 'þ', "ydieresis": 'ÿ',
	"Lslash": 'Ł', "lslash": 'ł', "OE": 'Œ', "oe": 'œ',
	"Scaron": 'Š', "scaron": 'š', "Zcaron": 'Ž', "zcaron": 'ž',
	"Ydieresis": 'Ÿ',
}

func init() {
	for r := 'A'; r <= 'Z'; r++ {
		glyphNameToUnicode[string(r)] = r
		glyphNameToUnicode[string(r+'a'-'A')] = r + 'a' - 'A'
	}
}

// NormalizeUnicode returns s in Unicode Normalization Form C.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}

// DecodeUTF16BE decodes big-endian UTF-16 without a byte order mark. A
// trailing odd byte is ignored.
func DecodeUTF16BE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}
