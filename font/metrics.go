package font

import (
	"strconv"
	"strings"
)

// Advance widths of the printable ASCII range, code 32 first, from the
// Adobe Core 14 AFM files.
const (
	helveticaAFM = `
278 278 355 556 556 889 667 191 333 333 389 584 278 333 278 278
556 556 556 556 556 556 556 556 556 556 278 278 584 584 584 556
1015 667 667 722 722 667 611 778 722 278 500 667 556 833 722 778
667 778 722 667 611 722 667 944 667 667 611 278 278 278 469 556
333 556 556 500 556 556 278 556 556 222 222 500 222 833 556 556
556 556 333 500 278 556 500 722 500 500 500 334 260 334 584`

	helveticaBoldAFM = `
278 333 474 556 556 889 722 238 333 333 389 584 278 333 278 278
556 556 556 556 556 556 556 556 556 556 333 333 584 584 584 611
975 722 722 722 722 667 611 778 722 278 556 722 611 833 722 778
667 778 722 667 611 722 667 944 667 667 611 333 278 333 584 556
333 556 611 556 611 556 333 611 611 278 278 556 278 889 611 611
611 611 389 556 333 611 556 778 556 556 500 389 280 389 584`

	timesAFM = `
250 333 408 500 500 833 778 180 333 333 500 564 250 333 250 278
500 500 500 500 500 500 500 500 500 500 278 278 564 564 564 444
921 722 667 667 722 611 556 722 722 333 389 722 611 889 722 722
556 722 667 556 611 722 722 944 722 722 611 333 278 333 469 500
333 444 500 444 500 444 333 500 500 278 278 500 278 778 500 500
500 500 333 389 278 500 500 722 500 500 444 480 200 480 541`

	timesBoldAFM = `
250 333 555 500 500 1000 833 278 333 333 500 570 250 333 250 278
500 500 500 500 500 500 500 500 500 500 333 333 570 570 570 500
930 722 667 722 722 667 611 778 778 389 500 778 667 944 722 778
611 778 722 556 667 722 722 1000 722 722 667 333 278 333 581 500
333 500 556 444 556 444 333 500 556 278 333 556 278 833 556 500
556 556 444 389 333 556 500 722 500 500 444 394 220 394 520`
)

func asciiWidths(afm string) map[rune]float64 {
	widths := make(map[rune]float64, 95)
	for i, field := range strings.Fields(afm) {
		w, err := strconv.Atoi(field)
		if err != nil {
			panic("font: bad width table: " + field)
		}
		widths[rune(' '+i)] = float64(w)
	}
	return widths
}

func monospaced(w float64) map[rune]float64 {
	widths := make(map[rune]float64, 95)
	for r := ' '; r <= '~'; r++ {
		widths[r] = w
	}
	return widths
}

var (
	helvetica     = asciiWidths(helveticaAFM)
	helveticaBold = asciiWidths(helveticaBoldAFM)
	times         = asciiWidths(timesAFM)
	timesBold     = asciiWidths(timesBoldAFM)
	courier       = monospaced(600)
)

// standardWidths covers the standard 14 fonts. Italic faces share the
// upright metrics; Symbol and ZapfDingbats only get a flat width.
var standardWidths = map[string]map[rune]float64{
	"Helvetica":             helvetica,
	"Helvetica-Oblique":     helvetica,
	"Helvetica-Bold":        helveticaBold,
	"Helvetica-BoldOblique": helveticaBold,
	"Times-Roman":           times,
	"Times-Italic":          times,
	"Times-Bold":            timesBold,
	"Times-BoldItalic":      timesBold,
	"Courier":               courier,
	"Courier-Oblique":       courier,
	"Courier-Bold":          courier,
	"Courier-BoldOblique":   courier,
	"Symbol":                monospaced(500),
	"ZapfDingbats":          monospaced(500),
}

// standardMetrics returns the built-in widths for baseFont. Fonts that
// are not one of the standard 14, or a common alias of one, get the
// Helvetica widths.
func standardMetrics(baseFont string) map[rune]float64 {
	if w, ok := standardWidths[canonicalName(baseFont)]; ok {
		return w
	}
	return helvetica
}

// canonicalName strips a subset tag and maps Arial, Times New Roman and
// Courier New style names onto the standard 14.
func canonicalName(baseFont string) string {
	if len(baseFont) > 7 && baseFont[6] == '+' {
		baseFont = baseFont[7:]
	}
	if _, ok := standardWidths[baseFont]; ok {
		return baseFont
	}

	lower := strings.ToLower(baseFont)
	bold := strings.Contains(lower, "bold")
	slanted := strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
	switch {
	case strings.HasPrefix(lower, "arial"), strings.HasPrefix(lower, "helvetica"):
		return styled("Helvetica", "", bold, slanted, "Oblique")
	case strings.HasPrefix(lower, "times"):
		return styled("Times", "Roman", bold, slanted, "Italic")
	case strings.HasPrefix(lower, "courier"):
		return styled("Courier", "", bold, slanted, "Oblique")
	}
	return baseFont
}

func styled(family, regular string, bold, slanted bool, slant string) string {
	var style string
	if bold {
		style = "Bold"
	}
	if slanted {
		style += slant
	}
	if style == "" {
		style = regular
	}
	if style == "" {
		return family
	}
	return family + "-" + style
}
