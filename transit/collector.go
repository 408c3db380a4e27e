// Package transit harvests bus line numbers and their brand colours from a
// network map PDF.
//
// Line numbers are printed at the start of a text line in the line's
// colour, so only the first word of every line is considered. Words that
// run two numbers together, such as "671533" or "(678)(679)", are split
// before they are checked.
package transit

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/mvvtools/linecolors/graphicsstate"
	"github.com/mvvtools/linecolors/lineaware"
	"github.com/mvvtools/linecolors/text"
)

// BusPrefixes start the names of lines run by neighbouring operators.
var BusPrefixes = []string{"AÖ", "DGF", "VLK", "OVG"}

// ignoredColors are used for text that is not a line number: the map's
// grey and white.
var ignoredColors = []graphicsstate.RGB{
	{R: 135.0 / 255, G: 135.0 / 255, B: 135.0 / 255},
	{R: 1, G: 1, B: 1},
}

// LineColor is a line name with the fill colour it was printed in.
type LineColor struct {
	Line  string
	Color graphicsstate.RGB
}

// Collector finds line numbers in one document at a time. It is not safe
// for concurrent use.
type Collector struct {
	ex     *lineaware.Extractor
	known  map[string]bool
	lines  []LineColor
	tokens int
}

// NewCollector returns a Collector whose extractor is configured with opts.
func NewCollector(opts ...text.StripperOption) (*Collector, error) {
	ex, err := lineaware.New(opts...)
	if err != nil {
		return nil, err
	}
	c := &Collector{ex: ex, known: make(map[string]bool)}
	ex.OnString(c.word)
	return c, nil
}

// Collect adds the lines found in doc to the collection.
func (c *Collector) Collect(doc text.Document) error {
	return c.ex.WriteText(doc, io.Discard)
}

// Lines returns the lines found so far, in the order they were found.
func (c *Collector) Lines() []LineColor {
	return c.lines
}

// Tokens returns how many line-leading tokens were inspected.
func (c *Collector) Tokens() int {
	return c.tokens
}

// Warnings returns the extractor warnings of the last Collect.
func (c *Collector) Warnings() []string {
	return c.ex.Warnings()
}

func (c *Collector) word(s string, positions []text.TextPosition) error {
	if c.ex.IsNewLine() && strings.IndexFunc(s, unicode.IsDigit) >= 0 {
		c.tokens++
		for _, p := range splitToken(s, positions) {
			c.consider(p.text, p.positions)
		}
	}
	c.ex.SetNewLine(false)
	return nil
}

type part struct {
	text      string
	positions []text.TextPosition
}

// splitToken separates numbers that the map prints without a gap.
func splitToken(s string, positions []text.TextPosition) []part {
	runes := []rune(s)
	at := func(from, to int) part {
		return part{text: string(runes[from:to]), positions: positionsFrom(positions, from)}
	}

	switch n := len(runes); {
	case n == 6 && isInt(string(runes[:3])) && isInt(string(runes[3:])):
		return []part{at(0, 3), at(3, 6)}
	case n == 10:
		return []part{at(0, 5), at(5, n)}
	case n == 12:
		return []part{at(0, 6), at(6, n)}
	case strings.ContainsRune(s, '/'):
		i := indexRune(runes, '/')
		second := at(i, n)
		second.text = strings.ReplaceAll(second.text, "/", "")
		return []part{at(0, i), second}
	default:
		return []part{at(0, n)}
	}
}

// positionsFrom returns the positions from the glyph holding rune index i
// onwards. A glyph may decode to more than one rune.
func positionsFrom(positions []text.TextPosition, i int) []text.TextPosition {
	seen := 0
	for k, pos := range positions {
		n := len([]rune(pos.Text))
		if seen+n > i {
			return positions[k:]
		}
		seen += n
	}
	return nil
}

func (c *Collector) consider(s string, positions []text.TextPosition) {
	s = norm.NFC.String(s)
	if !isCandidate(s) {
		return
	}
	name := strings.NewReplacer("(", "", ")", "").Replace(s)
	if c.known[name] || strings.Contains(name, " ") || !isLineName(name) {
		return
	}
	if len(positions) == 0 {
		return
	}

	color := positions[0].FillColor
	if isIgnored(color) {
		return
	}
	c.known[name] = true
	c.lines = append(c.lines, LineColor{Line: name, Color: color})
}

func isCandidate(s string) bool {
	n := len([]rune(s))
	return (n >= 3 && n <= 4) || hasBusPrefix(s) || strings.HasPrefix(s, "(") || strings.HasSuffix(s, ")")
}

// isLineName accepts regional numbers, which are above 200, and
// prefixed lines.
func isLineName(s string) bool {
	if v, err := strconv.Atoi(s); err == nil && v > 200 {
		return true
	}
	return hasBusPrefix(s)
}

func hasBusPrefix(s string) bool {
	for _, p := range BusPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isIgnored(c graphicsstate.RGB) bool {
	r, g, b := c.RGB8()
	for _, ignored := range ignoredColors {
		ir, ig, ib := ignored.RGB8()
		if r == ir && g == ig && b == ib {
			return true
		}
	}
	return false
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func indexRune(runes []rune, r rune) int {
	for i, v := range runes {
		if v == r {
			return i
		}
	}
	return -1
}

// Merge joins collections in order. A line keeps the colour from the first
// collection that has it.
func Merge(collections ...[]LineColor) []LineColor {
	seen := make(map[string]bool)
	var out []LineColor
	for _, lines := range collections {
		for _, l := range lines {
			if seen[l.Line] {
				continue
			}
			seen[l.Line] = true
			out = append(out, l)
		}
	}
	return out
}
