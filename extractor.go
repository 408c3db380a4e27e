package linecolors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvvtools/linecolors/lineaware"
	"github.com/mvvtools/linecolors/pages"
	"github.com/mvvtools/linecolors/reader"
	"github.com/mvvtools/linecolors/text"
	"github.com/mvvtools/linecolors/transit"
)

// Extractor is an immutable extraction request. Configuration methods
// return a modified copy; terminal operations open the file on demand and
// release it when they return.
type Extractor struct {
	path  string
	doc   *reader.Reader
	owned bool // doc was opened from path and is closed by terminal operations

	options options

	// err is the first configuration error; it fails every later operation.
	err error
}

// Line is one visual line of a page.
type Line struct {
	Page int // 1-indexed
	Text string
	X, Y float64
	// Color is the fill colour of the line's first character, as "#rrggbb".
	Color string
}

func (e *Extractor) with(fn func(*Extractor)) *Extractor {
	c := *e
	c.options = e.options.clone()
	fn(&c)
	return &c
}

// Pages adds 1-indexed pages to the selection. Duplicates are dropped and
// pages are always processed in document order.
//
//	text, _, err := linecolors.Open("map.pdf").Pages(1, 3, 5).Text()
func (e *Extractor) Pages(pages ...int) *Extractor {
	return e.with(func(c *Extractor) { c.options.pages = append(c.options.pages, pages...) })
}

// PageRange adds the pages start through end. A range that ends before it
// starts fails the terminal operation.
func (e *Extractor) PageRange(start, end int) *Extractor {
	return e.with(func(c *Extractor) {
		if end < start {
			if c.err == nil {
				c.err = fmt.Errorf("invalid page range %d-%d", start, end)
			}
			return
		}
		for p := start; p <= end; p++ {
			c.options.pages = append(c.options.pages, p)
		}
	})
}

// Strict makes extraction fail on content stream operators it has no
// handler for, instead of skipping them.
func (e *Extractor) Strict() *Extractor {
	return e.with(func(c *Extractor) { c.options.strict = true })
}

// SortByPosition orders characters top to bottom and left to right
// instead of in content stream order.
func (e *Extractor) SortByPosition() *Extractor {
	return e.with(func(c *Extractor) { c.options.sortByPosition = true })
}

// Separators sets the strings written between lines and between words.
func (e *Extractor) Separators(line, word string) *Extractor {
	return e.with(func(c *Extractor) {
		c.options.lineSeparator = line
		c.options.wordSeparator = word
	})
}

// open makes sure a reader is available.
func (e *Extractor) open() error {
	if e.err != nil {
		return e.err
	}
	if e.doc != nil {
		return nil
	}
	if e.path == "" {
		return fmt.Errorf("no filename specified")
	}
	r, err := reader.Open(e.path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.doc, e.owned = r, true
	return nil
}

// Close drops a reader opened from a file name. A reader passed to
// FromReader is left to its owner. Close may be called more than once.
func (e *Extractor) Close() error {
	if !e.owned || e.doc == nil {
		return nil
	}
	err := e.doc.Close()
	e.doc, e.owned = nil, false
	return err
}

// PageCount returns the number of pages in the document. It leaves the
// reader open for further operations.
func (e *Extractor) PageCount() (int, error) {
	if err := e.open(); err != nil {
		return 0, err
	}
	return e.doc.PageCount()
}

// IsCharacterLevel reports whether the first page shows one character per
// text operation, as some generators do. It leaves the reader open.
func (e *Extractor) IsCharacterLevel() (bool, error) {
	if err := e.open(); err != nil {
		return false, err
	}
	page, err := e.doc.GetPage(0)
	if err != nil {
		return false, fmt.Errorf("reading page 1: %w", err)
	}
	fragments, _, err := e.doc.ExtractTextFragments(page)
	if err != nil {
		return false, fmt.Errorf("extracting fragments: %w", err)
	}
	return isCharacterLevel(fragments), nil
}

// Text extracts the text of the selected pages, line by line, and closes
// the reader.
//
//	text, warnings, err := linecolors.Open("map.pdf").Text()
//	if len(warnings) > 0 {
//		log.Println("Warnings:", linecolors.FormatWarnings(warnings))
//	}
func (e *Extractor) Text() (string, []Warning, error) {
	var out string
	warnings, err := e.run(func(doc *selection) ([]string, error) {
		// lineaware knows the colour operators, so strict mode does not
		// stop at the first colour change.
		ex, err := lineaware.New(e.options.stripper()...)
		if err != nil {
			return nil, err
		}
		out, err = ex.Text(doc)
		return ex.Warnings(), err
	})
	return out, warnings, err
}

// Fragments returns the positioned text fragments of the selected pages
// and closes the reader.
func (e *Extractor) Fragments() ([]text.TextFragment, []Warning, error) {
	if err := e.open(); err != nil {
		return nil, nil, err
	}
	defer e.Close()
	doc, err := e.selectPages()
	if err != nil {
		return nil, nil, err
	}

	var all []text.TextFragment
	var warnings []Warning
	for _, idx := range doc.indices {
		page, err := e.doc.GetPage(idx)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", idx+1, err)
		}
		fragments, msgs, err := e.doc.ExtractTextFragments(page)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", idx+1, err)
		}
		for _, msg := range msgs {
			warnings = append(warnings, Warning{Page: idx + 1, Message: msg})
		}
		all = append(all, fragments...)
	}
	return all, warnings, nil
}

// Lines returns the visual lines of the selected pages with their position
// and the colour of their first character, and closes the reader.
//
//	lines, _, err := linecolors.Open("map.pdf").Lines()
//	for _, line := range lines {
//		fmt.Printf("%s %s\n", line.Color, line.Text)
//	}
func (e *Extractor) Lines() ([]Line, []Warning, error) {
	var lines []Line
	warnings, err := e.run(func(doc *selection) ([]string, error) {
		ex, err := lineaware.New(e.options.stripper()...)
		if err != nil {
			return nil, err
		}
		page := 0
		ex.OnStartPage(func(n int, _ *pages.Page) error {
			page = doc.indices[n-1] + 1
			return nil
		})
		ex.OnString(func(s string, positions []text.TextPosition) error {
			defer ex.SetNewLine(false)
			if ex.IsNewLine() && len(positions) > 0 {
				p := positions[0]
				lines = append(lines, Line{Page: page, Text: s, X: p.X, Y: p.Y, Color: p.FillColor.Hex()})
				return nil
			}
			if n := len(lines); n > 0 {
				lines[n-1].Text += " " + s
			}
			return nil
		})
		var discard strings.Builder
		err = ex.WriteText(doc, &discard)
		return ex.Warnings(), err
	})
	return lines, warnings, err
}

// LineColors harvests transit line numbers and the colours they are
// printed in, and closes the reader.
//
//	colors, _, err := linecolors.Open("network_map.pdf").LineColors()
//	for _, c := range colors {
//		fmt.Println(c.Line, c.Color.Hex())
//	}
func (e *Extractor) LineColors() ([]transit.LineColor, []Warning, error) {
	var colors []transit.LineColor
	warnings, err := e.run(func(doc *selection) ([]string, error) {
		c, err := transit.NewCollector(e.options.stripper()...)
		if err != nil {
			return nil, err
		}
		err = c.Collect(doc)
		colors = c.Lines()
		return c.Warnings(), err
	})
	return colors, warnings, err
}

// run opens the reader, hands the page selection to fn and closes the
// reader again. Page numbers in fn's warnings count selected pages and are
// mapped back to document pages.
func (e *Extractor) run(fn func(doc *selection) ([]string, error)) ([]Warning, error) {
	if err := e.open(); err != nil {
		return nil, err
	}
	defer e.Close()
	doc, err := e.selectPages()
	if err != nil {
		return nil, err
	}
	msgs, err := fn(doc)
	if err != nil {
		if len(e.options.pages) > 0 {
			err = fmt.Errorf("pages %v: %w", e.options.pages, err)
		}
		return nil, err
	}
	return parseWarnings(msgs, doc.indices), nil
}

// selection presents the selected pages of a reader as a document of
// their own.
type selection struct {
	*reader.Reader
	indices []int // 0-indexed pages of the reader, ascending
}

func (s *selection) PageCount() (int, error) { return len(s.indices), nil }

func (s *selection) GetPage(i int) (*pages.Page, error) {
	if i < 0 || i >= len(s.indices) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", i, len(s.indices))
	}
	return s.Reader.GetPage(s.indices[i])
}

// selectPages validates the 1-indexed page choice against the document. An
// empty choice selects every page.
func (e *Extractor) selectPages() (*selection, error) {
	n, err := e.doc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	var indices []int
	if len(e.options.pages) == 0 {
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return &selection{Reader: e.doc, indices: indices}, nil
	}

	seen := make(map[int]bool, len(e.options.pages))
	for _, p := range e.options.pages {
		if p < 1 || p > n {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, n)
		}
		if !seen[p] {
			seen[p] = true
			indices = append(indices, p-1)
		}
	}
	sort.Ints(indices)
	return &selection{Reader: e.doc, indices: indices}, nil
}

// isCharacterLevel reports whether more than 60% of at least ten fragments
// hold a single character.
func isCharacterLevel(fragments []text.TextFragment) bool {
	if len(fragments) < 10 {
		return false
	}
	single := 0
	for _, f := range fragments {
		if len([]rune(strings.TrimSpace(f.Text))) <= 1 {
			single++
		}
	}
	return float64(single)/float64(len(fragments)) > 0.6
}
