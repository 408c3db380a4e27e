package text

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/pages"
)

// Document is a source of pages for a Stripper.
type Document interface {
	Resolver
	PageCount() (int, error)
	GetPage(index int) (*pages.Page, error) // zero-based
}

// spaceWidthFunc returns the width of a space for a font name and size.
type spaceWidthFunc func(fontName string, fontSize float64) float64

// PageHook is called at the start or end of a page. pageNum is 1-based.
type PageHook func(pageNum int, page *pages.Page) error

// SeparatorHook is called before a line or word separator is written.
type SeparatorHook func() error

// StringHook is called for every word before it is written, with the
// positions of its characters.
type StringHook func(text string, positions []TextPosition) error

// PositionHook is called for every shown character, in content stream order.
type PositionHook func(pos TextPosition)

// StripperOption configures a Stripper.
type StripperOption func(*Stripper)

// WithPageRange limits extraction to pages start through end, 1-based and
// inclusive. end <= 0 means the last page.
func WithPageRange(start, end int) StripperOption {
	return func(s *Stripper) {
		s.startPage = start
		s.endPage = end
	}
}

// WithLineSeparator sets the string written between lines.
func WithLineSeparator(sep string) StripperOption {
	return func(s *Stripper) { s.lineSeparator = sep }
}

// WithWordSeparator sets the string written between words.
func WithWordSeparator(sep string) StripperOption {
	return func(s *Stripper) { s.wordSeparator = sep }
}

// WithPageStart sets the string written before every page.
func WithPageStart(str string) StripperOption {
	return func(s *Stripper) { s.pageStart = str }
}

// WithPageEnd sets the string written after every page.
func WithPageEnd(str string) StripperOption {
	return func(s *Stripper) { s.pageEnd = str }
}

// WithSortByPosition orders characters top to bottom, then left to right,
// instead of content stream order.
func WithSortByPosition(enabled bool) StripperOption {
	return func(s *Stripper) { s.sortByPosition = enabled }
}

// WithStrictOperators makes operators without a handler fail extraction.
func WithStrictOperators(strict bool) StripperOption {
	return func(s *Stripper) { s.strict = strict }
}

type namedOperator struct {
	name string
	fn   OperatorFunc
}

// Stripper writes the text of a whole document, page by page, and lets
// callers observe pages, lines, words and characters through hooks.
//
// A Stripper is not safe for concurrent use.
type Stripper struct {
	startPage      int
	endPage        int
	lineSeparator  string
	wordSeparator  string
	pageStart      string
	pageEnd        string
	sortByPosition bool
	strict         bool

	operators []namedOperator

	startPageHooks []PageHook
	endPageHooks   []PageHook
	lineSepHooks   []SeparatorHook
	wordSepHooks   []SeparatorHook
	stringHooks    []StringHook
	positionHooks  []PositionHook

	warnings []string
}

// NewStripper returns a Stripper for all pages, with "\n" between lines and
// after each page and " " between words.
func NewStripper(opts ...StripperOption) *Stripper {
	s := &Stripper{
		startPage:     1,
		lineSeparator: "\n",
		wordSeparator: " ",
		pageEnd:       "\n",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddOperator registers fn for the named operator on the extractor of
// every page processed afterwards.
func (s *Stripper) AddOperator(name string, fn OperatorFunc) error {
	if name == "" {
		return contentstream.ErrInvalidOperator
	}
	if fn == nil {
		return fmt.Errorf("operator %q: %w", name, contentstream.ErrNilHandler)
	}
	s.operators = append(s.operators, namedOperator{name: name, fn: fn})
	return nil
}

// OnStartPage adds a hook run before the page start string is written.
func (s *Stripper) OnStartPage(fn PageHook) { s.startPageHooks = append(s.startPageHooks, fn) }

// OnEndPage adds a hook run before the page end string is written.
func (s *Stripper) OnEndPage(fn PageHook) { s.endPageHooks = append(s.endPageHooks, fn) }

// OnLineSeparator adds a hook run before each line separator is written.
func (s *Stripper) OnLineSeparator(fn SeparatorHook) { s.lineSepHooks = append(s.lineSepHooks, fn) }

// OnWordSeparator adds a hook run before each word separator is written.
func (s *Stripper) OnWordSeparator(fn SeparatorHook) { s.wordSepHooks = append(s.wordSepHooks, fn) }

// OnString adds a hook run before each word is written.
func (s *Stripper) OnString(fn StringHook) { s.stringHooks = append(s.stringHooks, fn) }

// OnTextPosition adds a hook run for every character shown.
func (s *Stripper) OnTextPosition(fn PositionHook) { s.positionHooks = append(s.positionHooks, fn) }

// Warnings returns the recoverable problems met during the last run.
func (s *Stripper) Warnings() []string {
	return s.warnings
}

// Text returns the text of doc.
func (s *Stripper) Text(doc Document) (string, error) {
	var sb strings.Builder
	if err := s.WriteText(doc, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteText writes the text of doc to w.
func (s *Stripper) WriteText(doc Document, w io.Writer) error {
	s.warnings = nil

	count, err := doc.PageCount()
	if err != nil {
		return fmt.Errorf("page count: %w", err)
	}

	first, last := s.startPage, s.endPage
	if first < 1 {
		first = 1
	}
	if last <= 0 || last > count {
		last = count
	}

	for n := first; n <= last; n++ {
		page, err := doc.GetPage(n - 1)
		if err != nil {
			return fmt.Errorf("page %d: %w", n, err)
		}
		if err := s.writePage(doc, n, page, w); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stripper) writePage(doc Document, n int, page *pages.Page, w io.Writer) error {
	for _, fn := range s.startPageHooks {
		if err := fn(n, page); err != nil {
			return err
		}
	}
	if err := writeString(w, s.pageStart); err != nil {
		return err
	}

	ex, positions, err := s.extractPage(doc, n, page)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		for _, fn := range s.positionHooks {
			fn(pos)
		}
	}
	if s.sortByPosition {
		positions = sortPositions(positions)
	}

	for i, line := range splitLines(positions) {
		if i > 0 {
			if err := s.writeSeparator(w, s.lineSepHooks, s.lineSeparator); err != nil {
				return err
			}
		}
		for j, word := range splitWords(line, ex.spaceWidth) {
			if j > 0 {
				if err := s.writeSeparator(w, s.wordSepHooks, s.wordSeparator); err != nil {
					return err
				}
			}
			text := positionsText(word)
			for _, fn := range s.stringHooks {
				if err := fn(text, word); err != nil {
					return err
				}
			}
			if err := writeString(w, text); err != nil {
				return err
			}
		}
	}

	for _, fn := range s.endPageHooks {
		if err := fn(n, page); err != nil {
			return err
		}
	}
	return writeString(w, s.pageEnd)
}

// extractPage runs a fresh Extractor over the page's content.
func (s *Stripper) extractPage(doc Document, n int, page *pages.Page) (*Extractor, []TextPosition, error) {
	ex := NewExtractor()
	ex.SetStrict(s.strict)
	for _, op := range s.operators {
		if err := ex.AddOperator(op.name, op.fn); err != nil {
			return nil, nil, err
		}
	}
	if err := ex.SetPageResources(page, doc); err != nil {
		ex.AddWarning(err.Error())
	}

	data, err := page.ContentData()
	if err != nil {
		return nil, nil, fmt.Errorf("page %d: %w", n, err)
	}
	fragments, err := ex.ExtractFromBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("page %d: %w", n, err)
	}
	for _, warning := range ex.Warnings() {
		s.warnings = append(s.warnings, fmt.Sprintf("page %d: %s", n, warning))
	}

	var positions []TextPosition
	for _, frag := range fragments {
		positions = append(positions, frag.Chars...)
	}
	return ex, positions, nil
}

func (s *Stripper) writeSeparator(w io.Writer, hooks []SeparatorHook, sep string) error {
	for _, fn := range hooks {
		if err := fn(); err != nil {
			return err
		}
	}
	return writeString(w, sep)
}

func writeString(w io.Writer, str string) error {
	if str == "" {
		return nil
	}
	_, err := io.WriteString(w, str)
	return err
}

// sortPositions orders positions into bands of shared baselines, top band
// first, and each band left to right.
func sortPositions(positions []TextPosition) []TextPosition {
	sorted := make([]TextPosition, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sameLine(sorted[i-1], sorted[i]) {
			continue
		}
		band := sorted[start:i]
		sort.SliceStable(band, func(a, b int) bool { return band[a].X < band[b].X })
		start = i
	}
	return sorted
}

// sameLine reports whether two baselines are closer than half the taller
// glyph.
func sameLine(a, b TextPosition) bool {
	return math.Abs(a.Y-b.Y) <= math.Max(a.Height, b.Height)/2
}

func splitLines(positions []TextPosition) [][]TextPosition {
	var lines [][]TextPosition
	for i, pos := range positions {
		if i == 0 || !sameLine(positions[i-1], pos) {
			lines = append(lines, nil)
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], pos)
	}
	return lines
}

// splitWords breaks a line at explicit spaces, which are dropped, and at
// gaps of at least half a space width.
func splitWords(line []TextPosition, spaceWidth spaceWidthFunc) [][]TextPosition {
	var words [][]TextPosition
	var current []TextPosition
	flush := func() {
		if len(current) > 0 {
			words = append(words, current)
			current = nil
		}
	}

	for i, pos := range line {
		if strings.TrimSpace(pos.Text) == "" {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 {
			prev := line[i-1]
			gap := pos.X - (prev.X + prev.Width)
			if gap >= spaceWidth(prev.FontName, prev.FontSize)*0.5 {
				flush()
			}
		}
		current = append(current, pos)
	}
	flush()
	return words
}

func positionsText(positions []TextPosition) string {
	var sb strings.Builder
	for _, pos := range positions {
		sb.WriteString(pos.Text)
	}
	return sb.String()
}
