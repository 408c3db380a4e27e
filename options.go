package linecolors

import "github.com/mvvtools/linecolors/text"

// options is the configuration an Extractor carries along its chain.
type options struct {
	pages          []int // 1-indexed, as given; nil selects every page
	strict         bool  // fail on operators without a handler
	sortByPosition bool
	lineSeparator  string
	wordSeparator  string
}

func defaultOptions() options {
	return options{lineSeparator: "\n", wordSeparator: " "}
}

// clone copies o so that appending pages to the copy leaves o alone.
func (o options) clone() options {
	c := o
	c.pages = append([]int(nil), o.pages...)
	return c
}

// stripper translates o into text.Stripper options.
func (o options) stripper() []text.StripperOption {
	return []text.StripperOption{
		text.WithStrictOperators(o.strict),
		text.WithSortByPosition(o.sortByPosition),
		text.WithLineSeparator(o.lineSeparator),
		text.WithWordSeparator(o.wordSeparator),
	}
}
