// Package linecolors extracts text from transit network maps in PDF form
// and harvests the colours line numbers are printed in.
//
// Basic usage:
//
//	colors, warnings, err := linecolors.Open("network_map.pdf").LineColors()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", linecolors.FormatWarnings(warnings))
//	}
//
// With options:
//
//	lines, _, err := linecolors.Open("network_map.pdf").
//	    Pages(2, 3).
//	    Strict().
//	    Lines()
//
// The lineaware, transit and gtfs packages hold the building blocks; the
// reader package gives lower-level access to the PDF.
package linecolors

import (
	"github.com/mvvtools/linecolors/reader"
)

// Open returns an Extractor for the named file. The file is read by the
// first operation that needs it; terminal operations such as Text release
// it again, and Close does so for an Extractor that never reached one.
//
//	text, warnings, err := linecolors.Open("network_map.pdf").Text()
func Open(filename string) *Extractor {
	return &Extractor{path: filename, options: defaultOptions()}
}

// FromReader returns an Extractor over a reader the caller already opened
// and remains responsible for.
//
//	r, err := reader.Open("network_map.pdf")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	colors, warnings, err := linecolors.FromReader(r).LineColors()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{doc: r, options: defaultOptions()}
}

// Must panics if err is non-nil and returns val otherwise. It suits
// scripts and tests:
//
//	count := linecolors.Must(linecolors.Open("network_map.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is Must for terminal operations; warnings are dropped.
//
//	text := linecolors.MustText(linecolors.Open("network_map.pdf").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	return Must(val, err)
}
