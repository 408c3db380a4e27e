// Package reader loads a PDF into memory and resolves its objects and
// pages.
//
//	r, err := reader.Open("netzplan.pdf")
//	if err != nil {
//		return err
//	}
//	page, err := r.GetPage(0)
//	fragments, warnings, err := r.ExtractTextFragments(page)
//
// The cross-reference data is read through the whole /Prev chain, classic
// tables and cross-reference streams alike. When it cannot be used the
// table is rebuilt by scanning the file and [Reader.Repaired] reports it.
// Objects packed in object streams are unpacked on first use and every
// loaded object is cached.
//
// A Reader satisfies text.Document, so a text.Stripper can walk its pages
// directly.
package reader
