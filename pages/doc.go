// Package pages flattens the page tree of a document.
//
// [NewTree] walks /Pages from the catalog and returns the leaves in
// document order. Each [Page] carries the inheritable attributes
// (/Resources, /MediaBox, /CropBox, /Rotate) of its ancestors, so
// lookups never climb the tree again:
//
//	tree, err := pages.NewTree(catalog, resolver)
//	page, err := tree.Page(0)
//	data, err := page.ContentData() // all content streams, decoded
//
// Indirect objects are loaded through a [Resolver], which the reader
// implements.
package pages
