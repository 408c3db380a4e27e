// Package core reads the object layer of a PDF file.
//
// A [Scanner] splits PDF bytes into tokens; a [Parser] builds objects from
// them, including indirect objects and streams. [ReadXRef] follows the
// startxref pointer through classic tables, cross-reference streams and
// the /Prev chain of incremental updates, and falls back to [Rebuild] when
// the file's own index is broken. [ObjectStream] unpacks compressed
// objects and [Stream.Decode] undoes the stream filters.
//
// Objects are plain Go values:
//
//	Null, Bool, Int, Real, String, Name   scalars
//	Array, Dict                           containers
//	*Stream                               dictionary plus data
//	IndirectRef                           "12 0 R"
//
// The content stream parser in package contentstream shares the Scanner.
package core
