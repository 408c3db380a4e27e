// Package contentstream tokenizes page and form content into operations
// and dispatches them to handlers.
//
//	ops, err := contentstream.NewParser(data).Parse()
//	proc := contentstream.NewProcessor()
//	proc.AddOperator("rg", setFill)
//	proc.SetStrict(true)
//	err = proc.Process(ops)
//
// An operation is an operator with the operands that preceded it. Operands
// are core objects: numbers, strings, names, arrays and dictionaries.
// Inline images (BI ... ID ... EI) become a single BI operation whose
// operands are the image dictionary and its raw data.
//
// Operators without a handler are counted and reported by
// [Processor.Unsupported]. In strict mode they stop processing with an
// error wrapping [ErrUnsupportedOperator]. Handlers return
// [ErrMissingOperand], [ErrMissingResource] or [ErrEmptyStack] for damage a
// page can survive; those become warnings and processing goes on.
package contentstream
