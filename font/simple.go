package font

import (
	"fmt"

	"github.com/mvvtools/linecolors/core"
)

func (f *Font) loadSimple(dict core.Dict, r Resolver) error {
	f.enc = StandardEncodingTable
	if f.Subtype == "TrueType" {
		f.enc = WinAnsiEncoding
	}
	if err := f.loadEncoding(dict, r); err != nil {
		return err
	}
	f.metrics = standardMetrics(f.BaseFont)

	if f.Subtype == "Type3" {
		m, err := resolveArray(r, dict.Get("FontMatrix"), "/FontMatrix")
		if err != nil {
			return err
		}
		f.scale = 1
		if a, ok := core.Number(m.Get(0)); ok && a != 0 {
			f.scale = a * 1000
		}
	}

	desc, err := resolveDict(r, dict.Get("FontDescriptor"), "/FontDescriptor")
	if err != nil {
		return err
	}
	if desc != nil {
		f.missing, _ = core.Number(desc.Get("MissingWidth"))
	}
	if err := f.loadWidths(dict, r); err != nil {
		return err
	}
	if len(f.widths) == 0 && desc != nil {
		f.program = loadProgram(desc, r)
	}
	return nil
}

// loadEncoding applies /Encoding: a predefined name, or a dictionary
// with a /BaseEncoding and /Differences.
func (f *Font) loadEncoding(dict core.Dict, r Resolver) error {
	obj, err := r.Resolve(dict.Get("Encoding"))
	if err != nil {
		return fmt.Errorf("/Encoding: %w", err)
	}

	switch v := obj.(type) {
	case nil:
	case core.Name:
		f.enc = GetEncoding(string(v))
	case core.Dict:
		if base, ok := v.GetName("BaseEncoding"); ok {
			f.enc = GetEncoding(string(base))
		}
		diffs, err := resolveArray(r, v.Get("Differences"), "/Differences")
		if err != nil {
			return err
		}
		if len(diffs) > 0 {
			f.enc = NewCustomEncoding(f.enc, ParseDifferences(diffs))
		}
	default:
		return fmt.Errorf("%w: /Encoding is %T", ErrMalformedFont, obj)
	}
	f.Encoding = f.enc.Name()
	return nil
}

// loadWidths reads /Widths, which lists the widths of codes /FirstChar
// onwards.
func (f *Font) loadWidths(dict core.Dict, r Resolver) error {
	widths, err := resolveArray(r, dict.Get("Widths"), "/Widths")
	if err != nil {
		return err
	}
	first, _ := dict.GetInt("FirstChar")
	for i, obj := range widths {
		v, err := r.Resolve(obj)
		if err != nil {
			return fmt.Errorf("/Widths[%d]: %w", i, err)
		}
		w, ok := core.Number(v)
		if !ok {
			return fmt.Errorf("%w: /Widths[%d] is %T", ErrMalformedFont, i, v)
		}
		f.widths[int(first)+i] = w
	}
	return nil
}
