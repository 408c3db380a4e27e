package font

import (
	"fmt"

	"github.com/mvvtools/linecolors/core"
)

func (f *Font) loadComposite(dict core.Dict, r Resolver) error {
	f.composite = true
	f.missing = 1000

	enc, err := r.Resolve(dict.Get("Encoding"))
	if err != nil {
		return fmt.Errorf("/Encoding: %w", err)
	}
	switch v := enc.(type) {
	case core.Name:
		f.Encoding = string(v)
	case *core.Stream:
		// An embedded CMap; its name is enough to tell the writing mode.
		name, _ := v.Dict.GetName("CMapName")
		f.Encoding = string(name)
	case nil:
		f.Encoding = "Identity-H"
	default:
		return fmt.Errorf("%w: /Encoding is %T", ErrMalformedFont, enc)
	}
	f.identity = f.Encoding == "Identity-H" || f.Encoding == "Identity-V"
	f.vertical = len(f.Encoding) > 2 && f.Encoding[len(f.Encoding)-2:] == "-V"

	descendants, err := resolveArray(r, dict.Get("DescendantFonts"), "/DescendantFonts")
	if err != nil {
		return err
	}
	if len(descendants) == 0 {
		return fmt.Errorf("%w: no descendant font", ErrMalformedFont)
	}
	cid, err := resolveDict(r, descendants[0], "/DescendantFonts[0]")
	if err != nil {
		return err
	}
	if cid == nil {
		return fmt.Errorf("%w: descendant font is null", ErrMalformedFont)
	}

	info, err := resolveDict(r, cid.Get("CIDSystemInfo"), "/CIDSystemInfo")
	if err != nil {
		return err
	}
	if ordering, ok := info.GetString("Ordering"); ok {
		f.ordering = string(ordering)
	}

	if dw, ok := core.Number(cid.Get("DW")); ok {
		f.missing = dw
	}
	w, err := resolveArray(r, cid.Get("W"), "/W")
	if err != nil {
		return err
	}
	if err := f.loadCIDWidths(w, r); err != nil {
		return err
	}

	if len(f.widths) == 0 {
		desc, err := resolveDict(r, cid.Get("FontDescriptor"), "/FontDescriptor")
		if err != nil {
			return err
		}
		gidMap := cid.Get("CIDToGIDMap")
		if desc != nil && (gidMap == nil || isIdentityMap(gidMap)) {
			f.program = loadProgram(desc, r)
		}
	}
	return nil
}

func isIdentityMap(obj core.Object) bool {
	name, ok := obj.(core.Name)
	return ok && name == "Identity"
}

// loadCIDWidths reads a /W array. Entries are either "c [w1 w2 ...]",
// giving the widths of CIDs c, c+1, ..., or "first last w" for a run of
// CIDs sharing one width.
func (f *Font) loadCIDWidths(w core.Array, r Resolver) error {
	for i := 0; i < len(w); {
		first, ok := core.Number(w[i])
		if !ok || i+1 >= len(w) {
			return fmt.Errorf("%w: /W[%d] is %v", ErrMalformedFont, i, w.Get(i))
		}
		next, err := r.Resolve(w[i+1])
		if err != nil {
			return fmt.Errorf("/W[%d]: %w", i+1, err)
		}

		if list, ok := next.(core.Array); ok {
			for j, obj := range list {
				if v, ok := core.Number(obj); ok {
					f.widths[int(first)+j] = v
				}
			}
			i += 2
			continue
		}

		last, ok := core.Number(next)
		if !ok || i+2 >= len(w) {
			return fmt.Errorf("%w: /W[%d] is %v", ErrMalformedFont, i+1, next)
		}
		v, ok := core.Number(w[i+2])
		if !ok {
			return fmt.Errorf("%w: /W[%d] is %v", ErrMalformedFont, i+2, w[i+2])
		}
		if last-first >= maxRangeSize {
			return fmt.Errorf("%w: /W run %v-%v too long", ErrMalformedFont, first, last)
		}
		for c := int(first); c <= int(last); c++ {
			f.widths[c] = v
		}
		i += 3
	}
	return nil
}
