package pages

import (
	"errors"
	"fmt"

	"github.com/mvvtools/linecolors/core"
)

// Resolver loads the object an IndirectRef points at and returns any
// other object unchanged.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// ErrPageTree marks a page tree that cannot be walked.
var ErrPageTree = errors.New("malformed page tree")

const maxTreeDepth = 64

var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// Tree is the flattened page tree.
type Tree struct {
	pages []*Page
}

// NewTree walks the /Pages tree of catalog. Nodes without /Type are
// classified by the presence of /Kids; a node reached twice is an error.
func NewTree(catalog core.Dict, r Resolver) (*Tree, error) {
	root, err := r.Resolve(catalog.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("catalog /Pages: %w", err)
	}
	rootDict, ok := root.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: catalog /Pages is %T", ErrPageTree, root)
	}

	w := walker{r: r, seen: make(map[core.IndirectRef]bool)}
	if ref, ok := catalog.Get("Pages").(core.IndirectRef); ok {
		w.seen[ref] = true
	}
	if err := w.walk(rootDict, core.Dict{}, 0); err != nil {
		return nil, err
	}
	return &Tree{pages: w.pages}, nil
}

type walker struct {
	r     Resolver
	seen  map[core.IndirectRef]bool
	pages []*Page
}

func (w *walker) walk(node, inherited core.Dict, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("%w: deeper than %d levels", ErrPageTree, maxTreeDepth)
	}

	attrs := inherited
	copied := false
	for _, key := range inheritable {
		if v, ok := node[key]; ok {
			if !copied {
				attrs, copied = copyDict(inherited), true
			}
			attrs[key] = v
		}
	}

	typ, _ := node.GetName("Type")
	if typ == "Page" || (typ != "Pages" && !node.Has("Kids")) {
		w.pages = append(w.pages, &Page{dict: node, attrs: attrs, r: w.r})
		return nil
	}

	kidsObj, err := w.r.Resolve(node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("/Kids: %w", err)
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return fmt.Errorf("%w: /Kids is %T", ErrPageTree, kidsObj)
	}
	for i, kid := range kids {
		if ref, ok := kid.(core.IndirectRef); ok {
			if w.seen[ref] {
				return fmt.Errorf("%w: %v appears twice", ErrPageTree, ref)
			}
			w.seen[ref] = true
		}
		obj, err := w.r.Resolve(kid)
		if err != nil {
			return fmt.Errorf("kid %d: %w", i, err)
		}
		dict, ok := obj.(core.Dict)
		if !ok {
			return fmt.Errorf("%w: kid %d is %T", ErrPageTree, i, obj)
		}
		if err := w.walk(dict, attrs, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func copyDict(d core.Dict) core.Dict {
	out := make(core.Dict, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Count returns the number of pages.
func (t *Tree) Count() int { return len(t.pages) }

// Page returns page index, counting from 0.
func (t *Tree) Page(index int) (*Page, error) {
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

// Page is one leaf of the tree.
type Page struct {
	dict  core.Dict
	attrs core.Dict // inheritable attributes, own values included
	r     Resolver
}

// NewPage wraps a page dictionary whose inherited attributes are already
// merged into attrs. attrs may be nil.
func NewPage(dict, attrs core.Dict, r Resolver) *Page {
	if attrs == nil {
		attrs = core.Dict{}
	}
	return &Page{dict: dict, attrs: attrs, r: r}
}

// Dict returns the page dictionary itself.
func (p *Page) Dict() core.Dict { return p.dict }

// Resources returns the effective resource dictionary. A page without
// one gets an empty dictionary.
func (p *Page) Resources() (core.Dict, error) {
	obj, err := p.r.Resolve(p.attrs.Get("Resources"))
	if err != nil {
		return nil, fmt.Errorf("/Resources: %w", err)
	}
	switch v := obj.(type) {
	case core.Dict:
		return v, nil
	case nil:
		return core.Dict{}, nil
	}
	return nil, fmt.Errorf("%w: /Resources is %T", ErrPageTree, obj)
}

// MediaBox returns the page's media box as [llx lly urx ury]. A missing
// box means US Letter.
func (p *Page) MediaBox() ([4]float64, error) {
	if !p.attrs.Has("MediaBox") {
		return [4]float64{0, 0, 612, 792}, nil
	}
	return p.box("MediaBox")
}

// CropBox returns the crop box, which defaults to the media box.
func (p *Page) CropBox() ([4]float64, error) {
	if !p.attrs.Has("CropBox") {
		return p.MediaBox()
	}
	return p.box("CropBox")
}

func (p *Page) box(key string) ([4]float64, error) {
	var box [4]float64
	obj, err := p.r.Resolve(p.attrs.Get(key))
	if err != nil {
		return box, fmt.Errorf("/%s: %w", key, err)
	}
	arr, ok := obj.(core.Array)
	if !ok || arr.Len() != 4 {
		return box, fmt.Errorf("%w: /%s is %v", ErrPageTree, key, obj)
	}
	for i := range box {
		v, ok := core.Number(arr[i])
		if !ok {
			return box, fmt.Errorf("%w: /%s is %v", ErrPageTree, key, arr)
		}
		box[i] = v
	}
	// Boxes may name any two opposite corners.
	if box[0] > box[2] {
		box[0], box[2] = box[2], box[0]
	}
	if box[1] > box[3] {
		box[1], box[3] = box[3], box[1]
	}
	return box, nil
}

// Rotate returns the clockwise rotation, normalised to 0, 90, 180 or 270.
func (p *Page) Rotate() int {
	n, _ := p.attrs.GetInt("Rotate")
	r := int(n) % 360
	if r < 0 {
		r += 360
	}
	return r / 90 * 90
}

// Contents returns the page's content streams in order.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj, err := p.r.Resolve(p.dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("/Contents: %w", err)
	}
	var parts []core.Object
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		parts = v
	default:
		return nil, fmt.Errorf("%w: /Contents is %T", ErrPageTree, obj)
	}

	streams := make([]*core.Stream, 0, len(parts))
	for i, part := range parts {
		obj, err := p.r.Resolve(part)
		if err != nil {
			return nil, fmt.Errorf("/Contents[%d]: %w", i, err)
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("%w: /Contents[%d] is %T", ErrPageTree, i, obj)
		}
		streams = append(streams, s)
	}
	return streams, nil
}

// ContentData decodes the content streams and joins them with a newline,
// so an operator split across two streams still reads as one token.
func (p *Page) ContentData() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}
	var data []byte
	for i, s := range streams {
		decoded, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("/Contents[%d]: %w", i, err)
		}
		if i > 0 {
			data = append(data, '\n')
		}
		data = append(data, decoded...)
	}
	return data, nil
}
