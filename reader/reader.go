package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/mvvtools/linecolors/core"
	"github.com/mvvtools/linecolors/pages"
	"github.com/mvvtools/linecolors/text"
)

var headerVersion = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// ErrNotPDF reports data without a %PDF- header in its first KiB.
var ErrNotPDF = errors.New("not a PDF file")

// PDFVersion is the version in the file header.
type PDFVersion struct {
	Major int
	Minor int
}

func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader gives access to the objects and pages of one PDF held in memory.
// A Reader is not safe for concurrent use; open one Reader per goroutine.
type Reader struct {
	data    []byte
	version PDFVersion
	xref    *core.XRefTable

	objects    map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
	tree       *pages.Tree
}

var (
	_ pages.Resolver         = (*Reader)(nil)
	_ core.ReferenceResolver = (*Reader)(nil)
	_ text.Document          = (*Reader)(nil)
)

// Open reads a whole PDF file.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return NewReader(f)
}

// NewReader reads a PDF from r until EOF.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return NewFromBytes(data)
}

// NewFromBytes reads a PDF already in memory. data must not be modified
// while the Reader is in use.
func NewFromBytes(data []byte) (*Reader, error) {
	version, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	xref, err := core.ReadXRef(data)
	if err != nil {
		return nil, fmt.Errorf("cross-reference: %w", err)
	}
	return &Reader{
		data:       data,
		version:    version,
		xref:       xref,
		objects:    make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
		loading:    make(map[int]bool),
	}, nil
}

// Close is a no-op; the file is read completely when the Reader is made.
func (r *Reader) Close() error { return nil }

// parseHeader finds %PDF-x.y within the first KiB. Some producers put
// garbage in front of the header, so it need not be at offset zero.
func parseHeader(data []byte) (PDFVersion, error) {
	head := data[:min(len(data), 1024)]
	m := headerVersion.FindSubmatch(head)
	if m == nil {
		return PDFVersion{}, fmt.Errorf("%w: starts with %q", ErrNotPDF, head[:min(len(head), 16)])
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Version returns the header version.
func (r *Reader) Version() PDFVersion { return r.version }

// Trailer returns the merged trailer dictionary.
func (r *Reader) Trailer() core.Dict { return r.xref.Trailer }

// Repaired reports whether the cross-reference table was rebuilt by
// scanning the file because the stored one was unusable.
func (r *Reader) Repaired() bool { return r.xref.Rebuilt }

// GetObject loads object num from its offset or its object stream.
// Objects are cached.
func (r *Reader) GetObject(num int) (core.Object, error) {
	if obj, ok := r.objects[num]; ok {
		return obj, nil
	}
	entry, ok := r.xref.Get(num)
	if !ok || !entry.InUse() {
		return nil, fmt.Errorf("object %d: not in use", num)
	}
	if r.loading[num] {
		return nil, fmt.Errorf("object %d: refers to itself while loading", num)
	}
	r.loading[num] = true
	defer delete(r.loading, num)

	var obj core.Object
	var err error
	if entry.Type == core.XRefEntryCompressed {
		obj, err = r.packed(num, entry)
	} else {
		obj, err = r.at(num, entry.Offset)
	}
	if err != nil {
		return nil, err
	}
	r.objects[num] = obj
	return obj, nil
}

func (r *Reader) at(num int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("object %d: offset %d outside the file", num, offset)
	}
	p := core.NewParser(r.data)
	p.SetReferenceResolver(r)
	p.Seek(int(offset))
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	if ind.Ref.Number != num {
		return nil, fmt.Errorf("object %d: offset %d holds object %d", num, offset, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) packed(num int, entry core.XRefEntry) (core.Object, error) {
	stm, ok := r.objStreams[entry.Stream]
	if !ok {
		obj, err := r.GetObject(entry.Stream)
		if err != nil {
			return nil, fmt.Errorf("object %d: object stream: %w", num, err)
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("object %d: object stream %d is %T", num, entry.Stream, obj)
		}
		if stm, err = core.NewObjectStream(s); err != nil {
			return nil, fmt.Errorf("object %d: object stream %d: %w", num, entry.Stream, err)
		}
		r.objStreams[entry.Stream] = stm
	}
	return stm.Object(num, entry.Index)
}

// ResolveReference loads the object ref points at. The generation number
// is not checked.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve loads obj if it is an IndirectRef and returns it unchanged
// otherwise.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// GetCatalog returns the document catalog named by the trailer's /Root.
func (r *Reader) GetCatalog() (core.Dict, error) {
	root := r.Trailer().Get("Root")
	if _, ok := root.(core.IndirectRef); !ok {
		return nil, fmt.Errorf("trailer /Root is %T", root)
	}
	obj, err := r.Resolve(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is %T", obj)
	}
	return catalog, nil
}

// GetInfo returns the document information dictionary, or nil when the
// trailer has none.
func (r *Reader) GetInfo() (core.Dict, error) {
	obj, err := r.Resolve(r.Trailer().Get("Info"))
	if err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	switch info := obj.(type) {
	case nil:
		return nil, nil
	case core.Dict:
		return info, nil
	}
	return nil, fmt.Errorf("info is %T", obj)
}

func (r *Reader) pageTree() (*pages.Tree, error) {
	if r.tree != nil {
		return r.tree, nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.NewTree(catalog, r)
	if err != nil {
		return nil, err
	}
	r.tree = tree
	return tree, nil
}

// PageCount returns the number of pages.
func (r *Reader) PageCount() (int, error) {
	tree, err := r.pageTree()
	if err != nil {
		return 0, err
	}
	return tree.Count(), nil
}

// GetPage returns the page at a zero-based index.
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	tree, err := r.pageTree()
	if err != nil {
		return nil, err
	}
	return tree.Page(index)
}

// ExtractTextFragments runs the base text extractor over one page and
// returns its positioned fragments together with the extractor warnings.
// Fonts that fail to load are reported as warnings.
func (r *Reader) ExtractTextFragments(page *pages.Page) ([]text.TextFragment, []string, error) {
	data, err := page.ContentData()
	if err != nil {
		return nil, nil, fmt.Errorf("page contents: %w", err)
	}

	ex := text.NewExtractor()
	if err := ex.SetPageResources(page, r); err != nil {
		ex.AddWarning(err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ex.Warnings(), nil
	}
	fragments, err := ex.ExtractFromBytes(data)
	if err != nil {
		return nil, ex.Warnings(), err
	}
	return fragments, ex.Warnings(), nil
}
