// Package pdftest builds small, well-formed PDF files for tests.
//
// Objects are written in order while their byte offsets are recorded, so
// the cross-reference section always points at the right place.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Page describes one page of a test document.
type Page struct {
	// Content is the page's content stream.
	Content string
	// Fonts maps resource names (without "/") to Type1 base fonts. A nil map
	// gives the page F1 = Helvetica.
	Fonts map[string]string
	// ColorSpaces maps resource names to raw PDF object text, such as
	// "[/Indexed /DeviceRGB 1 <000000e3000f>]".
	ColorSpaces map[string]string
	// Forms maps resource names to Form XObject content streams. Forms see
	// the page's fonts and colour spaces.
	Forms map[string]string
}

// Builder assembles a document page by page.
type Builder struct {
	pages      []Page
	compress   bool
	xrefStream bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// AddPage appends a page.
func (b *Builder) AddPage(p Page) *Builder {
	b.pages = append(b.pages, p)
	return b
}

// AddText appends a page whose content is the given stream.
func (b *Builder) AddText(content string) *Builder {
	return b.AddPage(Page{Content: content})
}

// Compress stores streams with /FlateDecode.
func (b *Builder) Compress(on bool) *Builder {
	b.compress = on
	return b
}

// XRefStream writes a PDF 1.5 cross-reference stream and puts every
// non-stream object into an object stream.
func (b *Builder) XRefStream(on bool) *Builder {
	b.xrefStream = on
	return b
}

type object struct {
	body   string // dictionary or other direct object text
	stream []byte
}

// Bytes renders the document.
func (b *Builder) Bytes() []byte {
	objs := b.objects()
	if b.xrefStream {
		return b.renderXRefStream(objs)
	}
	return b.renderClassic(objs)
}

// objects numbers the document's objects from 1: catalog, page tree, fonts,
// then each page followed by its content and forms.
func (b *Builder) objects() []object {
	objs := []object{{}, {}}
	add := func(o object) int {
		objs = append(objs, o)
		return len(objs)
	}

	fontRefs := make(map[string]int)
	for _, p := range b.pages {
		for _, base := range sortedValues(pageFonts(p)) {
			if _, ok := fontRefs[base]; !ok {
				fontRefs[base] = add(object{body: fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", base)})
			}
		}
	}

	var kids []string
	for _, p := range b.pages {
		var res strings.Builder
		res.WriteString("<< /Font <<")
		fonts := pageFonts(p)
		for _, name := range sortedKeys(fonts) {
			fmt.Fprintf(&res, " /%s %d 0 R", name, fontRefs[fonts[name]])
		}
		res.WriteString(" >>")
		if len(p.ColorSpaces) > 0 {
			res.WriteString(" /ColorSpace <<")
			for _, name := range sortedKeys(p.ColorSpaces) {
				fmt.Fprintf(&res, " /%s %s", name, p.ColorSpaces[name])
			}
			res.WriteString(" >>")
		}
		formRes := res.String() + " >>"

		var xobjects []string
		for _, name := range sortedKeys(p.Forms) {
			num := add(b.stream("/Type /XObject /Subtype /Form /BBox [0 0 595 842] /Resources "+formRes, p.Forms[name]))
			xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", name, num))
		}
		if len(xobjects) > 0 {
			res.WriteString(" /XObject << " + strings.Join(xobjects, " ") + " >>")
		}
		res.WriteString(" >>")

		content := add(b.stream("", p.Content))
		pageNum := add(object{body: fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources %s /Contents %d 0 R >>", res.String(), content)})
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}

	objs[0] = object{body: "<< /Type /Catalog /Pages 2 0 R >>"}
	objs[1] = object{body: fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))}
	return objs
}

func (b *Builder) stream(extra, content string) object {
	data := []byte(content)
	if b.compress {
		data = deflate(data)
		extra = strings.TrimSpace(extra + " /Filter /FlateDecode")
	}
	body := fmt.Sprintf("<< %s /Length %d >>", extra, len(data))
	if extra == "" {
		body = fmt.Sprintf("<< /Length %d >>", len(data))
	}
	return object{body: body, stream: data}
}

func (b *Builder) renderClassic(objs []object) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		writeObject(&buf, i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func (b *Builder) renderXRefStream(objs []object) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n%\xe2\xe3\xcf\xd3\n")

	// Entry kinds: 1 = at an offset, 2 = inside the object stream
	type entry struct{ kind, field1, field2 int }
	entries := make([]entry, len(objs)+3)
	entries[0] = entry{0, 0, 65535}

	objStmNum := len(objs) + 1
	xrefNum := len(objs) + 2

	var header, bodies strings.Builder
	packed := 0
	for i, o := range objs {
		if o.stream != nil {
			entries[i+1] = entry{1, buf.Len(), 0}
			writeObject(&buf, i+1, o)
			continue
		}
		fmt.Fprintf(&header, "%d %d ", i+1, bodies.Len())
		bodies.WriteString(o.body)
		bodies.WriteString("\n")
		entries[i+1] = entry{2, objStmNum, packed}
		packed++
	}

	first := header.Len()
	entries[objStmNum] = entry{1, buf.Len(), 0}
	writeObject(&buf, objStmNum, b.stream(fmt.Sprintf("/Type /ObjStm /N %d /First %d", packed, first), header.String()+bodies.String()))

	entries[xrefNum] = entry{1, buf.Len(), 0}
	var table bytes.Buffer
	for _, e := range entries {
		table.WriteByte(byte(e.kind))
		binary.Write(&table, binary.BigEndian, uint32(e.field1))
		binary.Write(&table, binary.BigEndian, uint16(e.field2))
	}
	xref := buf.Len()
	dict := fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] /Root 1 0 R", len(entries))
	writeObject(&buf, xrefNum, object{body: fmt.Sprintf("<< %s /Length %d >>", dict, table.Len()), stream: table.Bytes()})

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func writeObject(buf *bytes.Buffer, num int, o object) {
	fmt.Fprintf(buf, "%d 0 obj\n%s", num, o.body)
	if o.stream != nil {
		buf.WriteString("\nstream\n")
		buf.Write(o.stream)
		buf.WriteString("\nendstream")
	}
	buf.WriteString("\nendobj\n")
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

func pageFonts(p Page) map[string]string {
	if p.Fonts == nil {
		return map[string]string{"F1": "Helvetica"}
	}
	return p.Fonts
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedValues(m map[string]string) []string {
	var values []string
	for _, k := range sortedKeys(m) {
		values = append(values, m[k])
	}
	return values
}

// Text returns a content stream fragment that shows s with font F1 at
// (x, y).
func Text(x, y, size float64, s string) string {
	return fmt.Sprintf("BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(size), num(x), num(y), Escape(s))
}

// Escape escapes s for use in a PDF literal string.
func Escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
