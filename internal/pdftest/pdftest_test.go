package pdftest

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestClassicXRefOffsets(t *testing.T) {
	data := New().
		AddText(Text(72, 700, 12, "Linie 210")).
		AddPage(Page{Content: "/Fm0 Do", Forms: map[string]string{"Fm0": Text(0, 0, 9, "X")}}).
		Bytes()

	if !bytes.HasPrefix(data, []byte("%PDF-1.4\n")) {
		t.Fatalf("missing header: %q", data[:16])
	}

	idx := bytes.LastIndex(data, []byte("startxref\n"))
	if idx < 0 {
		t.Fatal("missing startxref")
	}
	rest := strings.Fields(string(data[idx+len("startxref\n"):]))
	xref, err := strconv.Atoi(rest[0])
	if err != nil {
		t.Fatalf("startxref offset: %v", err)
	}
	if !bytes.HasPrefix(data[xref:], []byte("xref\n")) {
		t.Fatalf("startxref %d does not point at xref", xref)
	}

	entry := regexp.MustCompile(`(\d{10}) 00000 n \n`)
	matches := entry.FindAllSubmatch(data[xref:], -1)
	// catalog, pages, font, two pages with contents, one form
	if len(matches) != 8 {
		t.Fatalf("expected 8 xref entries, got %d", len(matches))
	}
	for i, m := range matches {
		off, _ := strconv.Atoi(string(m[1]))
		want := fmt.Sprintf("%d 0 obj\n", i+1)
		if !bytes.HasPrefix(data[off:], []byte(want)) {
			t.Errorf("entry %d points at %q, want %q", i+1, data[off:off+len(want)], want)
		}
	}
}

func TestSharedFonts(t *testing.T) {
	data := string(New().AddText("").AddText("").Bytes())
	if got := strings.Count(data, "/BaseFont /Helvetica"); got != 1 {
		t.Errorf("Helvetica written %d times, want once", got)
	}
}

func TestXRefStreamPacksObjects(t *testing.T) {
	data := string(New().XRefStream(true).Compress(true).AddText(Text(0, 0, 10, "A")).Bytes())

	for _, want := range []string{"%PDF-1.5", "/Type /ObjStm", "/Type /XRef", "/FlateDecode"} {
		if !strings.Contains(data, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	if strings.Contains(data, "/Type /Catalog") {
		t.Error("catalog written outside the compressed object stream")
	}
}

func TestEscape(t *testing.T) {
	if got, want := Escape(`a(b)\c`), `a\(b\)\\c`; got != want {
		t.Errorf("Escape() = %q, want %q", got, want)
	}
	if got, want := Text(10.5, 20, 12, "x"), "BT /F1 12 Tf 10.5 20 Td (x) Tj ET\n"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}
