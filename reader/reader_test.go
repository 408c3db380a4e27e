package reader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvvtools/linecolors/core"
	"github.com/mvvtools/linecolors/internal/pdftest"
)

// twoPages is numbered 1 catalog, 2 pages, 3 font, then the content and
// page objects: 4 and 5 for the first page, 6 and 7 for the second.
func twoPages() *pdftest.Builder {
	return pdftest.New().
		AddText(pdftest.Text(72, 700, 12, "Linie 210") + pdftest.Text(72, 686, 12, "X201")).
		AddText(pdftest.Text(72, 700, 12, "Seite zwei"))
}

func mustReader(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewFromBytes(data)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	return r
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netz.pdf")
	if err := os.WriteFile(path, twoPages().Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	if n, err := r.PageCount(); err != nil || n != 2 {
		t.Errorf("PageCount() = %d, %v; want 2", n, err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    PDFVersion
		wantErr bool
	}{
		{name: "1.4", data: "%PDF-1.4\n", want: PDFVersion{1, 4}},
		{name: "2.0", data: "%PDF-2.0\n", want: PDFVersion{2, 0}},
		{name: "leading garbage", data: "\x00\x00junk%PDF-1.7\n", want: PDFVersion{1, 7}},
		{name: "not a pdf", data: "hello world", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeader([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrNotPDF) {
					t.Errorf("parseHeader() error = %v, want ErrNotPDF", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parseHeader() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestCatalogAndInfo(t *testing.T) {
	r := mustReader(t, twoPages().Bytes())
	if got := r.Version().String(); got != "1.4" {
		t.Errorf("Version() = %s, want 1.4", got)
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog failed: %v", err)
	}
	if typ, _ := catalog.GetName("Type"); typ != "Catalog" {
		t.Errorf("catalog /Type = %s", typ)
	}
	if info, err := r.GetInfo(); err != nil || info != nil {
		t.Errorf("GetInfo() = %v, %v; want nil, nil", info, err)
	}
	if r.Repaired() {
		t.Error("Repaired() = true for an intact file")
	}
}

func TestGetObject(t *testing.T) {
	r := mustReader(t, twoPages().Bytes())

	font, err := r.GetObject(3)
	if err != nil {
		t.Fatalf("GetObject(3) failed: %v", err)
	}
	if base, _ := font.(core.Dict).GetName("BaseFont"); base != "Helvetica" {
		t.Errorf("BaseFont = %s", base)
	}
	if again, _ := r.Resolve(core.IndirectRef{Number: 3}); again == nil {
		t.Error("Resolve of a cached object returned nil")
	}
	if got, _ := r.Resolve(core.Int(7)); got != core.Int(7) {
		t.Errorf("Resolve(direct) = %v", got)
	}
	if got, err := r.Resolve(nil); got != nil || err != nil {
		t.Errorf("Resolve(nil) = %v, %v", got, err)
	}

	for _, num := range []int{0, 999} {
		if _, err := r.GetObject(num); err == nil {
			t.Errorf("GetObject(%d): expected an error", num)
		}
	}
}

func TestPages(t *testing.T) {
	r := mustReader(t, twoPages().Bytes())
	if n, err := r.PageCount(); err != nil || n != 2 {
		t.Fatalf("PageCount() = %d, %v; want 2", n, err)
	}
	for _, i := range []int{-1, 2} {
		if _, err := r.GetPage(i); err == nil {
			t.Errorf("GetPage(%d): expected an error", i)
		}
	}
}

func TestExtractTextFragments(t *testing.T) {
	r := mustReader(t, twoPages().Bytes())
	page, err := r.GetPage(0)
	if err != nil {
		t.Fatal(err)
	}

	fragments, warnings, err := r.ExtractTextFragments(page)
	if err != nil {
		t.Fatalf("ExtractTextFragments failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %q", warnings)
	}
	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(fragments))
	}
	if f := fragments[0]; f.Text != "Linie 210" || f.X != 72 || f.Y != 700 || f.FontSize != 12 {
		t.Errorf("first fragment = %+v", f)
	}
}

func TestObjectStreams(t *testing.T) {
	data := pdftest.New().
		XRefStream(true).
		Compress(true).
		AddText(pdftest.Text(10, 10, 10, "komprimiert")).
		Bytes()
	r := mustReader(t, data)

	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if len(r.objStreams) != 1 {
		t.Errorf("decoded %d object streams, want 1", len(r.objStreams))
	}
	fragments, _, err := r.ExtractTextFragments(page)
	if err != nil {
		t.Fatalf("ExtractTextFragments failed: %v", err)
	}
	if len(fragments) != 1 || fragments[0].Text != "komprimiert" {
		t.Errorf("fragments = %+v", fragments)
	}
}

// A file whose startxref points nowhere is read by scanning for objects.
func TestBrokenXRefIsRebuilt(t *testing.T) {
	data := twoPages().Bytes()
	i := bytes.LastIndex(data, []byte("startxref"))
	broken := append(append([]byte{}, data[:i]...), "startxref\n999999\n%%EOF\n"...)

	r := mustReader(t, broken)
	if !r.Repaired() {
		t.Error("Repaired() = false")
	}
	page, err := r.GetPage(1)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	fragments, _, err := r.ExtractTextFragments(page)
	if err != nil || len(fragments) != 1 || fragments[0].Text != "Seite zwei" {
		t.Errorf("fragments = %+v, %v", fragments, err)
	}
}

func TestNewFromBytesErrors(t *testing.T) {
	tests := map[string][]byte{
		"no header":  []byte("not a pdf at all"),
		"no objects": []byte("%PDF-1.4\n%%EOF\n"),
		"empty file": nil,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewFromBytes(data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
