package filters

import (
	"bytes"
	stdlzw "compress/lzw"
	"compress/zlib"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFlateDecode(t *testing.T) {
	content := []byte("BT /F1 12 Tf 72 700 Td (210 Holzkirchen) Tj ET")

	got, err := FlateDecode(deflate(t, content), nil)
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %q, want %q", got, content)
	}

	if _, err := FlateDecode([]byte("not zlib"), nil); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestFlateDecodeTruncated(t *testing.T) {
	content := bytes.Repeat([]byte("0.8902 0 0.0588 rg "), 200)
	z := deflate(t, content)

	got, err := FlateDecode(z[:len(z)/2], nil)
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if len(got) == 0 || !bytes.HasPrefix(content, got) {
		t.Errorf("got %d bytes that are not a prefix of the content", len(got))
	}
}

func TestPNGPredictors(t *testing.T) {
	// Two rows of three RGB-less bytes (Colors 1, Columns 3).
	want := []byte{10, 20, 30, 15, 25, 40}

	tests := []struct {
		name string
		rows []byte
	}{
		{"none", []byte{0, 10, 20, 30, 0, 15, 25, 40}},
		{"sub", []byte{1, 10, 10, 10, 1, 15, 10, 15}},
		{"up", []byte{2, 10, 20, 30, 2, 5, 5, 10}},
		{"average", []byte{3, 10, 15, 20, 3, 10, 8, 13}},
		{"paeth", []byte{4, 10, 10, 10, 4, 5, 5, 10}},
		{"mixed types", []byte{0, 10, 20, 30, 2, 5, 5, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := Params{"Predictor": 12, "Columns": 3}
			got, err := FlateDecode(deflate(t, tt.rows), params)
			if err != nil {
				t.Fatalf("FlateDecode failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPNGPredictorXRefRows(t *testing.T) {
	// The layout cross-reference streams use: /W [1 2 1], Columns 4, Up.
	rows := []byte{
		2, 1, 0, 15, 0,
		2, 0, 0, 32, 0,
	}
	got, err := unpredict(rows, Params{"Predictor": 12, "Columns": 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 15, 0, 1, 0, 47, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictorErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		params Params
	}{
		{"unknown predictor", []byte{1, 2}, Params{"Predictor": 7}},
		{"bad filter type", []byte{9, 1}, Params{"Predictor": 10}},
		{"bad bits", []byte{0, 1}, Params{"Predictor": 10, "BitsPerComponent": 3}},
		{"tiff 4 bit", []byte{1, 2}, Params{"Predictor": 2, "BitsPerComponent": 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := unpredict(tt.data, tt.params); !errors.Is(err, ErrPredictor) {
				t.Errorf("err = %v, want ErrPredictor", err)
			}
		})
	}
}

func TestTIFFPredictor(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		params Params
		want   []byte
	}{
		{
			name:   "8 bit RGB",
			data:   []byte{100, 50, 0, 1, 2, 3},
			params: Params{"Predictor": 2, "Colors": 3, "Columns": 2},
			want:   []byte{100, 50, 0, 101, 52, 3},
		},
		{
			name:   "16 bit gray",
			data:   []byte{0x01, 0x00, 0x00, 0x10},
			params: Params{"Predictor": 2, "BitsPerComponent": 16, "Columns": 2},
			want:   []byte{0x01, 0x00, 0x01, 0x10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpredict(tt.data, tt.params)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLZWDecode(t *testing.T) {
	// The worked example of the PDF reference: "-----A---B".
	encoded := []byte{0x80, 0x0B, 0x60, 0x50, 0x22, 0x0C, 0x0C, 0x85, 0x01}

	for _, early := range []int{0, 1} {
		got, err := LZWDecode(encoded, Params{"EarlyChange": early})
		if err != nil {
			t.Fatalf("EarlyChange %d: %v", early, err)
		}
		if string(got) != "-----A---B" {
			t.Errorf("EarlyChange %d: got %q", early, got)
		}
	}

	if _, err := LZWDecode(encoded, Params{"EarlyChange": 2}); err == nil {
		t.Error("expected error for EarlyChange 2")
	}
}

func TestLZWDecodeEarlyChangeZero(t *testing.T) {
	// Long enough for the code width to grow past 9 bits, where the two
	// variants disagree.
	var content strings.Builder
	for i := 0; i < 400; i++ {
		content.WriteString("210 ")
		content.WriteByte(byte('A' + i%26))
		content.WriteByte(byte('a' + i%7))
	}
	var buf bytes.Buffer
	w := stdlzw.NewWriter(&buf, stdlzw.MSB, 8)
	w.Write([]byte(content.String()))
	w.Close()

	got, err := LZWDecode(buf.Bytes(), Params{"EarlyChange": 0})
	if err != nil {
		t.Fatalf("LZWDecode failed: %v", err)
	}
	if string(got) != content.String() {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), content.Len())
	}
}

func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{"plain", "48656C6C6F>", []byte("Hello"), false},
		{"whitespace", "48 65\n6c 6C\t6F >", []byte("Hello"), false},
		{"odd digit", "4865A>", []byte{0x48, 0x65, 0xA0}, false},
		{"no end marker", "4142", []byte("AB"), false},
		{"stops at end marker", "41>42", []byte("A"), false},
		{"invalid", "4G>", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCIIHexDecode([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestASCII85Decode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"group", "87cURD]i,\"Ebo80~>", "Hello World!", false},
		{"with prefix", "<~87cURD]i,\"Ebo80~>", "Hello World!", false},
		{"zero group", "z~>", "\x00\x00\x00\x00", false},
		{"whitespace", "87cU RD]i,\n\"Ebo80~>", "Hello World!", false},
		{"partial group", "9jqo~>", "Man", false},
		{"invalid", "87cu{~>", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunLengthDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    []byte
		wantErr bool
	}{
		{"literal", []byte{2, 'a', 'b', 'c', 128}, []byte("abc"), false},
		{"repeat", []byte{254, 'x', 128}, []byte("xxx"), false},
		{"mixed without end marker", []byte{0, 'a', 255, 'b'}, []byte("abb"), false},
		{"truncated literal", []byte{3, 'a'}, nil, true},
		{"truncated repeat", []byte{200}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RunLengthDecode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParams(t *testing.T) {
	p := Params{"Columns": 5, "Colors": 3.0, "BlackIs1": true, "Name": "x"}

	if got := p.Int("Columns", 1); got != 5 {
		t.Errorf("Columns = %d", got)
	}
	if got := p.Int("Colors", 1); got != 3 {
		t.Errorf("Colors = %d", got)
	}
	if got := p.Int("Name", 7); got != 7 {
		t.Errorf("Name = %d, want default", got)
	}
	if !p.Bool("BlackIs1", false) {
		t.Error("BlackIs1 = false")
	}
	var empty Params
	if got := empty.Int("Predictor", 1); got != 1 {
		t.Errorf("nil params Predictor = %d", got)
	}
}
