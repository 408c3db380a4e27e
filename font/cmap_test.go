package font

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mvvtools/linecolors/core"
)

// toUnicode wraps mapping sections in the boilerplate producers write
// around a ToUnicode CMap with a two byte codespace.
func toUnicode(sections string) string {
	return `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
` + sections + `
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`
}

func mustCMap(t *testing.T, data string) *CMap {
	t.Helper()
	cmap, err := parseCMapData([]byte(data))
	if err != nil {
		t.Fatalf("parseCMapData failed: %v", err)
	}
	return cmap
}

func TestCMapLookup(t *testing.T) {
	tests := []struct {
		name     string
		sections string
		want     map[uint32]string
	}{
		{
			name:     "bfchar",
			sections: "4 beginbfchar\n<0003> <0020>\n<0004> <004D>\n<0005> <0056>\n<0006> <0056>\nendbfchar",
			want:     map[uint32]string{0x0003: " ", 0x0004: "M", 0x0005: "V", 0x0006: "V", 0x0007: ""},
		},
		{
			name:     "bfrange with start value",
			sections: "2 beginbfrange\n<0020> <007E> <0020>\n<00C4> <00C6> <00C4>\nendbfrange",
			want:     map[uint32]string{0x0020: " ", 0x0055: "U", 0x007E: "~", 0x00C4: "Ä", 0x00C6: "Æ", 0x00C7: ""},
		},
		{
			name:     "bfrange with array",
			sections: "1 beginbfrange\n<0010> <0012> [<0058> <0032> <0030>]\nendbfrange",
			want:     map[uint32]string{0x0010: "X", 0x0011: "2", 0x0012: "0", 0x0013: ""},
		},
		{
			name:     "bfchar and bfrange together",
			sections: "1 beginbfchar\n<0001> <0053>\nendbfchar\n1 beginbfrange\n<00A0> <00FF> <00A0>\nendbfrange",
			want:     map[uint32]string{0x0001: "S", 0x00DF: "ß", 0x00FC: "ü"},
		},
		{
			name:     "hiragana",
			sections: "2 beginbfchar\n<0001> <3042>\n<0002> <3044>\nendbfchar",
			want:     map[uint32]string{0x0001: "あ", 0x0002: "い"},
		},
		{
			name:     "surrogate pair",
			sections: "1 beginbfchar\n<0021> <d83d dc4b>\nendbfchar",
			want:     map[uint32]string{0x0021: "\U0001F44B"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmap := mustCMap(t, toUnicode(tt.sections))
			got := make(map[uint32]string, len(tt.want))
			for code := range tt.want {
				got[code] = cmap.Lookup(code)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lookup mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCMapLookupString(t *testing.T) {
	cmap := mustCMap(t, toUnicode("5 beginbfchar\n<0003> <0058>\n<0004> <0032>\n<0005> <0030>\n<0006> <0031>\n<0007> <0020>\nendbfchar"))
	input := []byte{0x00, 0x03, 0x00, 0x04, 0x00, 0x05, 0x00, 0x06, 0x00, 0x07, 0x00, 0x04}
	if got := cmap.LookupString(input); got != "X201 2" {
		t.Errorf("LookupString() = %q, want %q", got, "X201 2")
	}
}

func TestParseToUnicodeCMap(t *testing.T) {
	stream := &core.Stream{Dict: core.Dict{}, Data: []byte(toUnicode("1 beginbfchar\n<0003> <0052>\nendbfchar"))}
	cmap, err := ParseToUnicodeCMap(stream)
	if err != nil {
		t.Fatalf("ParseToUnicodeCMap failed: %v", err)
	}
	if got := cmap.Lookup(0x0003); got != "R" {
		t.Errorf("Lookup(0x0003) = %q, want %q", got, "R")
	}
}

// Without mappings LookupString reads the bytes as they are.
func TestCMapWithoutMappings(t *testing.T) {
	var none *CMap
	tests := []struct {
		name string
		cmap *CMap
	}{
		{"empty", NewCMap()},
		{"nil", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmap.LookupString([]byte("S8")); got != "S8" {
				t.Errorf("LookupString = %q, want %q", got, "S8")
			}
		})
	}
	if got := NewCMap().Lookup(0x41); got != "" {
		t.Errorf("Lookup on an empty CMap = %q, want empty", got)
	}
}

func TestCodeValue(t *testing.T) {
	tests := map[string]uint32{
		"\x00\x41":     0x0041,
		"\xff\xff":     0xFFFF,
		"A":            0x41,
		"\x01\x02\x03": 0x010203,
		"":             0,
	}
	for in, want := range tests {
		if got := codeValue([]byte(in)); got != want {
			t.Errorf("codeValue(% x) = %04x, want %04x", in, got, want)
		}
	}
}

func TestUnicodeText(t *testing.T) {
	tests := map[string]string{
		"\x00\x41":         "A",
		"\x30\x42":         "あ",
		"\x00\x55\x00\x32": "U2",
		"\xfe\xff\x00\x41": "A",
		"\xd8\x3d\xde\x00": "😀",
		"A":                "A",
		"":                 "",
	}
	for in, want := range tests {
		if got := unicodeText([]byte(in)); got != want {
			t.Errorf("unicodeText(% x) = %q, want %q", in, got, want)
		}
	}
}

func TestCMapTightPacking(t *testing.T) {
	cmap := mustCMap(t, "1 begincodespacerange\n<00><FF>\nendcodespacerange\n2 beginbfrange\n<21><21><0052>\n<22><22><0065>\nendbfrange\n")
	if got := cmap.LookupString([]byte{0x21, 0x22}); got != "Re" {
		t.Errorf("LookupString(<2122>) = %q, want %q", got, "Re")
	}
}

func TestCMapSingleByteCodesWithoutCodespace(t *testing.T) {
	// Line numbers drawn from a subset font: each digit is one byte, and
	// no codespace range says so.
	cmapData := `begincmap
3 beginbfchar
<01> <0032>
<02> <0031>
<03> <0030>
endbfchar
endcmap`

	cmap, err := parseCMapData([]byte(cmapData))
	if err != nil {
		t.Fatalf("parseCMapData failed: %v", err)
	}
	if got := cmap.LookupString([]byte{0x01, 0x02, 0x03}); got != "210" {
		t.Errorf("LookupString(<010203>) = %q, want %q", got, "210")
	}
	if got := cmap.Lookup(0x0102); got != "" {
		t.Errorf("Lookup(0x0102) = %q, want unmapped", got)
	}
}

func TestCMapMixedCodespace(t *testing.T) {
	// Shift-JIS style: single bytes below 0x81, two bytes from 0x81 on.
	cmapData := `2 begincodespacerange
<00> <80>
<8140> <9FFC>
endcodespacerange
2 beginbfchar
<41> <0041>
<8140> <3000>
endbfchar
1 beginbfrange
<8141> <8142> [<3001> /period]
endbfrange`

	cmap, err := parseCMapData([]byte(cmapData))
	if err != nil {
		t.Fatalf("parseCMapData failed: %v", err)
	}

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"one byte", []byte{0x41}, "A"},
		{"two bytes", []byte{0x81, 0x40}, "\u3000"},
		{"mixed", []byte{0x41, 0x81, 0x41, 0x81, 0x42, 0x41}, "A\u3001.A"},
		{"unmapped two byte code dropped", []byte{0x81, 0x50, 0x41}, "A"},
		{"unmapped one byte code kept", []byte{0x42}, "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cmap.LookupString(tt.input); got != tt.want {
				t.Errorf("LookupString(% x) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCMapRangeIncrementsLastByte(t *testing.T) {
	cmapData := `1 beginbfrange
<0010> <0012> <D83DDE00>
endbfrange`

	cmap, err := parseCMapData([]byte(cmapData))
	if err != nil {
		t.Fatalf("parseCMapData failed: %v", err)
	}
	if got := cmap.Lookup(0x0012); got != "\U0001F602" {
		t.Errorf("Lookup(0x0012) = %q, want %q", got, "\U0001F602")
	}
	if cmap.Name != "" {
		t.Errorf("Name = %q, want empty", cmap.Name)
	}
}

func TestCMapDamagedTail(t *testing.T) {
	good := "1 beginbfchar\n<01> <0041>\nendbfchar\n"
	cmap, err := parseCMapData([]byte(good + "1 beginbfchar\n<02> (unterminated"))
	if err != nil {
		t.Fatalf("parseCMapData failed: %v", err)
	}
	if got := cmap.Lookup(0x01); got != "A" {
		t.Errorf("Lookup(0x01) = %q, want %q", got, "A")
	}

	if _, err := parseCMapData([]byte("1 beginbfchar\n<02> (unterminated")); err == nil {
		t.Error("expected error for a CMap without any usable mapping")
	}
}
