package graphicsstate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/core"
)

func TestRGBHex(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{"black", RGB{}, "#000000"},
		{"white", RGB{1, 1, 1}, "#ffffff"},
		{"grey 135", RGB{135.0 / 255, 135.0 / 255, 135.0 / 255}, "#878787"},
		{"rounding", RGB{0.5, 0.2, 0.9}, "#8033e6"},
		{"clamped", RGB{-1, 2, 0}, "#00ff00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rgb.Hex(); got != tt.want {
				t.Errorf("Hex() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceSpacesToRGB(t *testing.T) {
	tests := []struct {
		name  string
		space ColorSpace
		comps []float64
		want  string
	}{
		{"gray", DeviceGray, []float64{0.5}, "#808080"},
		{"rgb", DeviceRGB, []float64{1, 0, 0}, "#ff0000"},
		{"cmyk black", DeviceCMYK, []float64{0, 0, 0, 1}, "#000000"},
		{"cmyk cyan", DeviceCMYK, []float64{1, 0, 0, 0}, "#00ffff"},
		{"cmyk mixed", DeviceCMYK, []float64{0, 0.5, 1, 0.2}, "#cc6600"},
		{"lab white", newLab(), []float64{100, 0, 0}, "#ffffff"},
		{"lab black", newLab(), []float64{0, 0, 0}, "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.space.ToRGB(tt.comps).Hex(); got != tt.want {
				t.Errorf("ToRGB(%v) = %s, want %s", tt.comps, got, tt.want)
			}
		})
	}
}

func TestParseColorSpace(t *testing.T) {
	profile := &core.Stream{Dict: core.Dict{"N": core.Int(4)}}
	lookupStream := &core.Stream{Dict: core.Dict{}, Data: []byte{0, 0, 0, 255, 0, 0}}

	objects := map[int]core.Object{
		10: profile,
		11: lookupStream,
	}
	resolve := func(obj core.Object) (core.Object, error) {
		if ref, ok := obj.(core.IndirectRef); ok {
			return objects[ref.Number], nil
		}
		return obj, nil
	}

	tests := []struct {
		name     string
		obj      core.Object
		wantName string
		comps    []float64
		wantHex  string
	}{
		{
			name:     "icc by N",
			obj:      core.Array{core.Name("ICCBased"), core.IndirectRef{Number: 10}},
			wantName: "ICCBased",
			comps:    []float64{0, 1, 1, 0},
			wantHex:  "#ff0000",
		},
		{
			name:     "indexed string lookup",
			obj:      core.Array{core.Name("Indexed"), core.Name("DeviceRGB"), core.Int(1), core.String("\x00\x00\x00\x00\x80\xff")},
			wantName: "Indexed",
			comps:    []float64{1},
			wantHex:  "#0080ff",
		},
		{
			name:     "indexed stream lookup clamps index",
			obj:      core.Array{core.Name("Indexed"), core.Name("DeviceRGB"), core.Int(1), core.IndirectRef{Number: 11}},
			wantName: "Indexed",
			comps:    []float64{7},
			wantHex:  "#ff0000",
		},
		{
			name: "separation with exponential tint",
			obj: core.Array{
				core.Name("Separation"), core.Name("HKS 43"), core.Name("DeviceCMYK"),
				core.Dict{
					"FunctionType": core.Int(2),
					"C0":           core.Array{core.Int(0), core.Int(0), core.Int(0), core.Int(0)},
					"C1":           core.Array{core.Int(1), core.Real(0.5), core.Int(0), core.Int(0)},
					"N":            core.Int(1),
				},
			},
			wantName: "Separation",
			comps:    []float64{1},
			wantHex:  "#0080ff",
		},
		{
			name:     "devicen without usable tint",
			obj:      core.Array{core.Name("DeviceN"), core.Array{core.Name("Cyan"), core.Name("Spot")}, core.Name("DeviceCMYK"), core.Dict{"FunctionType": core.Int(4)}},
			wantName: "DeviceN",
			comps:    []float64{0.25, 0.5},
			wantHex:  "#808080",
		},
		{
			name:     "uncoloured pattern",
			obj:      core.Array{core.Name("Pattern"), core.Name("DeviceGray")},
			wantName: "Pattern",
			comps:    []float64{1},
			wantHex:  "#ffffff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := ParseColorSpace(tt.obj, resolve)
			if err != nil {
				t.Fatalf("ParseColorSpace failed: %v", err)
			}
			if cs.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", cs.Name(), tt.wantName)
			}
			if got := cs.ToRGB(tt.comps).Hex(); got != tt.wantHex {
				t.Errorf("ToRGB(%v) = %s, want %s", tt.comps, got, tt.wantHex)
			}
		})
	}
}

func TestResourceLookup(t *testing.T) {
	resources := core.Dict{
		"ColorSpace": core.Dict{
			"CS0": core.Array{core.Name("Indexed"), core.Name("DeviceGray"), core.Int(0), core.String("\xff")},
		},
	}
	lookup := NewResourceLookup(resources, nil)

	for _, name := range []string{"DeviceGray", "DeviceRGB", "DeviceCMYK", "Pattern", "CS0", "CalRGB", "Lab"} {
		if _, err := lookup(name); err != nil {
			t.Errorf("lookup(%q) failed: %v", name, err)
		}
	}

	if _, err := lookup("CS9"); !errors.Is(err, contentstream.ErrMissingResource) {
		t.Errorf("lookup(CS9) error = %v, want ErrMissingResource", err)
	}
}

func TestColorOperators(t *testing.T) {
	want := []string{"CS", "G", "K", "RG", "SC", "SCN", "cs", "g", "k", "rg", "sc", "scn"}
	if diff := cmp.Diff(want, ColorOperators()); diff != "" {
		t.Errorf("ColorOperators() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyColorOperator(t *testing.T) {
	resources := core.Dict{
		"ColorSpace": core.Dict{
			"CS1": core.Array{core.Name("Indexed"), core.Name("DeviceRGB"), core.Int(1), core.String("\x00\x00\x00\xe3\x00\x0f")},
		},
	}

	tests := []struct {
		name       string
		content    string
		wantFill   string
		wantStroke string
	}{
		{"gray", "0.5 g 1 G", "#808080", "#ffffff"},
		{"rgb", "1 0 0 rg 0 0 1 RG", "#ff0000", "#0000ff"},
		{"cmyk", "0 1 1 0 k 0 0 0 1 K", "#ff0000", "#000000"},
		{"sc in device space", "/DeviceRGB cs 0 1 0 sc", "#00ff00", "#000000"},
		{"cs resets to initial colour", "1 1 1 rg /DeviceCMYK cs", "#000000", "#000000"},
		{"indexed via resources", "/CS1 cs 1 scn /CS1 CS 0 SCN", "#e3000f", "#000000"},
		{"pattern", "/Pattern cs /P0 scn", "#000000", "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := contentstream.NewParser([]byte(tt.content)).Parse()
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			gs := NewGraphicsState()
			lookup := NewResourceLookup(resources, nil)
			for _, op := range ops {
				if err := ApplyColorOperator(gs, op, lookup); err != nil {
					t.Fatalf("ApplyColorOperator(%s) failed: %v", op.Operator, err)
				}
			}

			if got := gs.FillColor.RGB().Hex(); got != tt.wantFill {
				t.Errorf("fill = %s, want %s", got, tt.wantFill)
			}
			if got := gs.StrokeColor.RGB().Hex(); got != tt.wantStroke {
				t.Errorf("stroke = %s, want %s", got, tt.wantStroke)
			}
		})
	}
}

func TestApplyColorOperatorErrors(t *testing.T) {
	tests := []struct {
		name string
		op   contentstream.Operation
		want error
	}{
		{"rg short", contentstream.Operation{Operator: "rg", Operands: []core.Object{core.Int(1)}}, contentstream.ErrMissingOperand},
		{"k wrong type", contentstream.Operation{Operator: "k", Operands: []core.Object{core.Int(0), core.Int(0), core.Int(0), core.Name("x")}}, contentstream.ErrMissingOperand},
		{"cs no operand", contentstream.Operation{Operator: "cs"}, contentstream.ErrMissingOperand},
		{"cs unknown", contentstream.Operation{Operator: "cs", Operands: []core.Object{core.Name("CS7")}}, contentstream.ErrMissingResource},
		{"not a colour operator", contentstream.Operation{Operator: "Tj"}, contentstream.ErrUnsupportedOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyColorOperator(NewGraphicsState(), tt.op, NewResourceLookup(nil, nil))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
