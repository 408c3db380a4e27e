package text

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/core"
	"github.com/mvvtools/linecolors/graphicsstate"
)

func TestBaseOperatorsLeaveColourUnregistered(t *testing.T) {
	ex := NewExtractor()
	registered := make(map[string]bool)
	for _, name := range ex.Operators() {
		registered[name] = true
	}

	for _, name := range []string{"BT", "ET", "Tf", "Tj", "TJ", "'", "\"", "Do", "q", "Q", "cm", "re", "f*", "BDC", "BI"} {
		if !registered[name] {
			t.Errorf("operator %q not registered", name)
		}
	}
	for _, name := range graphicsstate.ColorOperators() {
		if registered[name] {
			t.Errorf("colour operator %q registered by the base extractor", name)
		}
	}
}

func TestStrictModeRejectsColourOperators(t *testing.T) {
	content := []byte("BT /F1 12 Tf 1 0 0 rg (Red) Tj ET")

	t.Run("lenient", func(t *testing.T) {
		ex := NewExtractor()
		fragments, err := ex.ExtractFromBytes(content)
		if err != nil {
			t.Fatalf("ExtractFromBytes failed: %v", err)
		}
		if len(fragments) != 1 {
			t.Fatalf("expected 1 fragment, got %d", len(fragments))
		}
		if diff := cmp.Diff(map[string]int{"rg": 1}, ex.Unsupported()); diff != "" {
			t.Errorf("Unsupported() mismatch (-want +got):\n%s", diff)
		}
		if got := fragments[0].FillColor; got != (graphicsstate.RGB{}) {
			t.Errorf("fill colour = %v, want black without colour handlers", got)
		}
	})

	t.Run("strict", func(t *testing.T) {
		ex := NewExtractor()
		ex.SetStrict(true)
		_, err := ex.ExtractFromBytes(content)
		if !errors.Is(err, contentstream.ErrUnsupportedOperator) {
			t.Fatalf("error = %v, want ErrUnsupportedOperator", err)
		}
	})
}

func TestAddOperatorColour(t *testing.T) {
	ex := NewExtractor()
	err := ex.AddOperator("rg", func(e *Extractor, op contentstream.Operation) error {
		return graphicsstate.ApplyColorOperator(e.GraphicsState(), op, e.ColorSpaces())
	})
	if err != nil {
		t.Fatalf("AddOperator failed: %v", err)
	}

	fragments, err := ex.ExtractFromBytes([]byte("BT /F1 12 Tf 0.89 0 0.06 rg (U1) Tj 0 0 0 rg (U2) Tj ET"))
	if err != nil {
		t.Fatalf("ExtractFromBytes failed: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}

	if got := fragments[0].FillColor.Hex(); got != "#e3000f" {
		t.Errorf("first fill = %s, want #e3000f", got)
	}
	if got := fragments[0].Chars[1].FillColor.Hex(); got != "#e3000f" {
		t.Errorf("char fill = %s, want #e3000f", got)
	}
	if got := fragments[1].FillColor.Hex(); got != "#000000" {
		t.Errorf("second fill = %s, want #000000", got)
	}
}

func TestAddOperatorValidation(t *testing.T) {
	ex := NewExtractor()
	if err := ex.AddOperator("", ignoreOperator); !errors.Is(err, contentstream.ErrInvalidOperator) {
		t.Errorf("AddOperator(\"\") error = %v, want ErrInvalidOperator", err)
	}
	if err := ex.AddOperator("rg", nil); !errors.Is(err, contentstream.ErrNilHandler) {
		t.Errorf("AddOperator(nil) error = %v, want ErrNilHandler", err)
	}
}

func TestCharPositions(t *testing.T) {
	ex := NewExtractor()

	fragments, err := ex.ExtractFromBytes([]byte("BT /F1 10 Tf 100 200 Td [(A) -1000 (B)] TJ ET"))
	if err != nil {
		t.Fatalf("ExtractFromBytes failed: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}

	a, b := fragments[0], fragments[1]
	if len(a.Chars) != 1 || a.Chars[0].Text != "A" {
		t.Fatalf("first fragment chars = %+v", a.Chars)
	}
	if math.Abs(a.Width-6.67) > 1e-9 {
		t.Errorf("width of A = %f, want 6.67", a.Width)
	}
	// 6.67 for the glyph plus 10 for the -1000 adjustment
	if math.Abs(b.X-116.67) > 1e-9 || b.Y != 200 {
		t.Errorf("B at (%f, %f), want (116.67, 200)", b.X, b.Y)
	}
}

func TestRecoverableOperandErrors(t *testing.T) {
	ex := NewExtractor()

	fragments, err := ex.ExtractFromBytes([]byte("Q BT /F1 Tf 12 Td /F1 12 Tf (Still here) Tj ET"))
	if err != nil {
		t.Fatalf("ExtractFromBytes failed: %v", err)
	}
	if len(fragments) != 1 || fragments[0].Text != "Still here" {
		t.Fatalf("fragments = %+v", fragments)
	}

	warnings := ex.Warnings()
	if len(warnings) != 3 {
		t.Fatalf("warnings = %q, want 3", warnings)
	}
	for i, want := range []string{"(Q)", "(Tf)", "(Td)"} {
		if !strings.Contains(warnings[i], want) {
			t.Errorf("warning %d = %q, want it to mention %s", i, warnings[i], want)
		}
	}
}

func TestFormXObject(t *testing.T) {
	form := &core.Stream{
		Dict: core.Dict{
			"Subtype": core.Name("Form"),
			"Matrix":  core.Array{core.Int(1), core.Int(0), core.Int(0), core.Int(1), core.Int(100), core.Int(0)},
			"Resources": core.Dict{
				"Font": core.Dict{"F9": core.Dict{"Type": core.Name("Font"), "Subtype": core.Name("Type1"), "BaseFont": core.Name("Courier")}},
			},
		},
		Data: []byte("BT /F9 10 Tf 0 50 Td (Inner) Tj ET Q"),
	}
	image := &core.Stream{Dict: core.Dict{"Subtype": core.Name("Image")}}

	resources := core.Dict{
		"XObject": core.IndirectRef{Number: 7},
	}
	objs := objects{
		7: core.Dict{"Fm0": core.IndirectRef{Number: 8}, "Im0": image},
		8: form,
	}
	ex := NewExtractor()
	if err := ex.SetResources(resources, objs); err != nil {
		t.Fatalf("SetResources failed: %v", err)
	}

	fragments, err := ex.ExtractFromBytes([]byte("q /Im0 Do Q /Fm0 Do /Fm1 Do BT /F1 12 Tf (Outer) Tj ET"))
	if err != nil {
		t.Fatalf("ExtractFromBytes failed: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}

	inner := fragments[0]
	if inner.Text != "Inner" || inner.X != 100 || inner.Y != 50 {
		t.Errorf("inner fragment = %q at (%f, %f), want Inner at (100, 50)", inner.Text, inner.X, inner.Y)
	}
	if inner.Width != 30 {
		t.Errorf("inner width = %f, want Courier width 30", inner.Width)
	}
	if outer := fragments[1]; outer.X != 0 || outer.Y != 0 {
		t.Errorf("outer fragment at (%f, %f), form matrix leaked", outer.X, outer.Y)
	}
	if _, ok := ex.fonts["F9"]; ok {
		t.Error("form font leaked into page fonts")
	}

	warnings := strings.Join(ex.Warnings(), "\n")
	if !strings.Contains(warnings, "(Q)") || !strings.Contains(warnings, "Fm1") {
		t.Errorf("warnings = %q, want unbalanced Q and missing Fm1", warnings)
	}
}

func TestFormRecursionLimit(t *testing.T) {
	loop := &core.Stream{
		Dict: core.Dict{"Subtype": core.Name("Form")},
		Data: []byte("/Loop Do BT (x) Tj ET"),
	}
	ex := NewExtractor()
	ex.SetResources(core.Dict{"XObject": core.Dict{"Loop": loop}}, nil)

	fragments, err := ex.ExtractFromBytes([]byte("/Loop Do"))
	if err != nil {
		t.Fatalf("ExtractFromBytes failed: %v", err)
	}
	if len(fragments) != maxFormDepth {
		t.Errorf("expected %d fragments, got %d", maxFormDepth, len(fragments))
	}
	if len(ex.Warnings()) != 1 {
		t.Errorf("warnings = %q, want one depth warning", ex.Warnings())
	}
}
