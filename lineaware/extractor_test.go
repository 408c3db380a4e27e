package lineaware

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/graphicsstate"
	"github.com/mvvtools/linecolors/internal/pdftest"
	"github.com/mvvtools/linecolors/reader"
	"github.com/mvvtools/linecolors/text"
)

// allColorOperators uses each of the twelve colour operators once and ends
// with a fill of #e3000f picked from an indexed colour space.
const allColorOperators = `/DeviceRGB CS 1 0 0 SC 0 1 0 SCN
/DeviceRGB cs 0 0 1 sc 0 0 1 scn
0 0 0 1 K 0 0 0 1 k
0.5 G 0.5 g
1 0 0 RG 1 1 1 rg
/Idx cs 1 scn
`

func openPDF(t *testing.T, b *pdftest.Builder) *reader.Reader {
	t.Helper()

	r, err := reader.NewFromBytes(b.Bytes())
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	return r
}

func colourPage() *pdftest.Builder {
	return pdftest.New().AddPage(pdftest.Page{
		Content:     allColorOperators + pdftest.Text(72, 700, 12, "U1"),
		ColorSpaces: map[string]string{"Idx": "[/Indexed /DeviceRGB 1 <000000e3000f>]"},
	})
}

func TestColourOperatorsRegistered(t *testing.T) {
	var names []string
	for _, op := range colorOperators {
		names = append(names, op.name)
	}
	want := []string{"CS", "cs", "K", "k", "RG", "rg", "G", "g", "SC", "SCN", "sc", "scn"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("operator table mismatch (-want +got):\n%s", diff)
	}
	if len(graphicsstate.ColorOperators()) != len(colorOperators) {
		t.Errorf("table covers %d operators, graphics state knows %d", len(colorOperators), len(graphicsstate.ColorOperators()))
	}
}

func TestStrictModeWithColourOperators(t *testing.T) {
	t.Run("bare stripper fails", func(t *testing.T) {
		_, err := text.NewStripper(text.WithStrictOperators(true)).Text(openPDF(t, colourPage()))
		if !errors.Is(err, contentstream.ErrUnsupportedOperator) {
			t.Fatalf("error = %v, want ErrUnsupportedOperator", err)
		}
	})

	t.Run("line aware extractor succeeds", func(t *testing.T) {
		ex, err := New(text.WithStrictOperators(true))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		var fill string
		ex.OnString(func(_ string, positions []text.TextPosition) error {
			fill = positions[0].FillColor.Hex()
			return nil
		})

		got, err := ex.Text(openPDF(t, colourPage()))
		if err != nil {
			t.Fatalf("Text failed: %v", err)
		}
		if got != "U1\n" {
			t.Errorf("Text() = %q", got)
		}
		if fill != "#e3000f" {
			t.Errorf("fill = %s, want #e3000f", fill)
		}
		if len(ex.Warnings()) != 0 {
			t.Errorf("unexpected warnings: %q", ex.Warnings())
		}
	})
}

func TestNewReturnsRegistrationErrorUnchanged(t *testing.T) {
	saved := colorOperators
	t.Cleanup(func() { colorOperators = saved })
	colorOperators = append(colorOperators[:len(colorOperators):len(colorOperators)], colorOperators[0])
	colorOperators[len(colorOperators)-1].name = ""

	ex, err := New()
	if ex != nil {
		t.Error("expected no extractor on failure")
	}
	if err != contentstream.ErrInvalidOperator {
		t.Errorf("error = %v, want the stripper's ErrInvalidOperator as is", err)
	}
}

func TestFlag(t *testing.T) {
	ex, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !ex.IsNewLine() {
		t.Error("a fresh extractor should report a new line")
	}

	ex.SetNewLine(false)
	if ex.IsNewLine() {
		t.Error("flag should stay false without page start or line separator")
	}

	if err := ex.StartPage(1, nil); err != nil {
		t.Fatalf("StartPage failed: %v", err)
	}
	if !ex.IsNewLine() {
		t.Error("flag should be true after page start")
	}

	for _, prior := range []bool{false, true} {
		ex.SetNewLine(prior)
		if err := ex.LineSeparator(); err != nil {
			t.Fatalf("LineSeparator failed: %v", err)
		}
		if !ex.IsNewLine() {
			t.Errorf("flag should be true after a line separator (prior %v)", prior)
		}
	}
}

// observe records, for every word, whether the flag was set, and resets it
// the way callers do.
func observe(t *testing.T, ex *Extractor) *[]string {
	t.Helper()

	var seen []string
	ex.OnString(func(s string, _ []text.TextPosition) error {
		if ex.IsNewLine() {
			seen = append(seen, "^"+s)
		} else {
			seen = append(seen, s)
		}
		ex.SetNewLine(false)
		return nil
	})
	return &seen
}

func TestFlagAcrossPages(t *testing.T) {
	ex, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	seen := observe(t, ex)

	doc := pdftest.New().
		AddText(pdftest.Text(72, 700, 12, "erste Seite")).
		AddText(pdftest.Text(72, 700, 12, "zweite Seite"))
	if _, err := ex.Text(openPDF(t, doc)); err != nil {
		t.Fatalf("Text failed: %v", err)
	}

	want := []string{"^erste", "Seite", "^zweite", "Seite"}
	if diff := cmp.Diff(want, *seen); diff != "" {
		t.Errorf("flag observations mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagPerLine(t *testing.T) {
	ex, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	seen := observe(t, ex)

	content := pdftest.Text(72, 700, 12, "210 Holzkirchen") +
		pdftest.Text(72, 680, 12, "X201 Erding Flughafen") +
		pdftest.Text(72, 660, 12, "(226)")
	if _, err := ex.Text(openPDF(t, pdftest.New().AddText(content))); err != nil {
		t.Fatalf("Text failed: %v", err)
	}

	want := []string{"^210", "Holzkirchen", "^X201", "Erding", "Flughafen", "^(226)"}
	if diff := cmp.Diff(want, *seen); diff != "" {
		t.Errorf("flag observations mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseSeparatorsStillWritten(t *testing.T) {
	ex, err := New(text.WithPageStart("["), text.WithPageEnd("]"), text.WithLineSeparator("|"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	content := pdftest.Text(72, 700, 12, "a") + pdftest.Text(72, 680, 12, "b")
	got, err := ex.Text(openPDF(t, pdftest.New().AddText(content)))
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if got != "[a|b]" {
		t.Errorf("Text() = %q, want %q", got, "[a|b]")
	}
}
