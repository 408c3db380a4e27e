package graphicsstate

import (
	"fmt"
	"math"

	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/model"
)

// GraphicsState is the part of the PDF graphics state that affects where
// text lands and what colour it has.
type GraphicsState struct {
	CTM       model.Matrix
	LineWidth float64

	// StrokeColor is set by CS, SC, SCN, G, RG and K; FillColor by their
	// lower-case forms.
	StrokeColor Color
	FillColor   Color

	Text TextState

	saved []GraphicsState
}

// Color is a colour value in a colour space. Pattern colours also carry the
// pattern resource name.
type Color struct {
	Space      ColorSpace
	Components []float64
	Pattern    string
}

// NewColor returns the initial colour of space.
func NewColor(space ColorSpace) Color {
	return Color{Space: space, Components: space.InitialColor()}
}

// RGB converts the colour to RGB. A zero Color is black.
func (c Color) RGB() RGB {
	if c.Space == nil {
		return RGB{}
	}
	return c.Space.ToRGB(c.Components)
}

func (c Color) clone() Color {
	c.Components = append([]float64(nil), c.Components...)
	return c
}

// TextState holds the text parameters set by Tf, Tc, Tw, Tz, TL, Ts and
// Tr, and the two text matrices. Scaling is a percentage.
type TextState struct {
	Font          string
	Size          float64
	CharSpacing   float64
	WordSpacing   float64
	Scaling       float64
	Leading       float64
	Rise          float64
	RenderingMode int

	Matrix     model.Matrix // Tm
	LineMatrix model.Matrix // Tlm
}

// NewGraphicsState returns the state at the start of a page: identity
// CTM, black DeviceGray colours and 12 point text at 100% scaling.
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:         model.Identity(),
		LineWidth:   1,
		StrokeColor: NewColor(DeviceGray),
		FillColor:   NewColor(DeviceGray),
		Text: TextState{
			Size:       12,
			Scaling:    100,
			Matrix:     model.Identity(),
			LineMatrix: model.Identity(),
		},
	}
}

// Clone returns a copy of gs with an empty save stack.
func (gs *GraphicsState) Clone() *GraphicsState {
	c := gs.snapshot()
	return &c
}

func (gs *GraphicsState) snapshot() GraphicsState {
	c := *gs
	c.StrokeColor = gs.StrokeColor.clone()
	c.FillColor = gs.FillColor.clone()
	c.saved = nil
	return c
}

// Save pushes a copy of the state (q).
func (gs *GraphicsState) Save() {
	gs.saved = append(gs.saved, gs.snapshot())
}

// Restore pops the state pushed by the matching Save (Q).
func (gs *GraphicsState) Restore() error {
	n := len(gs.saved)
	if n == 0 {
		return fmt.Errorf("Q: %w", contentstream.ErrEmptyStack)
	}
	saved := gs.saved[:n-1]
	*gs = gs.saved[n-1]
	gs.saved = saved
	return nil
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int { return len(gs.saved) }

// Concat prepends m to the CTM (cm).
func (gs *GraphicsState) Concat(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFont selects a font resource and size (Tf).
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.Font = name
	gs.Text.Size = size
}

// BeginText resets both text matrices (BT).
func (gs *GraphicsState) BeginText() {
	gs.Text.Matrix = model.Identity()
	gs.Text.LineMatrix = model.Identity()
}

// SetTextMatrix replaces both text matrices (Tm).
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.Matrix = m
	gs.Text.LineMatrix = m
}

// MoveText starts a new line offset by (tx, ty) from the current one (Td).
func (gs *GraphicsState) MoveText(tx, ty float64) {
	gs.Text.LineMatrix = model.Translate(tx, ty).Multiply(gs.Text.LineMatrix)
	gs.Text.Matrix = gs.Text.LineMatrix
}

// NextLine moves down by the leading (T*).
func (gs *GraphicsState) NextLine() {
	gs.MoveText(0, -gs.Text.Leading)
}

// Advance moves the text matrix past a glyph whose displacement is w in
// thousandths of text space: horizontally for horizontal fonts, down the
// page for vertical ones. Word spacing applies only when space is set.
func (gs *GraphicsState) Advance(w float64, space, vertical bool) {
	ts := gs.Text
	d := w/1000*ts.Size + ts.CharSpacing
	if space {
		d += ts.WordSpacing
	}
	if vertical {
		gs.translate(0, -d)
		return
	}
	gs.translate(d*ts.Scaling/100, 0)
}

// Adjust applies a TJ number, in thousandths of text space. The number is
// subtracted from the horizontal coordinate, or from the vertical one for
// vertical fonts.
func (gs *GraphicsState) Adjust(n float64, vertical bool) {
	d := -n / 1000 * gs.Text.Size
	if vertical {
		gs.translate(0, d)
		return
	}
	gs.translate(d*gs.Text.Scaling/100, 0)
}

func (gs *GraphicsState) translate(tx, ty float64) {
	gs.Text.Matrix = model.Translate(tx, ty).Multiply(gs.Text.Matrix)
}

// RenderingMatrix maps glyph space, one unit per em, to device space.
func (gs *GraphicsState) RenderingMatrix() model.Matrix {
	ts := gs.Text
	params := model.Matrix{ts.Size * ts.Scaling / 100, 0, 0, ts.Size, 0, ts.Rise}
	return params.Multiply(ts.Matrix).Multiply(gs.CTM)
}

// Origin returns the device space position the next glyph is drawn at.
func (gs *GraphicsState) Origin() model.Point {
	return gs.RenderingMatrix().Transform(model.Point{})
}

// FontHeight returns the height of one em in device space, which differs
// from the Tf size when the text matrix or CTM scales.
func (gs *GraphicsState) FontHeight() float64 {
	m := gs.RenderingMatrix()
	return math.Hypot(m[2], m[3])
}
