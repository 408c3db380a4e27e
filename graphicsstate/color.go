package graphicsstate

import (
	"fmt"
	"math"

	"github.com/mvvtools/linecolors/contentstream"
	"github.com/mvvtools/linecolors/core"
)

// RGB is a colour with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// RGB8 returns the colour as 8-bit channels.
func (c RGB) RGB8() (r, g, b uint8) {
	return to8(c.R), to8(c.G), to8(c.B)
}

// Hex returns the colour as "#rrggbb".
func (c RGB) Hex() string {
	r, g, b := c.RGB8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ColorSpace converts colour components to RGB.
type ColorSpace interface {
	Name() string
	NumComponents() int
	InitialColor() []float64
	ToRGB(components []float64) RGB
}

// Device colour spaces.
var (
	DeviceGray ColorSpace = deviceGray{}
	DeviceRGB  ColorSpace = deviceRGB{}
	DeviceCMYK ColorSpace = deviceCMYK{}
)

type deviceGray struct{}

func (deviceGray) Name() string            { return "DeviceGray" }
func (deviceGray) NumComponents() int      { return 1 }
func (deviceGray) InitialColor() []float64 { return []float64{0} }
func (deviceGray) ToRGB(c []float64) RGB {
	v := component(c, 0)
	return RGB{v, v, v}
}

type deviceRGB struct{}

func (deviceRGB) Name() string            { return "DeviceRGB" }
func (deviceRGB) NumComponents() int      { return 3 }
func (deviceRGB) InitialColor() []float64 { return []float64{0, 0, 0} }
func (deviceRGB) ToRGB(c []float64) RGB {
	return RGB{component(c, 0), component(c, 1), component(c, 2)}
}

type deviceCMYK struct{}

func (deviceCMYK) Name() string            { return "DeviceCMYK" }
func (deviceCMYK) NumComponents() int      { return 4 }
func (deviceCMYK) InitialColor() []float64 { return []float64{0, 0, 0, 1} }
func (deviceCMYK) ToRGB(c []float64) RGB {
	k := 1 - component(c, 3)
	return RGB{
		(1 - component(c, 0)) * k,
		(1 - component(c, 1)) * k,
		(1 - component(c, 2)) * k,
	}
}

// component returns c[i] clamped to [0, 1], or 0 when missing.
func component(c []float64, i int) float64 {
	if i >= len(c) {
		return 0
	}
	return clamp01(c[i])
}

// CalGray and CalRGB are approximated by their device counterparts.
type CalGray struct{ Gamma float64 }

func (CalGray) Name() string             { return "CalGray" }
func (CalGray) NumComponents() int       { return 1 }
func (CalGray) InitialColor() []float64  { return []float64{0} }
func (cs CalGray) ToRGB(c []float64) RGB { return DeviceGray.ToRGB(c) }

type CalRGB struct{}

func (CalRGB) Name() string            { return "CalRGB" }
func (CalRGB) NumComponents() int      { return 3 }
func (CalRGB) InitialColor() []float64 { return []float64{0, 0, 0} }
func (CalRGB) ToRGB(c []float64) RGB   { return DeviceRGB.ToRGB(c) }

// Lab is the CIE L*a*b* space. Range holds [amin amax bmin bmax].
type Lab struct {
	WhitePoint [3]float64
	Range      [4]float64
}

func newLab() *Lab {
	return &Lab{
		WhitePoint: [3]float64{0.9505, 1, 1.089},
		Range:      [4]float64{-100, 100, -100, 100},
	}
}

func (*Lab) Name() string       { return "Lab" }
func (*Lab) NumComponents() int { return 3 }

func (cs *Lab) InitialColor() []float64 {
	a := math.Max(cs.Range[0], math.Min(0, cs.Range[1]))
	b := math.Max(cs.Range[2], math.Min(0, cs.Range[3]))
	return []float64{0, a, b}
}

func (cs *Lab) ToRGB(c []float64) RGB {
	if len(c) < 3 {
		return RGB{}
	}
	fy := (c[0] + 16) / 116
	fx := fy + c[1]/500
	fz := fy - c[2]/200

	x := cs.WhitePoint[0] * labInverse(fx)
	y := cs.WhitePoint[1] * labInverse(fy)
	z := cs.WhitePoint[2] * labInverse(fz)

	return RGB{
		srgbGamma(3.2406*x - 1.5372*y - 0.4986*z),
		srgbGamma(-0.9689*x + 1.8758*y + 0.0415*z),
		srgbGamma(0.0557*x - 0.2040*y + 1.0570*z),
	}
}

func labInverse(t float64) float64 {
	const delta = 6.0 / 29
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29)
}

func srgbGamma(v float64) float64 {
	if v <= 0.0031308 {
		return clamp01(12.92 * v)
	}
	return clamp01(1.055*math.Pow(v, 1/2.4) - 0.055)
}

// ICCBased colours are converted through the alternate space; the profile
// itself is not interpreted.
type ICCBased struct {
	N         int
	Alternate ColorSpace
}

func (*ICCBased) Name() string               { return "ICCBased" }
func (cs *ICCBased) NumComponents() int      { return cs.N }
func (cs *ICCBased) InitialColor() []float64 { return cs.Alternate.InitialColor() }
func (cs *ICCBased) ToRGB(c []float64) RGB   { return cs.Alternate.ToRGB(c) }

// Indexed maps a single index through a lookup table into Base.
type Indexed struct {
	Base   ColorSpace
	HiVal  int
	Lookup []byte
}

func (*Indexed) Name() string            { return "Indexed" }
func (*Indexed) NumComponents() int      { return 1 }
func (*Indexed) InitialColor() []float64 { return []float64{0} }

func (cs *Indexed) ToRGB(c []float64) RGB {
	idx := 0
	if len(c) > 0 {
		idx = int(math.Round(c[0]))
	}
	if idx < 0 {
		idx = 0
	}
	if idx > cs.HiVal {
		idx = cs.HiVal
	}

	n := cs.Base.NumComponents()
	start := idx * n
	if start+n > len(cs.Lookup) {
		return RGB{}
	}

	comps := make([]float64, n)
	lab, isLab := cs.Base.(*Lab)
	for i := 0; i < n; i++ {
		v := float64(cs.Lookup[start+i]) / 255
		if isLab {
			// Lab lookup bytes span the component ranges
			switch i {
			case 0:
				v *= 100
			case 1:
				v = lab.Range[0] + v*(lab.Range[1]-lab.Range[0])
			case 2:
				v = lab.Range[2] + v*(lab.Range[3]-lab.Range[2])
			}
		}
		comps[i] = v
	}
	return cs.Base.ToRGB(comps)
}

// Separation and DeviceN tints go through the tint transform into the
// alternate space. Only exponential (type 2) transforms are evaluated;
// other transforms fall back to treating the tint as black ink.
type Separation struct {
	Colorants []string
	Alternate ColorSpace
	Tint      *ExponentialFunc
	deviceN   bool
}

func (cs *Separation) Name() string {
	if cs.deviceN {
		return "DeviceN"
	}
	return "Separation"
}

func (cs *Separation) NumComponents() int { return len(cs.Colorants) }

func (cs *Separation) InitialColor() []float64 {
	c := make([]float64, len(cs.Colorants))
	for i := range c {
		c[i] = 1
	}
	return c
}

func (cs *Separation) ToRGB(c []float64) RGB {
	if cs.Tint != nil && len(c) > 0 {
		return cs.Alternate.ToRGB(cs.Tint.Eval(c[0]))
	}
	// Approximate: the darkest tint as gray
	tint := 0.0
	for i := range c {
		tint = math.Max(tint, component(c, i))
	}
	v := 1 - tint
	return RGB{v, v, v}
}

// ExponentialFunc is a PDF type 2 function: C0 + x^N * (C1 - C0).
type ExponentialFunc struct {
	C0, C1 []float64
	N      float64
}

// Eval evaluates the function for one input.
func (f *ExponentialFunc) Eval(x float64) []float64 {
	x = clamp01(x)
	p := math.Pow(x, f.N)
	out := make([]float64, len(f.C0))
	for i := range f.C0 {
		c1 := 1.0
		if i < len(f.C1) {
			c1 = f.C1[i]
		}
		out[i] = f.C0[i] + p*(c1-f.C0[i])
	}
	return out
}

// Pattern colours carry a pattern name and, for uncoloured patterns, the
// components of the underlying space.
type Pattern struct {
	Underlying ColorSpace
}

func (*Pattern) Name() string { return "Pattern" }

func (cs *Pattern) NumComponents() int {
	if cs.Underlying != nil {
		return cs.Underlying.NumComponents()
	}
	return 0
}

func (*Pattern) InitialColor() []float64 { return nil }

func (cs *Pattern) ToRGB(c []float64) RGB {
	if cs.Underlying != nil && len(c) > 0 {
		return cs.Underlying.ToRGB(c)
	}
	return RGB{}
}

// ColorSpaceLookup resolves a colour space operand name.
type ColorSpaceLookup func(name string) (ColorSpace, error)

// Resolver resolves indirect objects.
type Resolver func(obj core.Object) (core.Object, error)

// NewResourceLookup resolves names against a resources dictionary's
// /ColorSpace entry. Device names and Pattern never need a resource.
func NewResourceLookup(resources core.Dict, resolve Resolver) ColorSpaceLookup {
	if resolve == nil {
		resolve = func(obj core.Object) (core.Object, error) { return obj, nil }
	}
	cache := make(map[string]ColorSpace)

	return func(name string) (ColorSpace, error) {
		switch name {
		case "DeviceGray", "G":
			return DeviceGray, nil
		case "DeviceRGB", "RGB":
			return DeviceRGB, nil
		case "DeviceCMYK", "CMYK":
			return DeviceCMYK, nil
		case "Pattern":
			return &Pattern{}, nil
		}

		if cs, ok := cache[name]; ok {
			return cs, nil
		}

		if resources != nil {
			csDictObj, err := resolve(resources.Get("ColorSpace"))
			if err == nil {
				if csDict, ok := csDictObj.(core.Dict); ok && csDict.Has(name) {
					cs, err := ParseColorSpace(csDict.Get(name), resolve)
					if err != nil {
						return nil, fmt.Errorf("colour space /%s: %w", name, err)
					}
					cache[name] = cs
					return cs, nil
				}
			}
		}

		switch name {
		case "CalGray":
			return CalGray{Gamma: 1}, nil
		case "CalRGB":
			return CalRGB{}, nil
		case "Lab":
			return newLab(), nil
		}

		return nil, fmt.Errorf("colour space /%s: %w", name, contentstream.ErrMissingResource)
	}
}

// ParseColorSpace builds a ColorSpace from a name or colour space array.
func ParseColorSpace(obj core.Object, resolve Resolver) (ColorSpace, error) {
	if resolve == nil {
		resolve = func(obj core.Object) (core.Object, error) { return obj, nil }
	}
	obj, err := resolve(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case core.Name:
		return NewResourceLookup(nil, resolve)(string(v))
	case core.Array:
		return parseColorSpaceArray(v, resolve)
	default:
		return nil, fmt.Errorf("invalid colour space type %T", obj)
	}
}

func parseColorSpaceArray(arr core.Array, resolve Resolver) (ColorSpace, error) {
	if len(arr) == 0 {
		return nil, fmt.Errorf("empty colour space array")
	}
	family, ok := arr[0].(core.Name)
	if !ok {
		return nil, fmt.Errorf("colour space family is %T", arr[0])
	}

	param := func(i int) (core.Object, error) {
		if i >= len(arr) {
			return nil, fmt.Errorf("/%s: %w", family, contentstream.ErrMissingOperand)
		}
		return resolve(arr[i])
	}

	switch family {
	case "DeviceGray", "DeviceRGB", "DeviceCMYK", "Pattern":
		if family == "Pattern" && len(arr) > 1 {
			base, err := ParseColorSpace(arr[1], resolve)
			if err != nil {
				return nil, err
			}
			return &Pattern{Underlying: base}, nil
		}
		return NewResourceLookup(nil, resolve)(string(family))

	case "CalGray":
		return CalGray{Gamma: 1}, nil

	case "CalRGB":
		return CalRGB{}, nil

	case "Lab":
		lab := newLab()
		if obj, err := param(1); err == nil {
			if d, ok := obj.(core.Dict); ok {
				readNumbers(d.Get("WhitePoint"), lab.WhitePoint[:])
				readNumbers(d.Get("Range"), lab.Range[:])
			}
		}
		return lab, nil

	case "ICCBased":
		obj, err := param(1)
		if err != nil {
			return nil, err
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("/ICCBased profile is %T", obj)
		}
		n, _ := stream.Dict.GetInt("N")
		icc := &ICCBased{N: int(n)}
		if alt := stream.Dict.Get("Alternate"); alt != nil {
			if icc.Alternate, err = ParseColorSpace(alt, resolve); err != nil {
				return nil, err
			}
		}
		if icc.Alternate == nil {
			switch n {
			case 1:
				icc.Alternate = DeviceGray
			case 4:
				icc.Alternate = DeviceCMYK
			default:
				icc.N = 3
				icc.Alternate = DeviceRGB
			}
		}
		return icc, nil

	case "Indexed", "I":
		baseObj, err := param(1)
		if err != nil {
			return nil, err
		}
		base, err := ParseColorSpace(baseObj, resolve)
		if err != nil {
			return nil, err
		}
		hiObj, err := param(2)
		if err != nil {
			return nil, err
		}
		hival, ok := number(hiObj)
		if !ok {
			return nil, fmt.Errorf("/Indexed hival is %T", hiObj)
		}
		lookupObj, err := param(3)
		if err != nil {
			return nil, err
		}
		var lookup []byte
		switch l := lookupObj.(type) {
		case core.String:
			lookup = []byte(l)
		case *core.Stream:
			if lookup, err = l.Decode(); err != nil {
				return nil, fmt.Errorf("/Indexed lookup: %w", err)
			}
		default:
			return nil, fmt.Errorf("/Indexed lookup is %T", lookupObj)
		}
		return &Indexed{Base: base, HiVal: int(hival), Lookup: lookup}, nil

	case "Separation", "DeviceN":
		namesObj, err := param(1)
		if err != nil {
			return nil, err
		}
		sep := &Separation{deviceN: family == "DeviceN"}
		switch n := namesObj.(type) {
		case core.Name:
			sep.Colorants = []string{string(n)}
		case core.Array:
			for _, item := range n {
				if name, ok := item.(core.Name); ok {
					sep.Colorants = append(sep.Colorants, string(name))
				}
			}
		}
		if len(sep.Colorants) == 0 {
			sep.Colorants = []string{"All"}
		}
		altObj, err := param(2)
		if err != nil {
			return nil, err
		}
		if sep.Alternate, err = ParseColorSpace(altObj, resolve); err != nil {
			return nil, err
		}
		if fnObj, err := param(3); err == nil {
			sep.Tint = parseExponential(fnObj)
		}
		return sep, nil
	}

	return nil, fmt.Errorf("colour space /%s: %w", family, contentstream.ErrMissingResource)
}

func parseExponential(obj core.Object) *ExponentialFunc {
	var d core.Dict
	switch v := obj.(type) {
	case core.Dict:
		d = v
	case *core.Stream:
		d = v.Dict
	default:
		return nil
	}
	if t, _ := d.GetInt("FunctionType"); t != 2 {
		return nil
	}

	f := &ExponentialFunc{C0: []float64{0}, C1: []float64{1}, N: 1}
	if arr, ok := d.GetArray("C0"); ok {
		f.C0 = make([]float64, len(arr))
		readNumbers(arr, f.C0)
	}
	if arr, ok := d.GetArray("C1"); ok {
		f.C1 = make([]float64, len(arr))
		readNumbers(arr, f.C1)
	}
	if n, ok := number(d.Get("N")); ok {
		f.N = n
	}
	return f
}

func readNumbers(obj core.Object, dst []float64) {
	arr, ok := obj.(core.Array)
	if !ok {
		return
	}
	for i := 0; i < len(arr) && i < len(dst); i++ {
		if v, ok := number(arr[i]); ok {
			dst[i] = v
		}
	}
}

func number(obj core.Object) (float64, bool) {
	switch v := obj.(type) {
	case core.Int:
		return float64(v), true
	case core.Real:
		return float64(v), true
	}
	return 0, false
}
