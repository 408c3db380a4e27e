package filters

import (
	"errors"
	"fmt"
)

// ErrPredictor reports predictor parameters the data cannot satisfy.
var ErrPredictor = errors.New("bad predictor parameters")

// rowLayout describes the sample rows a predictor works on.
type rowLayout struct {
	colors, bpc, columns int
}

func layoutOf(p Params) rowLayout {
	return rowLayout{
		colors:  p.Int("Colors", 1),
		bpc:     p.Int("BitsPerComponent", 8),
		columns: p.Int("Columns", 1),
	}
}

func (l rowLayout) pixelBytes() int {
	n := (l.colors*l.bpc + 7) / 8
	if n < 1 {
		return 1
	}
	return n
}

func (l rowLayout) rowBytes() int {
	return (l.colors*l.bpc*l.columns + 7) / 8
}

func (l rowLayout) check() error {
	if l.colors < 1 || l.columns < 1 {
		return fmt.Errorf("%w: Colors=%d Columns=%d", ErrPredictor, l.colors, l.columns)
	}
	switch l.bpc {
	case 1, 2, 4, 8, 16:
		return nil
	}
	return fmt.Errorf("%w: BitsPerComponent=%d", ErrPredictor, l.bpc)
}

// unpredict reverses the predictor named in p. Predictor 1 and a missing
// entry leave data as is.
func unpredict(data []byte, p Params) ([]byte, error) {
	predictor := p.Int("Predictor", 1)
	switch {
	case predictor == 1:
		return data, nil
	case predictor == 2:
		l := layoutOf(p)
		if err := l.check(); err != nil {
			return nil, err
		}
		return undoTIFF(data, l)
	case predictor >= 10 && predictor <= 15:
		l := layoutOf(p)
		if err := l.check(); err != nil {
			return nil, err
		}
		return undoPNG(data, l)
	}
	return nil, fmt.Errorf("%w: Predictor=%d", ErrPredictor, predictor)
}

// undoPNG decodes rows that each start with a PNG filter type byte. The
// type byte wins over the predictor number, as PNG optimum (15) requires.
func undoPNG(data []byte, l rowLayout) ([]byte, error) {
	width := l.rowBytes()
	bpp := l.pixelBytes()
	stride := width + 1
	if len(data)%stride != 0 {
		// A truncated final row is dropped.
		data = data[:len(data)-len(data)%stride]
	}

	out := make([]byte, 0, len(data)/stride*width)
	prev := make([]byte, width)
	for off := 0; off < len(data); off += stride {
		kind, row := data[off], data[off+1:off+stride]
		cur := make([]byte, width)
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = cur[i-bpp], prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
				cur[i] = row[i]
			case 1:
				cur[i] = row[i] + left
			case 2:
				cur[i] = row[i] + up
			case 3:
				cur[i] = row[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = row[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("%w: PNG filter type %d in row %d", ErrPredictor, kind, off/stride)
			}
		}
		out = append(out, cur...)
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// undoTIFF reverses TIFF predictor 2, horizontal differencing per colour
// component. Only 8 and 16 bit components are supported.
func undoTIFF(data []byte, l rowLayout) ([]byte, error) {
	width := l.rowBytes()
	out := append([]byte(nil), data...)
	switch l.bpc {
	case 8:
		for start := 0; start+width <= len(out); start += width {
			row := out[start : start+width]
			for i := l.colors; i < len(row); i++ {
				row[i] += row[i-l.colors]
			}
		}
	case 16:
		step := 2 * l.colors
		for start := 0; start+width <= len(out); start += width {
			row := out[start : start+width]
			for i := step; i+1 < len(row); i += 2 {
				v := uint16(row[i])<<8 | uint16(row[i+1])
				v += uint16(row[i-step])<<8 | uint16(row[i-step+1])
				row[i], row[i+1] = byte(v>>8), byte(v)
			}
		}
	default:
		return nil, fmt.Errorf("%w: TIFF predictor with %d bits per component", ErrPredictor, l.bpc)
	}
	return out, nil
}
