package filters

import (
	"bytes"
	stdlzw "compress/lzw"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// LZWDecode expands LZW data and reverses any predictor.
//
// With the default EarlyChange 1 the code width grows one code early, the
// variant TIFF uses. EarlyChange 0 is the plain MSB-first LZW of
// compress/lzw.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	var r io.ReadCloser
	switch early := params.Int("EarlyChange", 1); early {
	case 1:
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	case 0:
		r = stdlzw.NewReader(bytes.NewReader(data), stdlzw.MSB, 8)
	default:
		return nil, fmt.Errorf("lzw: EarlyChange %d", early)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzw: %w", err)
	}
	return unpredict(out, params)
}
