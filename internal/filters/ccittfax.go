package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes Group 3 or Group 4 fax data into packed 1-bit
// rows. A negative K selects Group 4.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	sub := ccitt.Group3
	if params.Int("K", 0) < 0 {
		sub = ccitt.Group4
	}
	rows := params.Int("Rows", 0)
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}
	opts := &ccitt.Options{Invert: params.Bool("BlackIs1", false)}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sub, params.Int("Columns", 1728), rows, opts)
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ccittfax: %w", err)
	}
	return out, nil
}
