package core

import (
	"errors"
	"fmt"

	"github.com/mvvtools/linecolors/internal/filters"
)

// ErrUnsupportedFilter is returned for filters that cannot be decoded.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// Decode applies the stream's /Filter chain with the matching
// /DecodeParms. Image codecs (DCT, JPX, JBIG2) are left encoded; the data
// comes back as stored once such a filter is reached.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range names {
		var p filters.Params
		if i < len(params) {
			p = params[i]
		}
		switch name {
		case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode":
			return data, nil
		}
		data, err = decodeFilter(name, data, p)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, nil
}

// filterChain normalises /Filter and /DecodeParms to parallel slices.
func (s *Stream) filterChain() ([]string, []filters.Params, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, obj := range f {
			n, ok := obj.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("%w: filter %d is %v", ErrSyntax, i, obj)
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("%w: /Filter is %v", ErrSyntax, f)
	}

	params := make([]filters.Params, len(names))
	switch dp := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = toParams(dp)
	case Array:
		for i := 0; i < len(params) && i < len(dp); i++ {
			if d, ok := dp[i].(Dict); ok {
				params[i] = toParams(d)
			}
		}
	}
	return names, params, nil
}

func decodeFilter(name string, data []byte, p filters.Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, p)
	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, p)
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, p)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
}

// toParams converts decode parameters to plain Go values.
func toParams(d Dict) filters.Params {
	p := make(filters.Params, len(d))
	for k, v := range d {
		switch v := v.(type) {
		case Int:
			p[k] = int(v)
		case Real:
			p[k] = float64(v)
		case Bool:
			p[k] = bool(v)
		case Name:
			p[k] = string(v)
		case String:
			p[k] = string(v)
		}
	}
	return p
}
