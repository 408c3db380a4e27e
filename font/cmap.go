package font

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mvvtools/linecolors/core"
)

// CMap maps character codes to Unicode text, as a ToUnicode stream does.
//
// Codes are one to four bytes long. Declared codespace ranges decide how
// many bytes the next code takes; without any, the lengths of the mapped
// source codes are used.
type CMap struct {
	Name string

	spaces  []codespace
	chars   map[charCode]string
	ranges  []bfRange
	lengths []int // distinct source code lengths, ascending
}

type charCode struct {
	n     int
	value uint32
}

type codespace struct {
	low, high []byte
}

func (c codespace) contains(code []byte) bool {
	if len(code) != len(c.low) {
		return false
	}
	for i, b := range code {
		if b < c.low[i] || b > c.high[i] {
			return false
		}
	}
	return true
}

// bfRange maps low..high either onto consecutive destinations starting at
// base, or onto the entries of list.
type bfRange struct {
	n         int
	low, high uint32
	base      []byte
	list      []string
}

const maxRangeSize = 1 << 16

// NewCMap returns an empty CMap.
func NewCMap() *CMap {
	return &CMap{chars: make(map[charCode]string)}
}

// ParseToUnicodeCMap decodes and parses a ToUnicode stream.
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("ToUnicode: %w", err)
	}
	return parseCMapData(data)
}

func parseCMapData(data []byte) (*CMap, error) {
	cm := NewCMap()
	p := core.NewParser(data)
	err := cm.parse(p)
	if err != nil && cm.empty() {
		return nil, fmt.Errorf("cmap: %w", err)
	}
	// A damaged tail still leaves the sections read so far usable.
	return cm, nil
}

func (cm *CMap) parse(p *core.Parser) error {
	for {
		tok, err := p.Next()
		if err != nil {
			return err
		}
		switch {
		case tok.Kind == core.TokenEOF:
			return nil
		case tok.Kind == core.TokenName && tok.Value == core.Name("CMapName"):
			if next, err := p.Next(); err == nil {
				if name, ok := next.Value.(core.Name); ok {
					cm.Name = string(name)
				}
			}
		case tok.Kind == core.TokenDictStart || tok.Kind == core.TokenArrayStart:
			if _, err := p.ParseValue(tok); err != nil {
				return err
			}
		case tok.Is("begincodespacerange"):
			objs, err := section(p, "endcodespacerange")
			if err != nil {
				return err
			}
			cm.addCodespaces(objs)
		case tok.Is("beginbfchar"):
			objs, err := section(p, "endbfchar")
			if err != nil {
				return err
			}
			cm.addChars(objs)
		case tok.Is("beginbfrange"):
			objs, err := section(p, "endbfrange")
			if err != nil {
				return err
			}
			cm.addRanges(objs)
		}
	}
}

var errUnterminated = errors.New("unterminated section")

// section reads objects up to the keyword end.
func section(p *core.Parser, end string) ([]core.Object, error) {
	var objs []core.Object
	for {
		tok, err := p.Next()
		if err != nil {
			return objs, err
		}
		if tok.Kind == core.TokenEOF {
			return objs, fmt.Errorf("%w: missing %s", errUnterminated, end)
		}
		if tok.Is(end) {
			return objs, nil
		}
		obj, err := p.ParseValue(tok)
		if err != nil {
			return objs, err
		}
		objs = append(objs, obj)
	}
}

func (cm *CMap) addCodespaces(objs []core.Object) {
	for i := 0; i+1 < len(objs); i += 2 {
		low, ok1 := objs[i].(core.String)
		high, ok2 := objs[i+1].(core.String)
		if !ok1 || !ok2 || len(low) != len(high) || len(low) == 0 || len(low) > 4 {
			continue
		}
		cm.spaces = append(cm.spaces, codespace{low: []byte(low), high: []byte(high)})
	}
}

func (cm *CMap) addChars(objs []core.Object) {
	for i := 0; i+1 < len(objs); i += 2 {
		src, ok := objs[i].(core.String)
		if !ok || len(src) == 0 || len(src) > 4 {
			continue
		}
		text, ok := destination(objs[i+1])
		if !ok {
			continue
		}
		cm.chars[charCode{len(src), codeValue([]byte(src))}] = text
		cm.noteLength(len(src))
	}
}

func (cm *CMap) addRanges(objs []core.Object) {
	for i := 0; i+2 < len(objs); i += 3 {
		low, ok1 := objs[i].(core.String)
		high, ok2 := objs[i+1].(core.String)
		if !ok1 || !ok2 || len(low) != len(high) || len(low) == 0 || len(low) > 4 {
			continue
		}
		r := bfRange{n: len(low), low: codeValue([]byte(low)), high: codeValue([]byte(high))}
		if r.high < r.low || r.high-r.low >= maxRangeSize {
			continue
		}
		switch dst := objs[i+2].(type) {
		case core.String:
			r.base = []byte(dst)
		case core.Array:
			for _, item := range dst {
				text, _ := destination(item)
				r.list = append(r.list, text)
			}
		default:
			continue
		}
		cm.ranges = append(cm.ranges, r)
		cm.noteLength(r.n)
	}
}

func (cm *CMap) noteLength(n int) {
	i := sort.SearchInts(cm.lengths, n)
	if i < len(cm.lengths) && cm.lengths[i] == n {
		return
	}
	cm.lengths = append(cm.lengths, 0)
	copy(cm.lengths[i+1:], cm.lengths[i:])
	cm.lengths[i] = n
}

func (cm *CMap) empty() bool {
	return len(cm.chars) == 0 && len(cm.ranges) == 0
}

// destination converts a bfchar or bfrange target: UTF-16BE bytes or a
// glyph name.
func destination(obj core.Object) (string, bool) {
	switch v := obj.(type) {
	case core.String:
		return unicodeText([]byte(v)), true
	case core.Name:
		if r, ok := GlyphToRune(string(v)); ok {
			return string(r), true
		}
	}
	return "", false
}

// unicodeText decodes a destination string. A single byte is taken as a
// Latin-1 character, anything longer as UTF-16BE with an optional BOM.
func unicodeText(b []byte) string {
	switch {
	case len(b) == 0:
		return ""
	case len(b) == 1:
		return string(rune(b[0]))
	case b[0] == 0xFE && b[1] == 0xFF:
		b = b[2:]
	}
	if len(b)%2 == 1 {
		b = append(b[:len(b):len(b)], 0)
	}
	return DecodeUTF16BE(b)
}

// codeValue reads a big-endian code of up to four bytes.
func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// Lookup returns the text for code, or "" when it has no mapping. The
// shortest source length that maps code wins.
func (cm *CMap) Lookup(code uint32) string {
	if cm == nil {
		return ""
	}
	for n := 1; n <= 4; n++ {
		if n < 4 && code >= 1<<(8*n) {
			continue
		}
		if s, ok := cm.find(n, code); ok {
			return s
		}
	}
	return ""
}

// lookup maps one code of exactly len(code) bytes.
func (cm *CMap) lookup(code []byte) (string, bool) {
	return cm.find(len(code), codeValue(code))
}

func (cm *CMap) find(n int, code uint32) (string, bool) {
	if s, ok := cm.chars[charCode{n, code}]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if r.n != n || code < r.low || code > r.high {
			continue
		}
		offset := code - r.low
		if r.list != nil {
			if int(offset) < len(r.list) {
				return r.list[offset], true
			}
			return "", false
		}
		dst := append([]byte(nil), r.base...)
		if len(dst) > 0 {
			dst[len(dst)-1] += byte(offset)
		}
		return unicodeText(dst), true
	}
	return "", false
}

// codeLength returns how many bytes the code at the start of data takes.
func (cm *CMap) codeLength(data []byte) int {
	if len(cm.spaces) > 0 {
		for n := 1; n <= 4 && n <= len(data); n++ {
			for _, sp := range cm.spaces {
				if sp.contains(data[:n]) {
					return n
				}
			}
		}
		// Outside every codespace: consume as many bytes as the shortest
		// range would.
		n := len(cm.spaces[0].low)
		for _, sp := range cm.spaces[1:] {
			n = min(n, len(sp.low))
		}
		return min(n, len(data))
	}

	for _, n := range cm.lengths {
		if n > len(data) {
			break
		}
		if _, ok := cm.lookup(data[:n]); ok {
			return n
		}
	}
	if len(cm.lengths) > 0 {
		return min(cm.lengths[0], len(data))
	}
	return 1
}

// LookupString maps a whole byte string. Unmapped single-byte codes stand
// for themselves; other unmapped codes are dropped.
func (cm *CMap) LookupString(data []byte) string {
	if cm == nil {
		return string(data)
	}
	var sb strings.Builder
	for len(data) > 0 {
		n := cm.codeLength(data)
		if s, ok := cm.lookup(data[:n]); ok {
			sb.WriteString(s)
		} else if n == 1 {
			sb.WriteRune(rune(data[0]))
		}
		data = data[n:]
	}
	return sb.String()
}
