package core

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// XRefEntryType is the kind of a cross-reference entry.
type XRefEntryType int

const (
	XRefEntryFree         XRefEntryType = iota // not in use
	XRefEntryUncompressed                      // at a byte offset
	XRefEntryCompressed                        // inside an object stream
)

func (t XRefEntryType) String() string {
	switch t {
	case XRefEntryFree:
		return "free"
	case XRefEntryUncompressed:
		return "uncompressed"
	case XRefEntryCompressed:
		return "compressed"
	}
	return fmt.Sprintf("XRefEntryType(%d)", int(t))
}

// XRefEntry locates one object.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64 // uncompressed objects
	Generation int
	Stream     int // object stream of a compressed object
	Index      int // position inside that stream
}

// InUse reports whether the entry points at an object.
func (e XRefEntry) InUse() bool { return e.Type != XRefEntryFree }

// XRefTable is the merged index of a file.
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
	// Rebuilt is set when the table was recovered by scanning the file.
	Rebuilt bool
}

func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]XRefEntry), Trailer: Dict{}}
}

// Get returns the entry of object num.
func (x *XRefTable) Get(num int) (XRefEntry, bool) {
	e, ok := x.Entries[num]
	return e, ok
}

// Size returns the number of entries.
func (x *XRefTable) Size() int { return len(x.Entries) }

// merge adds the entries and trailer keys of an older section. Entries
// already present come from a newer section and stay.
func (x *XRefTable) merge(older *XRefTable) {
	for num, e := range older.Entries {
		if _, ok := x.Entries[num]; !ok {
			x.Entries[num] = e
		}
	}
	for k, v := range older.Trailer {
		if !x.Trailer.Has(k) {
			x.Trailer[k] = v
		}
	}
}

// ErrNoXRef reports a file whose cross-reference data cannot be found.
var ErrNoXRef = errors.New("no cross-reference data")

// ReadXRef reads the cross-reference data of a whole file: the section
// named by the last startxref, hybrid /XRefStm sections and every older
// section on the /Prev chain. Newer sections win. When the chain is
// unusable the table is rebuilt by scanning for objects.
func ReadXRef(data []byte) (*XRefTable, error) {
	table, err := readXRefChain(data)
	if err == nil && table.Trailer.Has("Root") {
		return table, nil
	}
	rebuilt, rerr := Rebuild(data)
	if rerr != nil {
		if err == nil {
			err = fmt.Errorf("%w: trailer has no /Root", ErrNoXRef)
		}
		return nil, fmt.Errorf("%w; rebuild: %v", err, rerr)
	}
	return rebuilt, nil
}

func readXRefChain(data []byte) (*XRefTable, error) {
	offset, err := findStartXRef(data)
	if err != nil {
		return nil, err
	}

	table := NewXRefTable()
	seen := make(map[int]bool)
	for {
		if seen[offset] {
			break
		}
		seen[offset] = true

		section, err := readSection(data, offset)
		if err != nil {
			if len(seen) == 1 {
				return nil, err
			}
			// A broken older section leaves the newer ones usable.
			break
		}
		if stm, ok := section.Trailer.GetInt("XRefStm"); ok && !seen[int(stm)] {
			seen[int(stm)] = true
			if hidden, err := readSection(data, int(stm)); err == nil {
				section.merge(&XRefTable{Entries: hidden.Entries})
			}
		}
		table.merge(section)

		prev, ok := section.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int(prev)
	}
	delete(table.Trailer, "Prev")
	delete(table.Trailer, "XRefStm")
	return table, nil
}

var startxref = []byte("startxref")

// findStartXRef returns the offset after the last startxref keyword.
func findStartXRef(data []byte) (int, error) {
	tail := data
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	idx := bytes.LastIndex(tail, startxref)
	if idx < 0 {
		return 0, fmt.Errorf("%w: startxref not found", ErrNoXRef)
	}
	s := NewScanner(tail[idx+len(startxref):])
	tok, err := s.Next()
	if err != nil {
		return 0, fmt.Errorf("%w: startxref: %v", ErrNoXRef, err)
	}
	off, ok := tok.Value.(Int)
	if tok.Kind != TokenNumber || !ok || off < 0 || int(off) >= len(data) {
		return 0, fmt.Errorf("%w: bad startxref offset %s", ErrNoXRef, tok)
	}
	return int(off), nil
}

// readSection reads a classic table or a cross-reference stream.
func readSection(data []byte, offset int) (*XRefTable, error) {
	if offset < 0 || offset >= len(data) {
		return nil, fmt.Errorf("%w: section offset %d outside file", ErrNoXRef, offset)
	}
	p := NewParser(data)
	p.Seek(offset)
	tok, err := p.Next()
	if err != nil {
		return nil, err
	}
	if tok.Is("xref") {
		return readClassic(p)
	}
	p.Unread(tok)
	return readXRefStream(p)
}

// readClassic parses the subsections after the xref keyword and the
// trailer. Entries are read as tokens, so any line ending is accepted.
func readClassic(p *Parser) (*XRefTable, error) {
	table := NewXRefTable()
	for {
		tok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if tok.Is("trailer") {
			break
		}
		first, ok := tok.Value.(Int)
		if tok.Kind != TokenNumber || !ok {
			return nil, fmt.Errorf("%w: xref subsection starts with %s at offset %d", ErrSyntax, tok, tok.Pos)
		}
		count, err := p.nonNegativeInt("xref entry count")
		if err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			e, err := classicEntry(p)
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", int(first)+i, err)
			}
			num := int(first) + i
			if _, dup := table.Entries[num]; !dup {
				table.Entries[num] = e
			}
		}
	}

	trailer, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	dict, ok := trailer.(Dict)
	if !ok {
		return nil, fmt.Errorf("%w: trailer is %T", ErrSyntax, trailer)
	}
	table.Trailer = dict
	return table, nil
}

func classicEntry(p *Parser) (XRefEntry, error) {
	off, err := p.nonNegativeInt("offset")
	if err != nil {
		return XRefEntry{}, err
	}
	gen, err := p.nonNegativeInt("generation")
	if err != nil {
		return XRefEntry{}, err
	}
	flag, err := p.Next()
	if err != nil {
		return XRefEntry{}, err
	}
	switch {
	case flag.Is("n"):
		return XRefEntry{Type: XRefEntryUncompressed, Offset: int64(off), Generation: gen}, nil
	case flag.Is("f"):
		return XRefEntry{Type: XRefEntryFree, Generation: gen}, nil
	}
	return XRefEntry{}, fmt.Errorf("%w: xref flag %s at offset %d", ErrSyntax, flag, flag.Pos)
}

var (
	objHeader = regexp.MustCompile(`(?:^|[\r\n\s])(\d{1,10})[ \t\r\n\f\x00]+(\d{1,5})[ \t\r\n\f\x00]+obj\b`)
	trailerKw = []byte("trailer")
)

// Rebuild recovers the cross-reference data by scanning for "n g obj"
// headers and unpacking the object streams it finds. Later definitions of
// an object replace earlier ones. The
// trailer comes from the last trailer dictionary, the last
// cross-reference stream or, failing both, the last catalog found.
func Rebuild(data []byte) (*XRefTable, error) {
	table := NewXRefTable()
	table.Rebuilt = true

	var catalog int
	packed := make(map[int]XRefEntry)
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		table.Entries[num] = XRefEntry{Type: XRefEntryUncompressed, Offset: int64(m[2]), Generation: gen}

		p := NewParser(data)
		p.Seek(m[2])
		obj, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		switch v := obj.Object.(type) {
		case Dict:
			if typ, _ := v.GetName("Type"); typ == "Catalog" {
				catalog = num
			}
		case *Stream:
			switch typ, _ := v.Dict.GetName("Type"); {
			case typ == "XRef" && v.Dict.Has("Root"):
				table.Trailer = trailerKeys(v.Dict)
			case typ == "ObjStm":
				objStm, err := NewObjectStream(v)
				if err != nil {
					continue
				}
				for i, inner := range objStm.ObjectNumbers() {
					packed[inner] = XRefEntry{Type: XRefEntryCompressed, Stream: num, Index: i}
				}
			}
		}
	}
	// Objects found at the top level win over packed copies.
	for num, e := range packed {
		if _, ok := table.Entries[num]; !ok {
			table.Entries[num] = e
		}
	}

	if idx := bytes.LastIndex(data, trailerKw); idx >= 0 {
		p := NewParser(data)
		p.Seek(idx + len(trailerKw))
		if obj, err := p.ParseObject(); err == nil {
			if dict, ok := obj.(Dict); ok && dict.Has("Root") {
				table.Trailer = trailerKeys(dict)
			}
		}
	}
	if !table.Trailer.Has("Root") && catalog > 0 {
		table.Trailer["Root"] = IndirectRef{Number: catalog}
	}
	if !table.Trailer.Has("Root") {
		return nil, fmt.Errorf("%w: no catalog found", ErrNoXRef)
	}
	return table, nil
}

// trailerKeys keeps the document-level keys of a trailer or
// cross-reference stream dictionary.
func trailerKeys(d Dict) Dict {
	out := Dict{}
	for _, k := range []string{"Root", "Info", "ID", "Encrypt", "Size"} {
		if v, ok := d[k]; ok {
			out[k] = v
		}
	}
	return out
}
