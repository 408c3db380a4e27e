package core

import "fmt"

// readXRefStream parses a PDF 1.5 cross-reference stream: /W gives the
// byte width of the three fields and /Index the object ranges, by default
// [0 Size]. Its dictionary doubles as the trailer.
func readXRefStream(p *Parser) (*XRefTable, error) {
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("%w: xref offset points at %T, not a stream", ErrSyntax, obj.Object)
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("%w: xref stream has /Type /%s", ErrSyntax, typ)
	}

	widths, err := fieldWidths(stream.Dict)
	if err != nil {
		return nil, err
	}
	ranges, err := indexRanges(stream.Dict)
	if err != nil {
		return nil, err
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = stream.Dict
	rowLen := widths[0] + widths[1] + widths[2]
	row := 0
	for _, r := range ranges {
		for num := r[0]; num < r[0]+r[1]; num++ {
			if (row+1)*rowLen > len(data) {
				return table, nil
			}
			fields := data[row*rowLen : (row+1)*rowLen]
			row++

			kind := uint64(1)
			if widths[0] > 0 {
				kind = readField(fields[:widths[0]])
			}
			f2 := readField(fields[widths[0] : widths[0]+widths[1]])
			f3 := readField(fields[widths[0]+widths[1]:])

			if _, dup := table.Entries[num]; dup {
				continue
			}
			switch kind {
			case 0:
				table.Entries[num] = XRefEntry{Type: XRefEntryFree, Generation: int(f3)}
			case 1:
				table.Entries[num] = XRefEntry{Type: XRefEntryUncompressed, Offset: int64(f2), Generation: int(f3)}
			case 2:
				table.Entries[num] = XRefEntry{Type: XRefEntryCompressed, Stream: int(f2), Index: int(f3)}
			}
			// Unknown types are references to the null object.
		}
	}
	return table, nil
}

func fieldWidths(d Dict) ([3]int, error) {
	var w [3]int
	arr, ok := d.GetArray("W")
	if !ok || arr.Len() != 3 {
		return w, fmt.Errorf("%w: xref stream /W is %v", ErrSyntax, d.Get("W"))
	}
	for i := range w {
		n, ok := arr.GetInt(i)
		if !ok || n < 0 || n > 8 {
			return w, fmt.Errorf("%w: xref stream /W is %v", ErrSyntax, arr)
		}
		w[i] = int(n)
	}
	if w[1] == 0 {
		return w, fmt.Errorf("%w: xref stream /W has no offset field", ErrSyntax)
	}
	return w, nil
}

func indexRanges(d Dict) ([][2]int, error) {
	arr, ok := d.GetArray("Index")
	if !ok {
		size, ok := d.GetInt("Size")
		if !ok || size < 0 {
			return nil, fmt.Errorf("%w: xref stream has no /Size", ErrSyntax)
		}
		return [][2]int{{0, int(size)}}, nil
	}
	if arr.Len()%2 != 0 {
		return nil, fmt.Errorf("%w: odd /Index %v", ErrSyntax, arr)
	}
	var out [][2]int
	for i := 0; i < arr.Len(); i += 2 {
		first, ok1 := arr.GetInt(i)
		count, ok2 := arr.GetInt(i + 1)
		if !ok1 || !ok2 || first < 0 || count < 0 {
			return nil, fmt.Errorf("%w: /Index %v", ErrSyntax, arr)
		}
		out = append(out, [2]int{int(first), int(count)})
	}
	return out, nil
}

// readField decodes a big-endian unsigned field.
func readField(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
