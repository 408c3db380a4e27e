package core

import "fmt"

// ObjectStream gives access to the objects packed in a /Type /ObjStm
// stream. The header of N pairs "number offset" precedes the objects;
// offsets count from /First.
type ObjectStream struct {
	data    []byte
	first   int
	numbers []int
	offsets []int
	extends *IndirectRef
}

// NewObjectStream decodes s and reads its header.
func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if typ, _ := s.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("%w: object stream has /Type /%s", ErrSyntax, typ)
	}
	n, ok := s.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: object stream /N is %v", ErrSyntax, s.Dict.Get("N"))
	}
	first, ok := s.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("%w: object stream /First is %v", ErrSyntax, s.Dict.Get("First"))
	}
	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("object stream: %w", err)
	}
	if int(first) > len(data) {
		return nil, fmt.Errorf("%w: object stream /First %d past %d bytes", ErrSyntax, first, len(data))
	}

	stm := &ObjectStream{data: data, first: int(first)}
	if ref, ok := s.Dict.GetIndirectRef("Extends"); ok {
		stm.extends = &ref
	}

	header := NewScanner(data[:first])
	for i := 0; i < int(n); i++ {
		num, err1 := header.Next()
		off, err2 := header.Next()
		if err1 != nil || err2 != nil || num.Kind != TokenNumber || off.Kind != TokenNumber {
			return nil, fmt.Errorf("%w: object stream header entry %d", ErrSyntax, i)
		}
		a, ok1 := num.Value.(Int)
		b, ok2 := off.Value.(Int)
		if !ok1 || !ok2 || a < 0 || b < 0 {
			return nil, fmt.Errorf("%w: object stream header entry %d", ErrSyntax, i)
		}
		stm.numbers = append(stm.numbers, int(a))
		stm.offsets = append(stm.offsets, int(b))
	}
	return stm, nil
}

// Len returns the number of packed objects.
func (stm *ObjectStream) Len() int { return len(stm.numbers) }

// ObjectNumbers lists the packed object numbers in header order.
func (stm *ObjectStream) ObjectNumbers() []int {
	return append([]int(nil), stm.numbers...)
}

// Extends returns the object stream this one extends, if any.
func (stm *ObjectStream) Extends() (IndirectRef, bool) {
	if stm.extends == nil {
		return IndirectRef{}, false
	}
	return *stm.extends, true
}

// Object returns the object at header position index, which must hold
// object num. Packed objects are never streams.
func (stm *ObjectStream) Object(num, index int) (Object, error) {
	if index < 0 || index >= len(stm.numbers) || stm.numbers[index] != num {
		index = stm.find(num)
	}
	if index < 0 {
		return nil, fmt.Errorf("object %d is not in this object stream", num)
	}
	p := NewParser(stm.data)
	p.Seek(stm.first + stm.offsets[index])
	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("packed object %d: %w", num, err)
	}
	return obj, nil
}

func (stm *ObjectStream) find(num int) int {
	for i, n := range stm.numbers {
		if n == num {
			return i
		}
	}
	return -1
}
