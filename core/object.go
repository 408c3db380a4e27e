package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is any PDF object.
type Object interface {
	String() string
}

// Null is the null object. A missing dictionary entry reads as nil, not
// Null.
type Null struct{}

func (Null) String() string { return "null" }

type Bool bool

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Int and Real are the two kinds of number. Use [Number] when either
// will do.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

type Real float64

func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String holds the bytes of a literal or hex string. Its String method
// returns them unchanged.
type String string

func (s String) String() string { return string(s) }

// Name is a name without its leading slash, with #xx escapes decoded.
type Name string

func (n Name) String() string { return "/" + string(n) }

type Array []Object

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = objectString(obj)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a) }

// Get returns element i, or nil when i is out of range.
func (a Array) Get(i int) Object {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

func (a Array) GetInt(i int) (Int, bool)   { return as[Int](a.Get(i)) }
func (a Array) GetReal(i int) (Real, bool) { return as[Real](a.Get(i)) }
func (a Array) GetName(i int) (Name, bool) { return as[Name](a.Get(i)) }

// Dict maps keys, without their leading slash, to objects.
type Dict map[string]Object

func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteString("<<")
	for _, k := range d.Keys() {
		fmt.Fprintf(&sb, "/%s %s ", k, objectString(d[k]))
	}
	return strings.TrimSuffix(sb.String(), " ") + ">>"
}

// Get returns the value stored under key, or nil.
func (d Dict) Get(key string) Object { return d[key] }

// Has reports whether key is present. Parsed dictionaries drop null
// entries, which the format treats as absent.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Dict) GetName(key string) (Name, bool)               { return as[Name](d[key]) }
func (d Dict) GetInt(key string) (Int, bool)                 { return as[Int](d[key]) }
func (d Dict) GetReal(key string) (Real, bool)               { return as[Real](d[key]) }
func (d Dict) GetBool(key string) (Bool, bool)               { return as[Bool](d[key]) }
func (d Dict) GetString(key string) (String, bool)           { return as[String](d[key]) }
func (d Dict) GetDict(key string) (Dict, bool)               { return as[Dict](d[key]) }
func (d Dict) GetArray(key string) (Array, bool)             { return as[Array](d[key]) }
func (d Dict) GetStream(key string) (*Stream, bool)          { return as[*Stream](d[key]) }
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) { return as[IndirectRef](d[key]) }

func as[T Object](obj Object) (T, bool) {
	v, ok := obj.(T)
	return v, ok
}

// Number returns the value of an Int or a Real.
func Number(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// Stream is a dictionary followed by raw, still encoded data.
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) String() string {
	return fmt.Sprintf("%s stream(%d bytes)", s.Dict, len(s.Data))
}

// IndirectRef points at object Number of generation Generation.
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject is the body of an "n g obj ... endobj" block.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

func objectString(obj Object) string {
	switch v := obj.(type) {
	case nil:
		return "null"
	case String:
		return "(" + strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(string(v)) + ")"
	}
	return obj.String()
}
