package canonical

import (
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a value that can be canonically encoded.
// Only String, Int, Bool, Array and Object implement it.
type Value interface {
	canonicalValue()
}

// String is a JSON string.
type String string

// Int is a JSON integer.
type Int int64

// Bool is a JSON boolean.
type Bool bool

// Array is a JSON array.
type Array []Value

// Object is a JSON object. Keys are emitted in canonical order.
type Object map[string]Value

func (String) canonicalValue() {}
func (Int) canonicalValue()    {}
func (Bool) canonicalValue()   {}
func (Array) canonicalValue()  {}
func (Object) canonicalValue() {}

// Float encodes x as the shortest decimal string that parses back to x.
func Float(x float64) String {
	return String(strconv.FormatFloat(x, 'g', -1, 64))
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 orders strings by UTF-16 code units. This differs from
// Go's byte order for characters outside the BMP.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
