package jsontree

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a single JSON value. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	text string // string contents or the raw number literal
	arr  []*Value
	obj  *orderedmap.OrderedMap[string, *Value]
}

// NewNull returns a null value.
func NewNull() *Value { return &Value{kind: KindNull} }

// NewBool returns a boolean value.
func NewBool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// NewNumber returns a number value from its JSON literal, e.g. "12" or "1.5e3".
func NewNumber(literal string) *Value { return &Value{kind: KindNumber, text: literal} }

// NewString returns a string value.
func NewString(s string) *Value { return &Value{kind: KindString, text: s} }

// NewArray returns an array holding elems.
func NewArray(elems ...*Value) *Value {
	arr := make([]*Value, 0, len(elems))
	arr = append(arr, elems...)
	return &Value{kind: KindArray, arr: arr}
}

// NewObject returns an empty object.
func NewObject() *Value {
	return &Value{kind: KindObject, obj: orderedmap.New[string, *Value]()}
}

// Kind reports the variant held by v.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsContainer reports whether v is an array or an object.
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == KindArray || k == KindObject
}

// Str returns the string contents when v is a string.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.text, true
}

// Bool returns the boolean when v is a bool.
func (v *Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// Number returns the raw number literal when v is a number.
func (v *Value) Number() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.text, true
}

// Len returns the number of elements or fields of a container, 0 otherwise.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// Elem returns the i-th array element.
func (v *Value) Elem(i int) (*Value, bool) {
	if v.Kind() != KindArray || i < 0 || i >= len(v.arr) {
		return nil, false
	}
	return v.arr[i], true
}

// Field returns the value stored under key in an object.
func (v *Value) Field(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	return v.obj.Get(key)
}

// Keys returns object keys in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Append adds elements to an array. It is a no-op for other kinds.
func (v *Value) Append(elems ...*Value) {
	if v.Kind() != KindArray {
		return
	}
	v.arr = append(v.arr, elems...)
}

// Put stores value under key in an object, keeping the key's original
// position when it already exists. It is a no-op for other kinds.
func (v *Value) Put(key string, value *Value) {
	if v.Kind() != KindObject {
		return
	}
	v.obj.Set(key, value)
}
