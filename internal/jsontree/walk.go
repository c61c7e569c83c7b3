package jsontree

import (
	"iter"
	"slices"
	"strconv"
)

// Walk yields every scalar leaf of v depth-first together with its address.
// Object fields are visited in insertion order and array elements in index
// order. A scalar root yields a single pair with an empty address; empty
// containers yield nothing. Each yielded address is a fresh slice.
func Walk(v *Value) iter.Seq2[Address, *Value] {
	return func(yield func(Address, *Value) bool) {
		walk(v, Address{}, yield)
	}
}

func walk(v *Value, prefix Address, yield func(Address, *Value) bool) bool {
	switch v.Kind() {
	case KindObject:
		for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
			if !walk(pair.Value, prefix.Append(Field(pair.Key)), yield) {
				return false
			}
		}
		return true
	case KindArray:
		for i, elem := range v.arr {
			if !walk(elem, prefix.Append(Elem(i)), yield) {
				return false
			}
		}
		return true
	default:
		return yield(slices.Clone(prefix), v)
	}
}

// Get returns the value at addr. The address must have at least one segment.
func Get(root *Value, addr Address) (*Value, error) {
	if len(addr) == 0 {
		return nil, &AddressError{Address: addr, Reason: "empty address"}
	}
	cur := root
	for depth, seg := range addr {
		next, reason := child(cur, seg)
		if reason != "" {
			return nil, &AddressError{Address: addr, Depth: depth, Reason: reason}
		}
		cur = next
	}
	return cur, nil
}

// Set replaces the value at addr with nv. Intermediate segments must exist.
// On an object the final key is created when absent; on an array the final
// index must already be in range.
func Set(root *Value, addr Address, nv *Value) error {
	if len(addr) == 0 {
		return &AddressError{Address: addr, Reason: "empty address"}
	}
	parent := root
	for depth, seg := range addr[:len(addr)-1] {
		next, reason := child(parent, seg)
		if reason != "" {
			return &AddressError{Address: addr, Depth: depth, Reason: reason}
		}
		parent = next
	}
	depth := len(addr) - 1
	last := addr[depth]
	switch parent.Kind() {
	case KindObject:
		if last.IsIndex {
			return &AddressError{Address: addr, Depth: depth, Reason: "index " + strconv.Itoa(last.Index) + " on object"}
		}
		parent.obj.Set(last.Key, nv)
		return nil
	case KindArray:
		if !last.IsIndex {
			return &AddressError{Address: addr, Depth: depth, Reason: "key " + strconv.Quote(last.Key) + " on array"}
		}
		if last.Index < 0 || last.Index >= len(parent.arr) {
			return &AddressError{Address: addr, Depth: depth, Reason: "index " + strconv.Itoa(last.Index) + " out of range"}
		}
		parent.arr[last.Index] = nv
		return nil
	default:
		return &AddressError{Address: addr, Depth: depth, Reason: parent.Kind().String() + " is not a container"}
	}
}

func child(v *Value, seg Segment) (*Value, string) {
	switch v.Kind() {
	case KindObject:
		if seg.IsIndex {
			return nil, "index " + strconv.Itoa(seg.Index) + " on object"
		}
		next, ok := v.obj.Get(seg.Key)
		if !ok {
			return nil, "missing key " + strconv.Quote(seg.Key)
		}
		return next, ""
	case KindArray:
		if !seg.IsIndex {
			return nil, "key " + strconv.Quote(seg.Key) + " on array"
		}
		if seg.Index < 0 || seg.Index >= len(v.arr) {
			return nil, "index " + strconv.Itoa(seg.Index) + " out of range"
		}
		return v.arr[seg.Index], ""
	default:
		return nil, v.Kind().String() + " is not a container"
	}
}
