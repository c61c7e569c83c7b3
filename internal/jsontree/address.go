package jsontree

import (
	"slices"
	"strconv"
	"strings"
)

// Segment is one step of an Address: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Field returns a segment that selects an object key.
func Field(key string) Segment {
	return Segment{Key: key}
}

// Elem returns a segment that selects an array index.
func Elem(index int) Segment {
	return Segment{Index: index, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return strconv.Quote(s.Key)
}

// Address identifies a location inside a document as the sequence of keys
// and indices leading to it from the root.
type Address []Segment

// Append returns a new address extended by seg. The receiver is never
// modified, so addresses handed out by Walk stay stable.
func (a Address) Append(seg Segment) Address {
	return append(slices.Clip(a), seg)
}

// Parent returns the address one level up. The parent of an empty address
// is empty.
func (a Address) Parent() Address {
	if len(a) == 0 {
		return nil
	}
	return slices.Clone(a[:len(a)-1])
}

// Equal reports whether both addresses select the same location.
func (a Address) Equal(other Address) bool {
	return slices.Equal(a, other)
}

// String renders the address as a JSON-style array, e.g. ["items",2,"img"].
func (a Address) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, seg := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(seg.String())
	}
	b.WriteByte(']')
	return b.String()
}
