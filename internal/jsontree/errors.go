package jsontree

import "fmt"

// ParseError reports malformed JSON input.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parse json at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse json: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AddressError reports an address that does not match the document shape.
type AddressError struct {
	Address Address
	Depth   int
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address %s: segment %d: %s", e.Address, e.Depth, e.Reason)
}
