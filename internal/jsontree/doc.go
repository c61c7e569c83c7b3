// Package jsontree models parsed JSON documents as a tagged union of
// null, bool, number, string, array, and object values, and provides the
// addressing primitives the world store relies on.
//
// Objects keep their keys in document order and numbers keep their source
// text, so a document that is parsed and marshaled again without edits only
// changes in whitespace. Walk produces a lazy depth-first sequence of
// (address, leaf) pairs; Get and Set read and replace a single location by
// address and report an *AddressError when the address no longer matches the
// document shape.
//
// Callers that mutate documents should only replace leaf values in place:
// addresses of sibling array elements shift when elements are inserted or
// removed.
package jsontree
