package jsontree_test

import (
	"errors"
	"testing"

	"worldmanager/internal/jsontree"
)

func TestMarshalRoundTripKeepsOrderAndNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"key order", `{"z":1,"a":2,"m":3}`, `{"z":1,"a":2,"m":3}`},
		{"whitespace", "{ \"a\" : [ 1 , 2 ] ,\n \"b\" : null }", `{"a":[1,2],"b":null}`},
		{"number text", `[1.50,1e3,-0,12345678901234567890]`, `[1.50,1e3,-0,12345678901234567890]`},
		{"html not escaped", `{"h":"<p><img src=\"a.png\"></p> & more"}`, `{"h":"<p><img src=\"a.png\"></p> & more"}`},
		{"unicode kept", `{"name":"Grün – Drache"}`, `{"name":"Grün – Drache"}`},
		{"escaped key", `{"a\"b":true}`, `{"a\"b":true}`},
		{"scalar root", `"worlds/x.png"`, `"worlds/x.png"`},
		{"nested empties", `{"a":[],"b":{}}`, `{"a":[],"b":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := jsontree.Parse([]byte(tt.in))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, err := jsontree.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{`{"a":`, `{"a":1}}`, `[1,2,]`, ``, `{"a" 1}`} {
		_, err := jsontree.Parse([]byte(in))
		var parseErr *jsontree.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Parse(%q): expected ParseError, got %v", in, err)
		}
	}
}

func TestDuplicateKeysKeepFirstPositionAndLastValue(t *testing.T) {
	v, err := jsontree.Parse([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, _ := jsontree.Marshal(v)
	if string(got) != `{"a":3,"b":2}` {
		t.Fatalf("got %s", got)
	}
}

func TestValueAccessors(t *testing.T) {
	v, err := jsontree.Parse([]byte(`{"s":"x","n":2,"b":true,"arr":[null]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if keys := v.Keys(); len(keys) != 4 || keys[3] != "arr" {
		t.Fatalf("unexpected keys %v", keys)
	}
	s, _ := v.Field("s")
	if got, ok := s.Str(); !ok || got != "x" {
		t.Fatalf("Str: got %q %v", got, ok)
	}
	n, _ := v.Field("n")
	if got, ok := n.Number(); !ok || got != "2" {
		t.Fatalf("Number: got %q %v", got, ok)
	}
	b, _ := v.Field("b")
	if got, ok := b.Bool(); !ok || !got {
		t.Fatalf("Bool: got %v %v", got, ok)
	}
	arr, _ := v.Field("arr")
	if arr.Len() != 1 || !arr.IsContainer() {
		t.Fatalf("unexpected array shape")
	}
	if elem, ok := arr.Elem(0); !ok || elem.Kind() != jsontree.KindNull {
		t.Fatalf("expected null element")
	}
	if _, ok := s.Number(); ok {
		t.Fatal("string should not report a number")
	}
}
