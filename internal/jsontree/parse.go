package jsontree

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// Parse decodes a single JSON document. Object keys keep document order and
// number literals keep their source text.
func Parse(data []byte) (*Value, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	value, err := decode(raw, dataType)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return value, nil
}

// validate rejects malformed input up front; jsonparser is lenient about
// trailing garbage and some structural errors.
func validate(data []byte) error {
	var probe json.RawMessage
	err := json.Unmarshal(data, &probe)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Offset: syntaxErr.Offset, Err: err}
	}
	return &ParseError{Err: err}
}

func decode(raw []byte, dataType jsonparser.ValueType) (*Value, error) {
	switch dataType {
	case jsonparser.Null:
		return NewNull(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, err
		}
		return NewBool(b), nil
	case jsonparser.Number:
		return NewNumber(string(raw)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	case jsonparser.Array:
		return decodeArray(raw)
	case jsonparser.Object:
		return decodeObject(raw)
	default:
		return nil, fmt.Errorf("unsupported value type %s", dataType)
	}
}

func decodeArray(raw []byte) (*Value, error) {
	arr := NewArray()
	var decodeErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if decodeErr != nil {
			return
		}
		if err != nil {
			decodeErr = err
			return
		}
		child, err := decode(value, dataType)
		if err != nil {
			decodeErr = err
			return
		}
		arr.arr = append(arr.arr, child)
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if err != nil {
		return nil, err
	}
	return arr, nil
}

func decodeObject(raw []byte) (*Value, error) {
	obj := NewObject()
	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		child, err := decode(value, dataType)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		obj.obj.Set(string(key), child)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}
