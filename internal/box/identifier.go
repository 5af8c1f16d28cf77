package box

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// ID is a Box object identifier. Box ids are non-negative integers; the
// root folder is ID 0.
type ID uint64

// RootFolder is the id of the account's root folder.
const RootFolder ID = 0

// Identifier is anything that resolves to an object reference: an ID,
// an ObjectRef, or a Record returned by an earlier call.
type Identifier interface {
	ObjectRef() (ObjectRef, error)
}

// isNilIdentifier reports whether id is nil or a nil pointer wrapped in the
// interface, such as a (*ObjectRef)(nil).
func isNilIdentifier(id Identifier) bool {
	if id == nil {
		return true
	}

	v := reflect.ValueOf(id)

	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ObjectRef is the normalized {"id": ...} form sent to the API when one
// object points at another (e.g. a folder's parent).
type ObjectRef struct {
	ID ID `json:"id"`
}

// ObjectRef implements Identifier.
func (r ObjectRef) ObjectRef() (ObjectRef, error) {
	return r, nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ObjectRef implements Identifier.
func (id ID) ObjectRef() (ObjectRef, error) {
	return ObjectRef{ID: id}, nil
}

// MarshalJSON encodes the id as a digit string, which is how the API
// represents ids on the wire.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON accepts both "123" and 123.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}

	parsed, err := ParseID(s)
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// ParseID parses a string made entirely of ASCII digits.
func ParseID(s string) (ID, error) {
	if !isDigits(s) {
		return 0, fmt.Errorf("%w: id must be numeric, got %q", ErrValidation, s)
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q out of range", ErrValidation, s)
	}

	return ID(n), nil
}

// NormalizeID resolves a loosely typed value into an ObjectRef. Accepted
// inputs are Go integers, digit-only strings, maps (or Records) with an
// "id" entry of either kind, and any Identifier. A map without "id" or an
// id that is not integer-like fails with ErrValidation; any other Go type
// fails with ErrTypeMismatch.
func NormalizeID(v any) (ObjectRef, error) {
	switch x := v.(type) {
	case Identifier:
		if isNilIdentifier(x) {
			return ObjectRef{}, fmt.Errorf("%w: nil %T for object or id", ErrTypeMismatch, v)
		}

		return x.ObjectRef()
	case map[string]any:
		return Record(x).ObjectRef()
	case map[string]string:
		raw, ok := x["id"]
		if !ok {
			return ObjectRef{}, fmt.Errorf("%w: id required", ErrValidation)
		}

		id, err := ParseID(raw)
		if err != nil {
			return ObjectRef{}, err
		}

		return ObjectRef{ID: id}, nil
	}

	id, ok, err := scalarID(v)
	if err != nil {
		return ObjectRef{}, err
	}

	if !ok {
		return ObjectRef{}, fmt.Errorf("%w: invalid type %T for object or id", ErrTypeMismatch, v)
	}

	return ObjectRef{ID: id}, nil
}

// scalarID converts integer kinds, digit strings and json.Number to an ID.
// ok is false when v is not one of those kinds at all.
func scalarID(v any) (ID, bool, error) {
	switch x := v.(type) {
	case int:
		return signedID(int64(x))
	case int8:
		return signedID(int64(x))
	case int16:
		return signedID(int64(x))
	case int32:
		return signedID(int64(x))
	case int64:
		return signedID(x)
	case uint:
		return ID(x), true, nil
	case uint8:
		return ID(x), true, nil
	case uint16:
		return ID(x), true, nil
	case uint32:
		return ID(x), true, nil
	case uint64:
		return ID(x), true, nil
	case string:
		id, err := ParseID(x)
		return id, true, err
	case json.Number:
		id, err := ParseID(x.String())
		return id, true, err
	default:
		return 0, false, nil
	}
}

func signedID(n int64) (ID, bool, error) {
	if n < 0 {
		return 0, true, fmt.Errorf("%w: id must be non-negative, got %d", ErrValidation, n)
	}

	return ID(n), true, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
