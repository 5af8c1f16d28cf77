package box

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Result is the decoded body of one API response. Exactly one of Data and
// Raw is set for a non-empty body: Data when the body parsed as a non-null
// JSON value, Raw otherwise (a literal null included). Both are nil for an
// empty body.
type Result struct {
	StatusCode int
	Header     http.Header
	Data       any
	Raw        []byte

	body []byte
}

// newResult decodes body into a Result. JSON numbers are kept as
// json.Number so integer ids survive decoding intact.
func newResult(status int, header http.Header, body []byte) *Result {
	res := &Result{StatusCode: status, Header: header}
	if len(body) == 0 {
		return res
	}

	res.body = body

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err == nil && data != nil && !dec.More() {
		res.Data = data
		return res
	}

	res.Raw = body

	return res
}

// Empty reports whether the response carried no body.
func (r *Result) Empty() bool {
	return r == nil || len(r.body) == 0
}

// Bytes returns the response body exactly as received, whether or not it
// parsed as JSON. Downloads use this so JSON file content is not mangled.
func (r *Result) Bytes() []byte {
	if r == nil {
		return nil
	}

	return r.body
}

// Record returns the body as a Record when it is a JSON object.
func (r *Result) Record() (Record, bool) {
	if r == nil {
		return nil, false
	}

	m, ok := r.Data.(map[string]any)

	return Record(m), ok
}

// Record is an opaque object returned by the API. The client itself only
// relies on its "id" and "etag" entries.
type Record map[string]any

// ObjectRef implements Identifier by validating the record's "id" entry.
func (r Record) ObjectRef() (ObjectRef, error) {
	raw, ok := r["id"]
	if !ok {
		return ObjectRef{}, fmt.Errorf("%w: id required", ErrValidation)
	}

	id, ok, err := scalarID(raw)
	if err != nil {
		return ObjectRef{}, err
	}

	if !ok {
		return ObjectRef{}, fmt.Errorf("%w: id must be numeric, not %T", ErrValidation, raw)
	}

	return ObjectRef{ID: id}, nil
}

// ID returns the record's validated id.
func (r Record) ID() (ID, error) {
	ref, err := r.ObjectRef()
	return ref.ID, err
}

// ETag returns the record's etag as an integer.
func (r Record) ETag() (int64, error) {
	raw, ok := r["etag"]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: etag missing", ErrValidation)
	}

	var s string

	switch x := raw.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	default:
		return 0, fmt.Errorf("%w: etag must be numeric, not %T", ErrValidation, raw)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: etag %q is not an integer", ErrValidation, s)
	}

	return n, nil
}

// Entries returns the "entries" collection of a list-shaped record, such as
// the envelope returned by the upload endpoints.
func (r Record) Entries() []Record {
	raw, ok := r["entries"].([]any)
	if !ok {
		return nil
	}

	out := make([]Record, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}

	return out
}

// Decode copies the record into a typed view such as Item.
func (r Record) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("box: building record decoder: %w", err)
	}

	if err := dec.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("box: decoding record: %w", err)
	}

	return nil
}

// Item is a typed view over a folder, file or file version record. Fields
// the API omits are left at their zero value.
type Item struct {
	Type        string     `mapstructure:"type"`
	ID          ID         `mapstructure:"id"`
	SequenceID  string     `mapstructure:"sequence_id"`
	ETag        string     `mapstructure:"etag"`
	SHA1        string     `mapstructure:"sha1"`
	Name        string     `mapstructure:"name"`
	Description string     `mapstructure:"description"`
	Size        int64      `mapstructure:"size"`
	CreatedAt   time.Time  `mapstructure:"created_at"`
	ModifiedAt  time.Time  `mapstructure:"modified_at"`
	Parent      *ParentRef `mapstructure:"parent"`
}

// ParentRef is the compact parent folder embedded in an item.
type ParentRef struct {
	Type string `mapstructure:"type"`
	ID   ID     `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// IsFolder reports whether the item is a folder.
func (it *Item) IsFolder() bool {
	return it.Type == "folder"
}
