// Package strokes decodes the line-segment JSON produced by signature
// capture widgets such as Signature Pad:
//
//	[{"lx":20,"ly":34,"mx":21,"my":34},{"lx":21,"ly":34,"mx":23,"my":35}]
//
// Each entry is one straight pen movement from (lx,ly) to (mx,my) in canvas
// pixels. Order is significant: segments are drawn in sequence.
package strokes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LineSegment is one decoded pen movement.
type LineSegment struct {
	Lx, Ly int // start
	Mx, My int // end
}

// IsDot reports whether the segment starts and ends on the same pixel.
func (s LineSegment) IsDot() bool { return s.Lx == s.Mx && s.Ly == s.My }

// MalformedInputError is returned when a payload cannot be decoded.
// Index is the offending entry, or -1 when the payload as a whole is bad.
type MalformedInputError struct {
	Index int
	Field string
	Err   error
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Index < 0:
		return "strokes: malformed payload: " + e.Err.Error()
	case e.Field != "":
		return fmt.Sprintf("strokes: malformed segment %d field %q: %v", e.Index, e.Field, e.Err)
	default:
		return fmt.Sprintf("strokes: malformed segment %d: %v", e.Index, e.Err)
	}
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

var (
	errMissingField = errors.New("missing required integer field")
	errNotObject    = errors.New("entry is not an object")
	errNotArray     = errors.New("payload is not a JSON array")
	ErrTooMany      = errors.New("too many segments")
)

// Decoder holds decode limits. The zero value decodes without limits.
type Decoder struct {
	// MaxSegments rejects payloads with more entries. Zero means unlimited.
	MaxSegments int
}

// Decode parses raw with no segment limit.
func Decode(raw string) ([]LineSegment, error) {
	return Decoder{}.Decode(raw)
}

// wireSegment keeps pointers so absent fields can be told apart from zero.
type wireSegment struct {
	Lx *int `json:"lx"`
	Ly *int `json:"ly"`
	Mx *int `json:"mx"`
	My *int `json:"my"`
}

// Decode parses raw into segments. An empty payload, or a JSON null, yields
// no segments. Any malformed entry fails the whole payload.
func (d Decoder) Decode(raw string) ([]LineSegment, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return []LineSegment{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			err = errNotArray
		}
		return nil, &MalformedInputError{Index: -1, Err: err}
	}
	if d.MaxSegments > 0 && len(entries) > d.MaxSegments {
		return nil, &MalformedInputError{Index: -1, Err: fmt.Errorf("%w: %d > %d", ErrTooMany, len(entries), d.MaxSegments)}
	}

	segments := make([]LineSegment, 0, len(entries))
	for i, entry := range entries {
		seg, err := decodeEntry(i, entry)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func decodeEntry(index int, entry json.RawMessage) (LineSegment, error) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return LineSegment{}, &MalformedInputError{Index: index, Err: errNotObject}
	}

	var w wireSegment
	if err := json.Unmarshal(trimmed, &w); err != nil {
		field := ""
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field = typeErr.Field
		}
		return LineSegment{}, &MalformedInputError{Index: index, Field: field, Err: err}
	}

	fields := []struct {
		name  string
		value *int
	}{{"lx", w.Lx}, {"ly", w.Ly}, {"mx", w.Mx}, {"my", w.My}}
	for _, f := range fields {
		if f.value == nil {
			return LineSegment{}, &MalformedInputError{Index: index, Field: f.name, Err: errMissingField}
		}
	}
	return LineSegment{Lx: *w.Lx, Ly: *w.Ly, Mx: *w.Mx, My: *w.My}, nil
}
