package seal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"
)

// Canonicalize is the mandatory serialization choke point for seal signing.
//
// It produces a JCS-style deterministic encoding of fields: keys sorted
// lexicographically, no insignificant whitespace, UTF-8, no HTML escaping.
// Absent (nil) values are dropped entirely rather than serialized as null, at
// every nesting level, so field presence never differs between producer and
// verifier views of the same record.
//
// Canonicalize is a pure function: identical keys and values always yield
// identical bytes regardless of map insertion order. The output is exactly
// what gets hashed and signed; any change here is a format version change.
func Canonicalize(fields map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		return writeCanonicalMap(buf, val)
	case []any:
		buf.WriteByte('[')
		first := true
		for _, item := range val {
			if item == nil {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case string:
		if !utf8.ValidString(val) {
			return newError(KindFormat, "SEAL-CANON-002", "canonical strings must be valid UTF-8")
		}
		return writeScalar(buf, val)
	case bool, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return writeScalar(buf, val)
	default:
		return newError(KindFormat, "SEAL-CANON-001", fmt.Sprintf("unsupported canonical value type %T", v))
	}
}

func writeCanonicalMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		if !utf8.ValidString(k) {
			return newError(KindFormat, "SEAL-CANON-002", "canonical keys must be valid UTF-8")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeScalar(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeScalar emits one JSON scalar without HTML escaping or a trailing newline.
func writeScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return wrapError(KindInternal, "SEAL-CANON-003", "encode canonical scalar", err)
	}
	// json.Encoder terminates every value with a newline; canonical output has none.
	b := buf.Bytes()
	if len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
	return nil
}
