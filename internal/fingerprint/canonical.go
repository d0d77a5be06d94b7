// Package fingerprint computes stable content hashes of stage configurations so
// the deployment ledger can tell whether two runs shipped the same settings.
package fingerprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON:
//
//  1. object keys NFC normalized, then sorted by UTF-16 code units
//  2. no HTML escaping
//  3. string values written byte for byte
//  4. no floats and no null
//
// Two keys of one object that normalize to the same form are rejected, since
// they would produce a duplicate key.
//
// Supported values are strings, bools, ints, string maps, generic maps and slices.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return writeString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case map[string]string:
		obj := make(map[string]any, len(val))
		for k, s := range val {
			obj[k] = s
		}
		return writeObject(buf, obj)
	case map[string]any:
		return writeObject(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, obj map[string]any) error {
	byKey := make(map[string]string, len(obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		nk := norm.NFC.String(k)
		if other, dup := byKey[nk]; dup {
			return fmt.Errorf("keys %q and %q collide after NFC normalization", other, k)
		}
		byKey[nk] = k
		keys = append(keys, nk)
	}
	slices.SortFunc(keys, compareUTF16)

	buf.WriteByte('{')
	for i, nk := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, nk); err != nil {
			return err
		}
		buf.WriteByte(':')
		k := byKey[nk]
		if err := writeCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// compareUTF16 orders keys by UTF-16 code units as RFC 8785 requires.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte("\n"))
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators undoes encoding/json's escaping of U+2028 and U+2029,
// which RFC 8785 emits literally. An escape preceded by an odd run of
// backslashes is literal text and is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	var out strings.Builder
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			run := 0
			for j := i - 1; j >= 0 && data[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out.WriteRune('\u2028')
				} else {
					out.WriteRune('\u2029')
				}
				i += 5
				continue
			}
		}
		out.WriteByte(data[i])
	}
	return []byte(out.String())
}
