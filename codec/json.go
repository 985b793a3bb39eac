package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MarshalJSON renders the value keeping object field order.
func (v Value) MarshalJSON() ([]byte, error) {
	return AppendJSON(nil, v), nil
}

// AppendJSON appends the JSON rendering of v to buf. Objects keep their
// field order, binary values are base64 strings and non-finite floats
// render as null.
func AppendJSON(buf []byte, v Value) []byte {
	switch v.kind {
	case Null:
		return append(buf, "null"...)
	case Bool:
		return strconv.AppendBool(buf, v.Bool())
	case Int32:
		return strconv.AppendInt(buf, int64(v.Int32()), 10)
	case Int64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case Float:
		return appendFloat(buf, float64(v.Float()), 32)
	case Double:
		return appendFloat(buf, v.Double(), 64)
	case String:
		return appendString(buf, v.str)
	case Bytes:
		buf = append(buf, '"')
		buf = base64.StdEncoding.AppendEncode(buf, v.bytes)
		return append(buf, '"')
	case Array:
		buf = append(buf, '[')
		for i, item := range v.array {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = AppendJSON(buf, item)
		}
		return append(buf, ']')
	case Object:
		buf = append(buf, '{')
		for i := 0; i < v.obj.Len(); i++ {
			if i > 0 {
				buf = append(buf, ',')
			}
			name, value := v.obj.At(i)
			buf = appendString(buf, name)
			buf = append(buf, ':')
			buf = AppendJSON(buf, value)
		}
		return append(buf, '}')
	default:
		return append(buf, "null"...)
	}
}

// appendFloat formats like encoding/json: plain notation for moderate
// magnitudes, exponent notation otherwise.
func appendFloat(buf []byte, f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.AppendFloat(buf, f, format, -1, bits)
}

const hexDigits = "0123456789abcdef"

// appendString quotes s the way encoding/json does with HTML escaping
// off: invalid UTF-8 becomes U+FFFD and U+2028/U+2029 are escaped.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	start := 0
	for i := 0; i < len(s); {
		if c := s[i]; c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			buf = append(buf, s[start:i]...)
			switch c {
			case '"', '\\':
				buf = append(buf, '\\', c)
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			default:
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, s[start:i]...)
			buf = append(buf, `\ufffd`...)
			i += size
			start = i
			continue
		}
		if r == '\u2028' || r == '\u2029' {
			buf = append(buf, s[start:i]...)
			buf = append(buf, '\\', 'u', '2', '0', '2', hexDigits[r&0xf])
			i += size
			start = i
			continue
		}
		i += size
	}
	buf = append(buf, s[start:]...)
	return append(buf, '"')
}

// ParseJSON decodes a single JSON document into a Value. Object field
// order is preserved, integers become Int64 and other numbers Double.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("invalid json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("invalid json: trailing data")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Number:
		return numberValue(t)
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return ArrayValue(items), nil
		case '{':
			fields := NewFields()
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				name, ok := key.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", key)
				}
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				fields.Set(name, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return ObjectValue(fields), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func numberValue(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int64Value(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, err
	}
	return DoubleValue(f), nil
}
