package document

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ParseTOML parses a TOML document into an object Value. TOML tables carry
// no usable order once decoded, so keys come out sorted. Date and time
// values become strings in their TOML spelling.
func ParseTOML(text []byte) (Value, error) {
	if len(strings.TrimSpace(string(text))) == 0 {
		return Value{}, ErrEmpty
	}

	var raw map[string]any
	if err := toml.Unmarshal(text, &raw); err != nil {
		return Value{}, fmt.Errorf("document: toml: %w", err)
	}
	return FromAny(fromTOML(raw))
}

// fromTOML replaces the date and time types go-toml decodes into with
// strings FromAny accepts.
func fromTOML(x any) any {
	switch t := x.(type) {
	case map[string]any:
		for k, v := range t {
			t[k] = fromTOML(v)
		}
		return t
	case []any:
		for i, v := range t {
			t[i] = fromTOML(v)
		}
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case encoding.TextMarshaler:
		text, err := t.MarshalText()
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(text)
	default:
		return x
	}
}

// MarshalTOML renders an object Value as TOML with keys sorted. TOML has
// no null and no top-level arrays or scalars, so those fail, as do integers
// outside the int64 range.
func MarshalTOML(v Value) ([]byte, error) {
	if v.kind != KindObject {
		return nil, fmt.Errorf("document: toml: top level must be an object, got %s", v.kind)
	}
	raw, err := toTOML(v)
	if err != nil {
		return nil, err
	}
	out, err := toml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("document: toml: %w", err)
	}
	return out, nil
}

func toTOML(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return nil, fmt.Errorf("document: toml: null has no TOML form")
	case KindBool:
		return v.boolean, nil
	case KindString:
		return v.text, nil
	case KindNumber:
		if !strings.ContainsAny(v.text, ".eE") {
			i, err := strconv.ParseInt(v.text, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("document: toml: integer %s out of range", v.text)
			}
			return i, nil
		}
		f, err := strconv.ParseFloat(v.text, 64)
		if err != nil {
			return nil, fmt.Errorf("document: toml: number %s: %w", v.text, err)
		}
		return f, nil
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			x, err := toTOML(item)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			x, err := toTOML(m.Value)
			if err != nil {
				return nil, fmt.Errorf("%w (key %q)", err, m.Key)
			}
			out[m.Key] = x
		}
		return out, nil
	default:
		return nil, fmt.Errorf("document: unknown kind %v", v.kind)
	}
}
