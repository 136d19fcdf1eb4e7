package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
)

// ErrEmpty is returned when the text holds no value at all.
var ErrEmpty = errors.New("document: empty input")

// Parse parses text holding exactly one JSON value. Object member order is
// preserved and numbers keep their literal form.
func Parse(text []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return Value{}, ErrEmpty
	}
	if err != nil {
		return Value{}, fmt.Errorf("document: %w", err)
	}
	v, err := parseValue(dec, tok, 0)
	if err != nil {
		return Value{}, fmt.Errorf("document: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return Value{}, fmt.Errorf("document: unexpected data after value at offset %d", dec.InputOffset())
		}
		return Value{}, fmt.Errorf("document: %w", err)
	}
	return v, nil
}

// ParseJSONC parses JSON that may carry // and /* */ comments and trailing
// commas.
func ParseJSONC(text []byte) (Value, error) {
	return Parse(jsonc.ToJSON(text))
}

// maxJSONDepth bounds array and object nesting.
const maxJSONDepth = 128

func parseValue(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case json.Delim:
		if depth >= maxJSONDepth {
			return Value{}, fmt.Errorf("nesting deeper than %d", maxJSONDepth)
		}
		switch t {
		case '[':
			return parseArray(dec, depth+1)
		case '{':
			return parseObject(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func parseArray(dec *json.Decoder, depth int) (Value, error) {
	v := Value{kind: KindArray}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		item, err := parseValue(dec, tok, depth)
		if err != nil {
			return Value{}, err
		}
		v.items = append(v.items, item)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func parseObject(dec *json.Decoder, depth int) (Value, error) {
	v := Value{kind: KindObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not a string", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return Value{}, err
		}
		member, err := parseValue(dec, tok, depth)
		if err != nil {
			return Value{}, err
		}
		v.members = setMember(v.members, key, member)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Marshal renders v as compact JSON.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, "", ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders v as JSON with one member or item per line, each
// nesting level indented by indent. Empty containers stay on one line. An
// empty indent gives the same output as Marshal.
func MarshalIndent(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value, prefix, indent string) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !validNumber(v.text) {
			return fmt.Errorf("document: invalid number %q", v.text)
		}
		buf.WriteString(v.text)
	case KindString:
		return writeString(buf, v.text)
	case KindArray:
		if len(v.items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		inner := prefix + indent
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, inner, indent)
			if err := writeValue(buf, item, inner, indent); err != nil {
				return err
			}
		}
		newline(buf, prefix, indent)
		buf.WriteByte(']')
	case KindObject:
		if len(v.members) == 0 {
			buf.WriteString("{}")
			return nil
		}
		inner := prefix + indent
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, inner, indent)
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := writeValue(buf, m.Value, inner, indent); err != nil {
				return err
			}
		}
		newline(buf, prefix, indent)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("document: unknown kind %v", v.kind)
	}
	return nil
}

func newline(buf *bytes.Buffer, prefix, indent string) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(prefix)
}

// writeString quotes s as a JSON string. Only the characters JSON requires
// are escaped, so HTML characters and non-ASCII text are written as is.
func writeString(buf *bytes.Buffer, s string) error {
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			buf.WriteString(s[start:i])
			switch c {
			case '"', '\\':
				buf.WriteByte('\\')
				buf.WriteByte(c)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[c>>4])
				buf.WriteByte(hexDigits[c&0xf])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString(s[start:i])
			buf.WriteString(`\ufffd`)
			i += size
			start = i
			continue
		}
		// U+2028 and U+2029 are valid JSON but break JavaScript string literals.
		if r == '\u2028' || r == '\u2029' {
			buf.WriteString(s[start:i])
			buf.WriteString(`\u202`)
			buf.WriteByte(hexDigits[r&0xf])
			i += size
			start = i
			continue
		}
		i += size
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
	return nil
}

const hexDigits = "0123456789abcdef"

// validNumber reports whether s matches the JSON number grammar.
func validNumber(s string) bool {
	if s == "" {
		return false
	}
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}

	switch {
	case s[0] == '0':
		s = s[1:]
	case s[0] >= '1' && s[0] <= '9':
		s = s[1:]
		for len(s) > 0 && isDigit(s[0]) {
			s = s[1:]
		}
	default:
		return false
	}

	if len(s) >= 2 && s[0] == '.' && isDigit(s[1]) {
		s = s[2:]
		for len(s) > 0 && isDigit(s[0]) {
			s = s[1:]
		}
	}

	if len(s) >= 2 && (s[0] == 'e' || s[0] == 'E') {
		s = s[1:]
		if s[0] == '+' || s[0] == '-' {
			s = s[1:]
			if s == "" {
				return false
			}
		}
		for len(s) > 0 && isDigit(s[0]) {
			s = s[1:]
		}
	}

	return s == ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
