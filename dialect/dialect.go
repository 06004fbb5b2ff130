// Package dialect models a MAVLink message dialect: the message and field
// definitions, their wire layout and the per-message CRC extra that senders
// and receivers must agree on.
package dialect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// scalar sizes of the MAVLink field types in bytes
var typeSizes = map[string]int{
	"uint64_t": 8,
	"int64_t":  8,
	"double":   8,
	"uint32_t": 4,
	"int32_t":  4,
	"float":    4,
	"uint16_t": 2,
	"int16_t":  2,
	"uint8_t":  1,
	"int8_t":   1,
	"char":     1,

	"uint8_t_mavlink_version": 1,
}

// Field is a single typed message field
type Field struct {
	Name      string
	Type      string // MAVLink C type, e.g. uint8_t
	ArrayLen  int    // 0 for scalar fields
	Extension bool
}

// Size returns the wire size of the field including array repetition
func (f Field) Size() (int, error) {
	size, ok := typeSizes[f.Type]
	if !ok {
		return 0, fmt.Errorf("unknown field type: %s", f.Type)
	}

	if f.ArrayLen > 0 {
		size *= f.ArrayLen
	}

	return size, nil
}

// Coerce converts a string value, as given on the command line, to the
// Go representation of the field. Array fields accept comma-separated
// values and are zero-filled to the declared length.
func (f Field) Coerce(s string) (interface{}, error) {
	if f.ArrayLen > 0 {
		if f.Type == "char" {
			if len(s) > f.ArrayLen {
				return nil, fmt.Errorf("%s: string exceeds %d chars", f.Name, f.ArrayLen)
			}
			return s, nil
		}

		var parts []string
		if s != "" {
			parts = strings.Split(s, ",")
		}
		if len(parts) > f.ArrayLen {
			return nil, fmt.Errorf("%s: %d values exceed array length %d", f.Name, len(parts), f.ArrayLen)
		}

		return f.coerceArray(parts)
	}

	return coerceScalar(f.Type, s)
}

func (f Field) coerceArray(parts []string) (interface{}, error) {
	switch f.Type {
	case "float":
		res := make([]float32, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(float32)
		}
		return res, nil
	case "double":
		res := make([]float64, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(float64)
		}
		return res, nil
	case "uint8_t", "uint8_t_mavlink_version":
		res := make([]uint8, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(uint8)
		}
		return res, nil
	case "int8_t":
		res := make([]int8, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(int8)
		}
		return res, nil
	case "uint16_t":
		res := make([]uint16, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(uint16)
		}
		return res, nil
	case "int16_t":
		res := make([]int16, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(int16)
		}
		return res, nil
	case "uint32_t":
		res := make([]uint32, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(uint32)
		}
		return res, nil
	case "int32_t":
		res := make([]int32, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(int32)
		}
		return res, nil
	case "uint64_t":
		res := make([]uint64, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(uint64)
		}
		return res, nil
	case "int64_t":
		res := make([]int64, f.ArrayLen)
		for i, p := range parts {
			v, err := coerceScalar(f.Type, p)
			if err != nil {
				return nil, err
			}
			res[i] = v.(int64)
		}
		return res, nil
	}

	return nil, fmt.Errorf("unknown field type: %s", f.Type)
}

func coerceScalar(typ, s string) (interface{}, error) {
	switch typ {
	case "float":
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case "double":
		return strconv.ParseFloat(s, 64)
	case "uint8_t", "uint8_t_mavlink_version":
		v, err := strconv.ParseUint(s, 10, 8)
		return uint8(v), err
	case "int8_t":
		v, err := strconv.ParseInt(s, 10, 8)
		return int8(v), err
	case "uint16_t":
		v, err := strconv.ParseUint(s, 10, 16)
		return uint16(v), err
	case "int16_t":
		v, err := strconv.ParseInt(s, 10, 16)
		return int16(v), err
	case "uint32_t":
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err
	case "int32_t":
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	case "uint64_t":
		return strconv.ParseUint(s, 10, 64)
	case "int64_t":
		return strconv.ParseInt(s, 10, 64)
	case "char":
		if len(s) != 1 {
			return nil, fmt.Errorf("expected single char, got %q", s)
		}
		return s[0], nil
	}

	return nil, fmt.Errorf("unknown field type: %s", typ)
}

// Message is a single message definition
type Message struct {
	ID     uint32
	Name   string
	Fields []Field
}

// SortedFields returns the fields in wire order: base fields stable-sorted
// by descending scalar size, extension fields appended in definition order.
func (m *Message) SortedFields() []Field {
	var base, ext []Field
	for _, f := range m.Fields {
		if f.Extension {
			ext = append(ext, f)
		} else {
			base = append(base, f)
		}
	}

	sort.SliceStable(base, func(i, j int) bool {
		return typeSizes[base[i].Type] > typeSizes[base[j].Type]
	})

	return append(base, ext...)
}

// Field returns the named field definition
func (m *Message) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// WireLength returns the unpacked payload length of the message
func (m *Message) WireLength() (int, error) {
	var length int
	for _, f := range m.Fields {
		size, err := f.Size()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", m.Name, err)
		}
		length += size
	}

	if length > 255 {
		return 0, fmt.Errorf("%s: payload length %d exceeds 255", m.Name, length)
	}

	return length, nil
}

// Dialect is a loaded message dialect with index access by id and name
type Dialect struct {
	Name     string
	Messages []*Message

	byID   map[uint32]*Message
	byName map[string]*Message
}

// NewDialect indexes the given message definitions
func NewDialect(name string, messages []*Message) (*Dialect, error) {
	d := &Dialect{
		Name:     name,
		Messages: messages,
		byID:     make(map[uint32]*Message),
		byName:   make(map[string]*Message),
	}

	for _, m := range messages {
		if _, ok := d.byID[m.ID]; ok {
			return nil, fmt.Errorf("duplicate message id: %d", m.ID)
		}
		if _, ok := d.byName[m.Name]; ok {
			return nil, fmt.Errorf("duplicate message name: %s", m.Name)
		}

		if _, err := m.WireLength(); err != nil {
			return nil, err
		}

		d.byID[m.ID] = m
		d.byName[m.Name] = m
	}

	return d, nil
}

// Message returns the message definition for given id
func (d *Dialect) Message(id uint32) (*Message, bool) {
	m, ok := d.byID[id]
	return m, ok
}

// MessageByName returns the message definition for given name
func (d *Dialect) MessageByName(name string) (*Message, bool) {
	m, ok := d.byName[strings.ToUpper(name)]
	return m, ok
}
