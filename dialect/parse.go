package dialect

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var arrayRe = regexp.MustCompile(`^(.+?)\[(\d+)\]$`)

// ParseFile loads a dialect from a MAVLink XML definition file. Includes are
// resolved relative to the file. The result must always be generated from the
// dialect's root file, never an included fragment, or CRC extras of messages
// living in other fragments are lost.
func ParseFile(path string) (*Dialect, error) {
	messages, err := parseFile(path, map[string]bool{})
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewDialect(name, messages)
}

func parseFile(path string, visited map[string]bool) ([]*Message, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if visited[abs] {
		return nil, nil
	}
	visited[abs] = true

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dialect: %w", err)
	}
	defer f.Close()

	var doc xmlMavlink
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	var messages []*Message
	for _, include := range doc.Includes {
		included, err := parseFile(filepath.Join(filepath.Dir(path), include), visited)
		if err != nil {
			return nil, err
		}
		messages = append(messages, included...)
	}

	for _, m := range doc.Messages {
		msg, err := m.message()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

type xmlMavlink struct {
	XMLName  xml.Name     `xml:"mavlink"`
	Includes []string     `xml:"include"`
	Messages []xmlMessage `xml:"messages>message"`
}

type xmlMessage struct {
	ID     uint32
	Name   string
	Fields []Field
}

// UnmarshalXML walks the message children in document order to catch the
// <extensions/> marker splitting base fields from extension fields.
func (m *xmlMessage) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			if _, err := fmt.Sscanf(attr.Value, "%d", &m.ID); err != nil {
				return fmt.Errorf("invalid message id %q", attr.Value)
			}
		case "name":
			m.Name = attr.Value
		}
	}

	extensions := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "extensions":
				extensions = true
				if err := d.Skip(); err != nil {
					return err
				}
			case "field":
				field, err := parseField(el)
				if err != nil {
					return fmt.Errorf("message %s: %w", m.Name, err)
				}
				field.Extension = extensions
				m.Fields = append(m.Fields, field)
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if el.Name == start.Name {
				return nil
			}
		}
	}

	return nil
}

func parseField(el xml.StartElement) (Field, error) {
	var field Field
	for _, attr := range el.Attr {
		switch attr.Name.Local {
		case "type":
			field.Type = attr.Value
		case "name":
			field.Name = attr.Value
		}
	}

	if match := arrayRe.FindStringSubmatch(field.Type); match != nil {
		field.Type = match[1]
		if _, err := fmt.Sscanf(match[2], "%d", &field.ArrayLen); err != nil || field.ArrayLen == 0 {
			return field, fmt.Errorf("field %s: invalid array length", field.Name)
		}
	}

	if field.Name == "" || field.Type == "" {
		return field, fmt.Errorf("field requires name and type attributes")
	}
	if _, err := field.Size(); err != nil {
		return field, fmt.Errorf("field %s: %w", field.Name, err)
	}

	return field, nil
}

func (m *xmlMessage) message() (*Message, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("message %d: missing name", m.ID)
	}

	return &Message{
		ID:     m.ID,
		Name:   m.Name,
		Fields: m.Fields,
	}, nil
}
