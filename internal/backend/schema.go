package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType declares the expected JSON type of a reply field.
type FieldType int

const (
	FieldNumber FieldType = iota
	FieldString
	FieldStringList
)

// Field is one expected reply attribute. Enum, when set, restricts a
// string field to the listed values (case-insensitive on input).
type Field struct {
	Name     string
	Type     FieldType
	Enum     []string
	Optional bool
}

// Schema declares the field set an adapter must request and validate.
type Schema struct {
	Name   string
	Fields []Field
}

// Instructions renders the JSON-only response contract appended to every
// prompt, with an example value per field.
func (s *Schema) Instructions() string {
	var b strings.Builder
	b.WriteString("\nIMPORTANT: Respond ONLY with valid JSON in this exact format:\n{\n")
	for i, f := range s.Fields {
		b.WriteString(fmt.Sprintf("  %q: ", f.Name))
		switch f.Type {
		case FieldNumber:
			b.WriteString("7.5")
		case FieldString:
			if len(f.Enum) > 0 {
				b.WriteString(fmt.Sprintf("%q", f.Enum[0]))
			} else {
				b.WriteString(`"short text"`)
			}
		case FieldStringList:
			b.WriteString(`["item1", "item2"]`)
		}
		if i < len(s.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	for _, f := range s.Fields {
		if len(f.Enum) > 0 {
			b.WriteString(fmt.Sprintf("%q must be one of: %s.\n", f.Name, strings.Join(f.Enum, ", ")))
		}
	}
	b.WriteString("Do not include any other text outside the JSON.\n")
	return b.String()
}

// Parse extracts the JSON object from raw model output and validates it
// against the schema, returning canonical typed fields.
func (s *Schema) Parse(content string) (map[string]interface{}, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON in reply: %w", err)
	}

	fields := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		val, ok := raw[f.Name]
		if !ok || val == nil {
			if f.Optional {
				continue
			}
			return nil, fmt.Errorf("missing field %q", f.Name)
		}

		switch f.Type {
		case FieldNumber:
			num, ok := val.(float64)
			if !ok {
				// Models sometimes quote numbers.
				str, sok := val.(string)
				if !sok {
					return nil, fmt.Errorf("field %q: expected number, got %T", f.Name, val)
				}
				if _, err := fmt.Sscanf(strings.TrimSpace(str), "%f", &num); err != nil {
					return nil, fmt.Errorf("field %q: expected number, got %q", f.Name, str)
				}
			}
			fields[f.Name] = num

		case FieldString:
			str, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("field %q: expected string, got %T", f.Name, val)
			}
			str = strings.TrimSpace(str)
			if len(f.Enum) > 0 {
				matched := ""
				for _, e := range f.Enum {
					if strings.EqualFold(e, str) {
						matched = e
						break
					}
				}
				if matched == "" {
					return nil, fmt.Errorf("field %q: %q not in %v", f.Name, str, f.Enum)
				}
				str = matched
			}
			fields[f.Name] = str

		case FieldStringList:
			items, ok := val.([]interface{})
			if !ok {
				return nil, fmt.Errorf("field %q: expected list, got %T", f.Name, val)
			}
			list := make([]string, 0, len(items))
			for _, item := range items {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("field %q: list item is %T, not string", f.Name, item)
				}
				if str = strings.TrimSpace(str); str != "" {
					list = append(list, str)
				}
			}
			fields[f.Name] = list
		}
	}

	return fields, nil
}
