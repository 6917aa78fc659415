package idl

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// InvalidParameter reports the field path of a value that failed
// validation against a TypeSpec, mirroring the source validator's
// behavior of naming the most specific field it was checking when it
// gave up (spec.md §4.3).
type InvalidParameter struct {
	Field string
}

func (e *InvalidParameter) Error() string {
	return fmt.Sprintf("invalid parameter: %s", e.Field)
}

// Validate checks value against spec, resolving named-type references
// against iface. It follows the same decision order as the source
// validator (source/interface.cpp's validate()): maybe, then dict, then
// array, then the atomic/named element check, then struct-over-object.
//
// value must already be decoded into generic Go values (map[string]any,
// []any, string, float64, bool, nil) as produced by goccy/go-json when
// unmarshaling into interface{}.
func Validate(iface *Interface, spec *TypeSpec, value interface{}) error {
	return validate(iface, spec, value, "")
}

func validate(iface *Interface, spec *TypeSpec, value interface{}, field string) error {
	if value == nil {
		if spec.Maybe {
			return nil
		}
		return invalid(field, value)
	}

	if spec.Dict {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return invalid(field, value)
		}
		elem := spec.withoutDict()
		for k, v := range obj {
			if err := validate(iface, elem, v, joinField(field, k)); err != nil {
				return err
			}
		}
		return nil
	}

	if spec.Array {
		arr, ok := value.([]interface{})
		if !ok {
			return invalid(field, value)
		}
		elem := spec.withoutArray()
		for i, v := range arr {
			if err := validate(iface, elem, v, fmt.Sprintf("%s[%d]", field, i)); err != nil {
				return err
			}
		}
		return nil
	}

	switch spec.Kind {
	case KindBool:
		if _, ok := value.(bool); !ok {
			return invalid(field, value)
		}
		return nil
	case KindInt:
		if !isInteger(value) {
			return invalid(field, value)
		}
		return nil
	case KindFloat:
		if _, ok := value.(float64); !ok {
			return invalid(field, value)
		}
		return nil
	case KindString:
		if _, ok := value.(string); !ok {
			return invalid(field, value)
		}
		return nil
	case KindObject:
		// "object" accepts any non-null JSON value (null was handled
		// above).
		return nil
	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return invalid(field, value)
		}
		for _, m := range spec.Enum {
			if m == s {
				return nil
			}
		}
		return invalid(field, value)
	case KindName:
		m, ok := iface.Type(spec.Name)
		if !ok {
			return invalid(field, value)
		}
		named := *m.Data
		named.Maybe = named.Maybe || spec.Maybe
		return validate(iface, &named, value, field)
	case KindStruct:
		return validateStruct(iface, spec, value, field)
	case KindNull:
		return invalid(field, value)
	default:
		return invalid(field, value)
	}
}

func validateStruct(iface *Interface, spec *TypeSpec, value interface{}, field string) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return invalid(field, value)
	}
	for _, f := range spec.Fields {
		v, present := obj[f.Name]
		if !present {
			if f.Type.Maybe {
				continue
			}
			return invalid(joinField(field, f.Name), nil)
		}
		if err := validate(iface, f.Type, v, joinField(field, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

// isInteger reports whether a JSON number decoded as float64 represents
// an integral value, since Varlink's "int" has no separate wire
// representation from "float" (spec.md §3).
func isInteger(value interface{}) bool {
	f, ok := value.(float64)
	if !ok {
		return false
	}
	return f == float64(int64(f))
}

func joinField(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// invalid builds an InvalidParameter error, falling back to a JSON dump
// of the offending value when no field path was threaded through
// (spec.md §4.3's "falls back to a JSON representation of the value").
func invalid(field string, value interface{}) error {
	if field != "" {
		return &InvalidParameter{Field: field}
	}
	dump, err := json.Marshal(value)
	if err != nil {
		return &InvalidParameter{Field: "<value>"}
	}
	return &InvalidParameter{Field: string(dump)}
}
