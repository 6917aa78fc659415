// Package idl implements the Varlink interface definition language: a
// scanner and recursive-descent parser that build an in-memory type model,
// plus a runtime validator that checks arbitrary JSON values against it.
//
// See https://varlink.org/Interface-Definition
package idl

import "fmt"

// Kind identifies the shape of a TypeSpec's base type.
type Kind int

const (
	// KindNull is the zero Kind. The parser never produces it: an empty
	// struct "()" parses as KindStruct with no fields.
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	// KindName is a reference to a named type declared elsewhere in the
	// same interface ("type Foo (...)").
	KindName
	KindEnum
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindName:
		return "name"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field is one (name, type) pair of a struct, in declaration order.
type Field struct {
	Name string
	Type *TypeSpec
}

// TypeSpec describes a Varlink type: a base type plus the three
// independent modifiers maybe/dict/array (spec.md §3).
type TypeSpec struct {
	Kind Kind

	// Name holds the referenced type name when Kind == KindName.
	Name string
	// Enum holds the ordered member list when Kind == KindEnum.
	Enum []string
	// Fields holds the ordered field list when Kind == KindStruct.
	Fields []Field

	Maybe bool
	Dict  bool
	Array bool
}

// withoutArray returns a shallow copy of spec with the Array modifier
// cleared, used by the validator when it descends into array elements
// (spec.md §4.3 step 2).
func (t *TypeSpec) withoutArray() *TypeSpec {
	cp := *t
	cp.Array = false
	return &cp
}

// withoutDict mirrors withoutArray for dict element descent (§4.3 step 3).
func (t *TypeSpec) withoutDict() *TypeSpec {
	cp := *t
	cp.Dict = false
	return &cp
}

// field looks up a struct field by name.
func (t *TypeSpec) field(name string) (*TypeSpec, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// MemberKind distinguishes the three kinds of top-level interface members.
type MemberKind int

const (
	MemberType MemberKind = iota
	MemberError
	MemberMethod
)

func (k MemberKind) String() string {
	switch k {
	case MemberType:
		return "type"
	case MemberError:
		return "error"
	case MemberMethod:
		return "method"
	default:
		return fmt.Sprintf("MemberKind(%d)", int(k))
	}
}

// Member is a tagged union over Type(spec) | Error(spec) | Method(params, return).
//
// For a Method, Data is always a struct of exactly two fields, "parameters"
// and "return_value" (spec.md §3), accessible through ParameterType and
// ReturnType.
type Member struct {
	Kind MemberKind
	Name string
	Doc  string
	Data *TypeSpec
}

// ParameterType returns a method's parameter struct type.
func (m *Member) ParameterType() *TypeSpec {
	if m.Kind != MemberMethod {
		panic("idl: ParameterType of a non-method member")
	}
	return m.Data.Fields[0].Type
}

// ReturnType returns a method's return-value struct type.
func (m *Member) ReturnType() *TypeSpec {
	if m.Kind != MemberMethod {
		panic("idl: ReturnType of a non-method member")
	}
	return m.Data.Fields[1].Type
}

// Interface is the parsed form of a Varlink schema: a name, leading
// documentation, and an ordered list of members. Member names are unique
// across all kinds (spec.md §3).
type Interface struct {
	Name string
	Doc  string

	Members []*Member

	// byName indexes Members for O(1) lookup during validation and
	// dispatch; Members remains the source of truth for ordered
	// re-emission (see idl/print.go and design notes in spec.md §9).
	byName map[string]*Member
}

func newInterface(name, doc string) *Interface {
	return &Interface{Name: name, Doc: doc, byName: make(map[string]*Member)}
}

func (i *Interface) addMember(m *Member) error {
	if _, exists := i.byName[m.Name]; exists {
		return &ParseError{Message: fmt.Sprintf("duplicate member name %q", m.Name)}
	}
	i.byName[m.Name] = m
	i.Members = append(i.Members, m)
	return nil
}

// Member looks up any member by name regardless of kind.
func (i *Interface) Member(name string) (*Member, bool) {
	m, ok := i.byName[name]
	return m, ok
}

// Method looks up a method member by name.
func (i *Interface) Method(name string) (*Member, bool) {
	m, ok := i.byName[name]
	if !ok || m.Kind != MemberMethod {
		return nil, false
	}
	return m, true
}

// Type looks up a named type member by name.
func (i *Interface) Type(name string) (*Member, bool) {
	m, ok := i.byName[name]
	if !ok || m.Kind != MemberType {
		return nil, false
	}
	return m, true
}

// Error looks up a named error member by name.
func (i *Interface) Error(name string) (*Member, bool) {
	m, ok := i.byName[name]
	if !ok || m.Kind != MemberError {
		return nil, false
	}
	return m, true
}

// ParseError is raised by the scanner or parser on malformed input
// (spec.md §4.1's "failure mode" and §4.2's parse-time checks).
type ParseError struct {
	Position int
	Snippet  string
	Message  string
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("idl: %s (at %d: %q)", e.Message, e.Position, e.Snippet)
	}
	return fmt.Sprintf("idl: %s", e.Message)
}
