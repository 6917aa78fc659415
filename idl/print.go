package idl

import "strings"

// String re-emits iface as Varlink IDL source text. This is what C7's
// GetInterfaceDescription returns: not the originally submitted schema
// text, but a canonical re-print of the parsed model (spec.md §4.7),
// ported from the source's member.cpp to_string().
func (i *Interface) String() string {
	var b strings.Builder
	writeDoc(&b, i.Doc, "")
	b.WriteString("interface ")
	b.WriteString(i.Name)
	b.WriteString("\n")
	for _, m := range i.Members {
		b.WriteString("\n")
		writeMember(&b, m)
	}
	return b.String()
}

func writeDoc(b *strings.Builder, doc, indent string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeMember(b *strings.Builder, m *Member) {
	writeDoc(b, m.Doc, "")
	switch m.Kind {
	case MemberType:
		b.WriteString("type ")
		b.WriteString(m.Name)
		b.WriteString(" ")
		writeTypeSpec(b, m.Data, "")
		b.WriteString("\n")
	case MemberError:
		b.WriteString("error ")
		b.WriteString(m.Name)
		b.WriteString(" ")
		writeTypeSpec(b, m.Data, "")
		b.WriteString("\n")
	case MemberMethod:
		b.WriteString("method ")
		b.WriteString(m.Name)
		writeStructSpec(b, m.ParameterType(), "")
		b.WriteString(" -> ")
		writeStructSpec(b, m.ReturnType(), "")
		b.WriteString("\n")
	}
}

// writeTypeSpec prints a type-spec in the order its modifiers compose:
// maybe, then dict or array, then the base element.
func writeTypeSpec(b *strings.Builder, t *TypeSpec, indent string) {
	if t.Maybe {
		b.WriteString("?")
	}
	if t.Dict {
		b.WriteString("[string]")
	}
	if t.Array {
		b.WriteString("[]")
	}
	writeElement(b, t, indent)
}

func writeElement(b *strings.Builder, t *TypeSpec, indent string) {
	switch t.Kind {
	case KindBool, KindInt, KindFloat, KindString, KindObject:
		b.WriteString(t.Kind.String())
	case KindName:
		b.WriteString(t.Name)
	case KindEnum:
		writeEnumSpec(b, t)
	case KindStruct:
		writeStructSpec(b, t, indent)
	case KindNull:
		b.WriteString("()")
	}
}

func writeEnumSpec(b *strings.Builder, t *TypeSpec) {
	b.WriteString("(")
	b.WriteString(strings.Join(t.Enum, ", "))
	b.WriteString(")")
}

// writeStructSpec renders a struct-spec, switching to the source's
// multi-line layout whenever the struct has more than two fields or any
// field is itself array- or struct-typed (source/member.cpp's
// to_string()), four-space indent per level (spec.md §4.7).
func writeStructSpec(b *strings.Builder, t *TypeSpec, indent string) {
	if len(t.Fields) == 0 {
		b.WriteString("()")
		return
	}
	if !needsMultiLine(t) {
		b.WriteString("(")
		for idx, f := range t.Fields {
			if idx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			writeTypeSpec(b, f.Type, indent)
		}
		b.WriteString(")")
		return
	}

	inner := indent + "    "
	b.WriteString("(\n")
	for idx, f := range t.Fields {
		b.WriteString(inner)
		b.WriteString(f.Name)
		b.WriteString(": ")
		writeTypeSpec(b, f.Type, inner)
		if idx < len(t.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString(")")
}

func needsMultiLine(t *TypeSpec) bool {
	if len(t.Fields) > 2 {
		return true
	}
	for _, f := range t.Fields {
		if f.Type.Array || f.Type.Kind == KindStruct {
			return true
		}
	}
	return false
}
