package idl

import "fmt"

// Parse reads a complete Varlink interface description and returns its
// type model (spec.md §4.2). It is a recursive-descent parser with one
// token of lookahead, matching the grammar:
//
//	interface      = 'interface' interface-name (member)+
//	member         = 'type'   Name type-spec
//	               | 'error'  Name type-spec
//	               | 'method' Name struct-spec '->' struct-spec
//	type-spec      = '?'? (dict | array)? element
//	dict           = '[string]'
//	array          = '[]'
//	element        = atomic | Name | struct-spec | enum-spec
//	struct-spec    = '(' field (',' field)* ')' | '(' ')'
//	field          = identifier ':' type-spec
//	enum-spec      = '(' identifier (',' identifier)* ')'
func Parse(description string) (*Interface, error) {
	p := &parser{s: newScanner(description)}
	return p.parseInterface()
}

type parser struct {
	s *scanner
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &ParseError{Position: p.s.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) next() (string, error) {
	tok, ok := p.s.next()
	if !ok {
		return "", p.errf("unexpected end of input")
	}
	return tok, nil
}

func (p *parser) expect(want string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok != want {
		return p.errf("expected %q, got %q", want, tok)
	}
	return nil
}

func (p *parser) parseInterface() (*Interface, error) {
	if err := p.expect("interface"); err != nil {
		return nil, err
	}
	name, err := p.next()
	if err != nil {
		return nil, err
	}
	if !isInterfaceName(name) {
		return nil, p.errf("invalid interface name %q", name)
	}
	doc := p.s.takeDoc()
	iface := newInterface(name, doc)

	for {
		tok, ok := p.s.next()
		if !ok {
			break
		}
		member, err := p.parseMember(tok)
		if err != nil {
			return nil, err
		}
		if err := iface.addMember(member); err != nil {
			return nil, err
		}
	}

	if len(iface.Members) == 0 {
		return nil, p.errf("interface %q has no members", name)
	}
	return iface, nil
}

func (p *parser) parseMember(keyword string) (*Member, error) {
	var kind MemberKind
	switch keyword {
	case "type":
		kind = MemberType
	case "error":
		kind = MemberError
	case "method":
		kind = MemberMethod
	default:
		return nil, p.errf("expected one of \"type\", \"error\", \"method\", got %q", keyword)
	}

	name, err := p.next()
	if err != nil {
		return nil, err
	}
	if !isMemberName(name) {
		return nil, p.errf("invalid member name %q", name)
	}
	doc := p.s.takeDoc()

	var data *TypeSpec
	if kind == MemberMethod {
		data, err = p.parseMethodSpec()
	} else {
		data, err = p.parseTypeSpec()
	}
	if err != nil {
		return nil, err
	}

	return &Member{Kind: kind, Name: name, Doc: doc, Data: data}, nil
}

func (p *parser) parseMethodSpec() (*TypeSpec, error) {
	params, err := p.parseStructSpec()
	if err != nil {
		return nil, err
	}
	if err := p.expect("->"); err != nil {
		return nil, err
	}
	ret, err := p.parseStructSpec()
	if err != nil {
		return nil, err
	}
	return &TypeSpec{Kind: KindStruct, Fields: []Field{
		{Name: "parameters", Type: params},
		{Name: "return_value", Type: ret},
	}}, nil
}

// parseTypeSpec parses '?'? (dict|array)? element, recursing through each
// modifier exactly as the source scanner does, so that a modifier
// appearing in any grammatical position (e.g. "[]?T") still composes onto
// a single flat TypeSpec (spec.md §4.2, §9's note on the source not
// supporting "?[]" when missing).
func (p *parser) parseTypeSpec() (*TypeSpec, error) {
	return p.parseTypeSpecMaybe(false)
}

func (p *parser) parseTypeSpecMaybe(wasMaybe bool) (*TypeSpec, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok {
	case "?":
		if wasMaybe {
			return nil, p.errf("'?' may appear only once per type-spec")
		}
		inner, err := p.parseTypeSpecMaybe(true)
		if err != nil {
			return nil, err
		}
		inner.Maybe = true
		return inner, nil
	case "[string]":
		inner, err := p.parseTypeSpecMaybe(false)
		if err != nil {
			return nil, err
		}
		inner.Dict = true
		return inner, nil
	case "[]":
		inner, err := p.parseTypeSpecMaybe(false)
		if err != nil {
			return nil, err
		}
		inner.Array = true
		return inner, nil
	case "(":
		return p.parseStructOrEnumBody()
	default:
		return p.parseElementFromToken(tok)
	}
}

func (p *parser) parseElementFromToken(tok string) (*TypeSpec, error) {
	if k, ok := atomicKind(tok); ok {
		return &TypeSpec{Kind: k}, nil
	}
	if !isIdentifier(tok) {
		return nil, p.errf("expected a type, got %q", tok)
	}
	return &TypeSpec{Kind: KindName, Name: tok}, nil
}

func atomicKind(tok string) (Kind, bool) {
	switch tok {
	case "bool":
		return KindBool, true
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "string":
		return KindString, true
	case "object":
		return KindObject, true
	default:
		return 0, false
	}
}

// parseStructSpec parses a struct-spec in a context where an enum-spec is
// not grammatically legal (method parameter/return lists).
func (p *parser) parseStructSpec() (*TypeSpec, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	spec, err := p.parseStructOrEnumBody()
	if err != nil {
		return nil, err
	}
	if spec.Kind == KindEnum {
		return nil, p.errf("expected a struct, got an enum")
	}
	return spec, nil
}

// parseStructOrEnumBody parses the body of "(...)" after the opening
// paren has been consumed, disambiguating struct vs enum by looking one
// token past the first identifier: ':' commits to struct, ',' or ')'
// commits to enum (spec.md §4.2).
func (p *parser) parseStructOrEnumBody() (*TypeSpec, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok == ")" {
		return &TypeSpec{Kind: KindStruct}, nil
	}

	// The first identifier is shared between both forms; the token
	// immediately after it tells us which one we're in: ':' commits to a
	// field (struct), ',' or ')' commits to an enum member.
	name := tok
	if !isIdentifier(name) {
		return nil, p.errf("expected a field or enum member name, got %q", name)
	}
	sep, err := p.next()
	if err != nil {
		return nil, err
	}
	switch sep {
	case ":":
		return p.parseStructFields(name)
	case ",", ")":
		return p.parseEnumMembers(name, sep)
	default:
		return nil, p.errf("expected \":\" or \",\", got %q", sep)
	}
}

// parseStructFields parses the remaining "name: type, ...)" fields of a
// struct-spec whose first field's name has already been read and whose
// ':' has already been consumed.
func (p *parser) parseStructFields(firstName string) (*TypeSpec, error) {
	var fields []Field
	name := firstName
	for {
		fieldType, err := p.parseTypeSpec()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: fieldType})

		closing, err := p.next()
		if err != nil {
			return nil, err
		}
		switch closing {
		case ")":
			return &TypeSpec{Kind: KindStruct, Fields: fields}, nil
		case ",":
			name, err = p.next()
			if err != nil {
				return nil, err
			}
			if !isIdentifier(name) {
				return nil, p.errf("expected a field name, got %q", name)
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
		default:
			return nil, p.errf("expected \",\" or \")\", got %q", closing)
		}
	}
}

// parseEnumMembers parses the remaining "name, name, ...)" members of an
// enum-spec whose first member's name has already been read, along with
// the separator token that followed it (',' or ')').
func (p *parser) parseEnumMembers(firstName, sep string) (*TypeSpec, error) {
	enum := []string{firstName}
	for sep != ")" {
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		if !isIdentifier(name) {
			return nil, p.errf("invalid enum member %q", name)
		}
		enum = append(enum, name)

		sep, err = p.next()
		if err != nil {
			return nil, err
		}
		if sep != "," && sep != ")" {
			return nil, p.errf("expected \",\" or \")\", got %q", sep)
		}
	}
	return &TypeSpec{Kind: KindEnum, Enum: enum}, nil
}
