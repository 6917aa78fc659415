package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceDescription = `
# The Varlink Service Interface is provided by every varlink service. It
# describes the service and the interfaces it implements.
interface org.varlink.service

# Get information about a service.
method GetInfo() -> (
	vendor: string,
	product: string,
	version: string,
	url: string,
	interfaces: []string
)

# Get the description of an interface that is implemented by this service.
method GetInterfaceDescription(interface: string) -> (description: string)

# The requested interface was not found.
error InterfaceNotFound (interface: string)

# The requested method was not found
error MethodNotFound (method: string)

# The interface defines the requested method, but the service does not
# implement it.
error MethodNotImplemented (method: string)

# One of the passed parameters is invalid.
error InvalidParameter (parameter: string)
`

func TestParseServiceInterface(t *testing.T) {
	iface, err := Parse(serviceDescription)
	require.NoError(t, err)
	assert.Equal(t, "org.varlink.service", iface.Name)
	assert.Contains(t, iface.Doc, "Varlink Service Interface")

	getInfo, ok := iface.Method("GetInfo")
	require.True(t, ok)
	assert.Empty(t, getInfo.ParameterType().Fields)
	ret := getInfo.ReturnType()
	require.Len(t, ret.Fields, 5)
	assert.Equal(t, "interfaces", ret.Fields[4].Name)
	assert.True(t, ret.Fields[4].Type.Array)
	assert.Equal(t, KindString, ret.Fields[4].Type.Kind)

	_, ok = iface.Error("InvalidParameter")
	assert.True(t, ok)
}

func TestParseEnumAndNamedType(t *testing.T) {
	src := `
interface org.example.colors

type Color (red, green, blue)

method Paint(color: Color) -> (ok: bool)
`
	iface, err := Parse(src)
	require.NoError(t, err)

	colorType, ok := iface.Type("Color")
	require.True(t, ok)
	assert.Equal(t, KindEnum, colorType.Data.Kind)
	assert.Equal(t, []string{"red", "green", "blue"}, colorType.Data.Enum)

	paint, ok := iface.Method("Paint")
	require.True(t, ok)
	colorField, ok := paint.ParameterType().field("color")
	require.True(t, ok)
	assert.Equal(t, KindName, colorField.Kind)
	assert.Equal(t, "Color", colorField.Name)
}

func TestParseModifierComposition(t *testing.T) {
	src := `
interface org.example.mods

type T (a: ?[]string, b: []?string, c: [string]?int)
`
	iface, err := Parse(src)
	require.NoError(t, err)
	ty, _ := iface.Type("T")

	a, _ := ty.Data.field("a")
	assert.True(t, a.Maybe)
	assert.True(t, a.Array)
	assert.Equal(t, KindString, a.Kind)

	b, _ := ty.Data.field("b")
	assert.True(t, b.Maybe)
	assert.True(t, b.Array)

	c, _ := ty.Data.field("c")
	assert.True(t, c.Maybe)
	assert.True(t, c.Dict)
	assert.Equal(t, KindInt, c.Kind)
}

func TestParseRejectsDoubleMaybe(t *testing.T) {
	_, err := Parse("interface org.example.bad\ntype T ??string\n")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseRejectsDuplicateMemberName(t *testing.T) {
	src := `
interface org.example.dup

type Foo string
method Foo() -> ()
`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseRejectsEmptyInterface(t *testing.T) {
	_, err := Parse("interface org.example.empty\n")
	require.Error(t, err)
}

func TestParseNestedInlineStructFields(t *testing.T) {
	src := `
interface org.example.point

method Move(p: (x: int, y: int)) -> ()
`
	iface, err := Parse(src)
	require.NoError(t, err)
	move, ok := iface.Method("Move")
	require.True(t, ok)
	p, ok := move.ParameterType().field("p")
	require.True(t, ok)
	assert.Equal(t, KindStruct, p.Kind)
	require.Len(t, p.Fields, 2)
	assert.Equal(t, "x", p.Fields[0].Name)
	assert.Equal(t, "y", p.Fields[1].Name)
}
