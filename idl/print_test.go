package idl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// reparse round-trips a parsed interface through String() and Parse()
// again, the property exercised by GetInterfaceDescription (spec.md §8).
func reparse(t *testing.T, iface *Interface) *Interface {
	t.Helper()
	text := iface.String()
	again, err := Parse(text)
	require.NoError(t, err, "re-printed text did not parse back:\n%s", text)
	return again
}

var ifaceCmpOpts = cmp.Options{
	cmp.AllowUnexported(Interface{}),
	cmpopts.IgnoreFields(Interface{}, "byName"),
}

func TestPrintRoundTripIsStructurallyEqual(t *testing.T) {
	iface, err := Parse(serviceDescription)
	require.NoError(t, err)
	again := reparse(t, iface)
	if diff := cmp.Diff(iface, again, ifaceCmpOpts); diff != "" {
		t.Errorf("round-trip mismatch (-original +reprinted):\n%s", diff)
	}
}

func TestPrintStructMultiLineThreshold(t *testing.T) {
	iface, err := Parse(`
interface org.example.layout
method Two(a: int, b: int) -> ()
method Three(a: int, b: int, c: int) -> ()
method WithArrayField(a: int, list: []string) -> ()
`)
	require.NoError(t, err)

	two, _ := iface.Method("Two")
	var b strings.Builder
	writeStructSpec(&b, two.ParameterType(), "")
	require.NotContains(t, b.String(), "\n", "two fields should stay inline")

	three, _ := iface.Method("Three")
	b.Reset()
	writeStructSpec(&b, three.ParameterType(), "")
	require.Contains(t, b.String(), "\n", "more than two fields forces multi-line")

	withArray, _ := iface.Method("WithArrayField")
	b.Reset()
	writeStructSpec(&b, withArray.ParameterType(), "")
	require.Contains(t, b.String(), "\n", "an array-typed field forces multi-line")
}

func TestPrintRoundTripNestedAndModifiers(t *testing.T) {
	iface, err := Parse(`
interface org.example.roundtrip

type Color (red, green, blue)

method Render(shape: (kind: Color, points: []?int, tags: [string]string)) -> (ok: bool)
`)
	require.NoError(t, err)
	again := reparse(t, iface)
	if diff := cmp.Diff(iface, again, ifaceCmpOpts); diff != "" {
		t.Errorf("round-trip mismatch (-original +reprinted):\n%s", diff)
	}
}
