package varlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageModes(t *testing.T) {
	cases := []struct {
		raw  string
		mode CallMode
	}{
		{`{"method":"org.example.Foo.Bar"}`, CallBasic},
		{`{"method":"org.example.Foo.Bar","more":true}`, CallMore},
		{`{"method":"org.example.Foo.Bar","oneway":true}`, CallOneway},
		{`{"method":"org.example.Foo.Bar","upgrade":true}`, CallUpgrade},
	}
	for _, tc := range cases {
		msg, err := ParseMessage([]byte(tc.raw))
		require.NoError(t, err)
		assert.Equal(t, tc.mode, msg.Mode)
	}
}

func TestMessageInterfaceAndMethod(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"method":"org.varlink.service.GetInfo"}`))
	require.NoError(t, err)
	assert.Equal(t, "org.varlink.service", msg.Interface())
	assert.Equal(t, "GetInfo", msg.Method())
}

func TestParseMessageRejectsMissingMethod(t *testing.T) {
	_, err := ParseMessage([]byte(`{}`))
	require.Error(t, err)
}

func TestParseMessageAcceptsUnqualifiedMethod(t *testing.T) {
	// ParseMessage itself doesn't reject a method with no interface
	// prefix; the source's Message constructor doesn't either. An
	// unqualified method only fails once resolution is attempted,
	// reported as a recoverable InterfaceNotFound rather than a parse
	// failure that closes the connection.
	msg, err := ParseMessage([]byte(`{"method":"Bar"}`))
	require.NoError(t, err)
	assert.Empty(t, msg.Interface())
	assert.Equal(t, "Bar", msg.Method())
}

func TestParseMessageDefaultsEmptyParameters(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"method":"org.example.Foo.Bar"}`))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(msg.Parameters))
}

func TestParseMessageRejectsNonObjectParameters(t *testing.T) {
	_, err := ParseMessage([]byte(`{"method":"org.example.Foo.Bar","parameters":[1,2,3]}`))
	require.Error(t, err)
}

func TestParseMessageRejectsScalarParameters(t *testing.T) {
	_, err := ParseMessage([]byte(`{"method":"org.example.Foo.Bar","parameters":"oops"}`))
	require.Error(t, err)
}
