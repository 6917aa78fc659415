package varlink

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltinServiceAlwaysPresent(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	assert.Contains(t, r.names(), "org.varlink.service")
}

func TestAddInterfaceRejectsUnknownHandlerMethod(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	err := r.AddInterface(`
interface org.example.x
method Foo() -> ()
`, map[string]interface{}{
		"Bar": SyncFunc(func(call *ServerCall, params json.RawMessage) (interface{}, error) {
			return nil, nil
		}),
	})
	require.Error(t, err)
}

func TestAddInterfaceRejectsWrongHandlerType(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	err := r.AddInterface(`
interface org.example.y
method Foo() -> ()
`, map[string]interface{}{
		"Foo": func() {},
	})
	require.Error(t, err)
}

func TestAddInterfaceRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	desc := "interface org.example.z\nmethod Foo() -> ()\n"
	handlers := map[string]interface{}{
		"Foo": SyncFunc(func(call *ServerCall, params json.RawMessage) (interface{}, error) {
			return nil, nil
		}),
	}
	require.NoError(t, r.AddInterface(desc, handlers))
	require.Error(t, r.AddInterface(desc, handlers))
}

func TestResolveMethodNotImplementedWhenUnwired(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	require.NoError(t, r.AddInterface(`
interface org.example.partial
method Foo() -> ()
method Bar() -> ()
`, map[string]interface{}{
		"Foo": SyncFunc(func(call *ServerCall, params json.RawMessage) (interface{}, error) {
			return nil, nil
		}),
	}))

	_, _, _, err := r.resolve("org.example.partial.Bar")
	require.Error(t, err)
	verr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrMethodNotImplemented, verr.Name)
}
