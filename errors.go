package varlink

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Error is a Varlink error reply: an interface-qualified error name plus
// an arbitrary JSON parameters object (spec.md §6, §7).
type Error struct {
	Name       string
	Parameters json.RawMessage
}

func (e *Error) Error() string {
	if len(e.Parameters) == 0 {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, string(e.Parameters))
}

// NewError builds an Error whose Parameters are the JSON encoding of params.
func NewError(name string, params interface{}) *Error {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = json.RawMessage("{}")
	}
	return &Error{Name: name, Parameters: raw}
}

// Unmarshal decodes the error's parameters into v.
func (e *Error) Unmarshal(v interface{}) error {
	if len(e.Parameters) == 0 {
		return nil
	}
	return json.Unmarshal(e.Parameters, v)
}

// The built-in errors every Varlink service may return (spec.md §7).
const (
	ErrInterfaceNotFound    = "org.varlink.service.InterfaceNotFound"
	ErrMethodNotFound       = "org.varlink.service.MethodNotFound"
	ErrMethodNotImplemented = "org.varlink.service.MethodNotImplemented"
	ErrInvalidParameter     = "org.varlink.service.InvalidParameter"
)

// ErrorInterfaceNotFound builds the built-in InterfaceNotFound error.
func ErrorInterfaceNotFound(iface string) *Error {
	return NewError(ErrInterfaceNotFound, map[string]string{"interface": iface})
}

// ErrorMethodNotFound builds the built-in MethodNotFound error.
func ErrorMethodNotFound(method string) *Error {
	return NewError(ErrMethodNotFound, map[string]string{"method": method})
}

// ErrorMethodNotImplemented builds the built-in MethodNotImplemented error.
func ErrorMethodNotImplemented(method string) *Error {
	return NewError(ErrMethodNotImplemented, map[string]string{"method": method})
}

// ErrorInvalidParameter builds the built-in InvalidParameter error.
func ErrorInvalidParameter(parameter string) *Error {
	return NewError(ErrInvalidParameter, map[string]string{"parameter": parameter})
}

// internalError wraps an unexpected, non-protocol failure (I/O errors,
// JSON decode failures below the message level) so callers can still
// distinguish it from a well-formed Varlink error reply.
type internalError struct {
	cause error
}

func (e *internalError) Error() string { return "varlink: internal error: " + e.cause.Error() }
func (e *internalError) Unwrap() error { return e.cause }
