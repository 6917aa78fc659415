package varlink

import (
	_ "embed"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/go-varlink/varlink/idl"
)

//go:embed org.varlink.service.varlink
var serviceDescription string

// SyncFunc answers a "basic" or "oneway" call with a single reply.
type SyncFunc func(call *ServerCall, params json.RawMessage) (interface{}, error)

// StreamFunc answers a "more" call, pushing zero or more replies through
// call.Reply before a final call.CloseWithReply (spec.md §4.8, §9.1's
// tagged-union handler dispatch: a method is backed by exactly one of
// SyncFunc or StreamFunc, never both, and the registry picks the right
// one to invoke based on which was registered).
type StreamFunc func(call *ServerCall, params json.RawMessage) error

// handler is the tagged union a registered method resolves to.
type handler struct {
	sync   SyncFunc
	stream StreamFunc
}

type registeredInterface struct {
	iface    *idl.Interface
	handlers map[string]handler
}

// RegistryOptions describes the service identity returned by the
// built-in org.varlink.service.GetInfo method (spec.md §7).
type RegistryOptions struct {
	Vendor  string
	Product string
	Version string
	URL     string
}

// Registry holds the set of interfaces a Server dispatches to, keyed by
// interface name, each with its handlers keyed by method name (C7).
type Registry struct {
	opts RegistryOptions

	mu         sync.RWMutex
	interfaces map[string]*registeredInterface
}

// NewRegistry returns a Registry with the built-in org.varlink.service
// interface already registered.
func NewRegistry(opts RegistryOptions) *Registry {
	r := &Registry{opts: opts, interfaces: make(map[string]*registeredInterface)}
	r.registerBuiltinService()
	return r
}

// AddInterface parses description and registers it with handlers, keyed
// by method name. Every handler must name a method the description
// declares and must be a SyncFunc or a StreamFunc. A declared method
// without a handler is accepted; calls to it are answered with
// MethodNotImplemented.
func (r *Registry) AddInterface(description string, handlers map[string]interface{}) error {
	iface, err := idl.Parse(description)
	if err != nil {
		return err
	}

	hs := make(map[string]handler, len(handlers))
	for name, h := range handlers {
		m, ok := iface.Method(name)
		if !ok {
			return &idl.ParseError{Message: "handler for undeclared method " + name}
		}
		switch fn := h.(type) {
		case SyncFunc:
			hs[m.Name] = handler{sync: fn}
		case StreamFunc:
			hs[m.Name] = handler{stream: fn}
		default:
			return &idl.ParseError{Message: "handler for " + name + " is neither a SyncFunc nor a StreamFunc"}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.interfaces[iface.Name]; exists {
		return &idl.ParseError{Message: "interface " + iface.Name + " already registered"}
	}
	r.interfaces[iface.Name] = &registeredInterface{iface: iface, handlers: hs}
	return nil
}

// names returns every registered interface name in no particular order;
// getInfo sorts them.
func (r *Registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.interfaces))
	for n := range r.interfaces {
		names = append(names, n)
	}
	return names
}

// resolve looks up the method and its handler, returning the built-in
// errors spec.md §7 defines for each failure (unknown interface, unknown
// method, or a method the IDL declares but no handler backs).
func (r *Registry) resolve(qualified string) (*idl.Interface, *idl.Member, handler, error) {
	msg := &Message{Qualified: qualified}
	ifaceName, methodName := msg.splitMethod()

	r.mu.RLock()
	defer r.mu.RUnlock()

	ri, ok := r.interfaces[ifaceName]
	if !ok {
		return nil, nil, handler{}, ErrorInterfaceNotFound(ifaceName)
	}
	m, ok := ri.iface.Method(methodName)
	if !ok {
		return nil, nil, handler{}, ErrorMethodNotFound(methodName)
	}
	h, ok := ri.handlers[methodName]
	if !ok {
		return nil, nil, handler{}, ErrorMethodNotImplemented(methodName)
	}
	return ri.iface, m, h, nil
}
