package varlink

import (
	"sort"

	json "github.com/goccy/go-json"

	"github.com/go-varlink/varlink/idl"
)

// registerBuiltinService wires the org.varlink.service interface every
// Varlink endpoint must expose (spec.md §7), embedded from
// org.varlink.service.varlink and backed by the handlers below.
func (r *Registry) registerBuiltinService() {
	iface, err := idl.Parse(serviceDescription)
	if err != nil {
		// The embedded schema is a build-time constant; a parse failure
		// here means the embedded file is broken, not a runtime condition.
		panic("varlink: built-in org.varlink.service description does not parse: " + err.Error())
	}

	ri := &registeredInterface{iface: iface, handlers: make(map[string]handler)}
	ri.handlers["GetInfo"] = handler{sync: r.getInfo}
	ri.handlers["GetInterfaceDescription"] = handler{sync: r.getInterfaceDescription}

	r.interfaces[iface.Name] = ri
}

func (r *Registry) getInfo(call *ServerCall, params json.RawMessage) (interface{}, error) {
	names := r.names()
	sort.Strings(names)
	return map[string]interface{}{
		"vendor":     r.opts.Vendor,
		"product":    r.opts.Product,
		"version":    r.opts.Version,
		"url":        r.opts.URL,
		"interfaces": names,
	}, nil
}

func (r *Registry) getInterfaceDescription(call *ServerCall, params json.RawMessage) (interface{}, error) {
	var in struct {
		Interface string `json:"interface"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, ErrorInvalidParameter("interface")
	}

	r.mu.RLock()
	ri, ok := r.interfaces[in.Interface]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrorInterfaceNotFound(in.Interface)
	}

	return map[string]string{"description": ri.iface.String()}, nil
}
