package varlink

import (
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Address describes where to dial or listen, parsed from a Varlink
// address string (spec.md §4.4), ported from the source's varlink_uri:
// everything from the first ';' onward is parameters and is discarded,
// an optional "/Interface.Method" suffix is split off, and the remainder
// is dispatched on its "unix:" or "tcp:" scheme.
type Address struct {
	// Network is "unix" or "tcp", as passed to net.Dial/net.Listen.
	Network string
	// Address is the dial/listen address: a socket path for "unix", or
	// "host:port" for "tcp".
	Address string
	// Qualified is the optional "/Interface.Method" suffix, empty if absent.
	Qualified string
}

// ParseAddress parses a Varlink address such as
// "unix:/run/org.example.service" or "tcp:127.0.0.1:9123".
func ParseAddress(s string) (*Address, error) {
	if semi := strings.IndexByte(s, ';'); semi >= 0 {
		s = s[:semi]
	}

	isTCP := strings.HasPrefix(s, "tcp:")

	// The source only splits off a trailing "/Interface.Method" when the
	// caller told it to expect one (has_interface) or the scheme is tcp,
	// where a bare host:port can never itself contain a '/'. ParseAddress
	// has no such flag, so a unix path is only split when its final
	// segment actually looks like a qualified method reference — a unix
	// socket path component ending in "Interface.Method" is otherwise
	// indistinguishable from one that merely happens to contain dots.
	path := s
	qualified := ""
	if slash := strings.LastIndexByte(s, '/'); slash >= 0 {
		candidate := s[slash+1:]
		if isTCP || looksQualified(candidate) {
			path = s[:slash]
			qualified = candidate
		}
	}

	switch {
	case strings.HasPrefix(path, "unix:"):
		addr := strings.TrimPrefix(path, "unix:")
		// A leading '@' (abstract socket) is kept unexpanded: net.Dial and
		// net.Listen map it to the abstract namespace themselves.
		if addr == "" {
			return nil, errors.New("varlink: empty unix socket path")
		}
		return &Address{Network: "unix", Address: addr, Qualified: qualified}, nil
	case isTCP:
		addr := strings.TrimPrefix(path, "tcp:")
		if addr == "" {
			return nil, errors.New("varlink: empty tcp address")
		}
		if err := validateTCPAddr(addr); err != nil {
			return nil, err
		}
		return &Address{Network: "tcp", Address: addr, Qualified: qualified}, nil
	default:
		return nil, errors.Errorf("varlink: unsupported address scheme in %q", s)
	}
}

// looksQualified reports whether s, the path component following the
// final '/', looks like a fully-qualified "interface.Method" reference
// (e.g. "org.example.Foo.Bar") rather than an ordinary trailing path
// segment (e.g. "org.example.service"): the interface portion must
// itself be dotted, and Varlink method names start with an uppercase
// letter.
func looksQualified(s string) bool {
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	iface, method := s[:dot], s[dot+1:]
	if !strings.Contains(iface, ".") {
		return false
	}
	return method[0] >= 'A' && method[0] <= 'Z'
}

// validateTCPAddr enforces spec.md §4.4: the host of a "tcp:" address
// must be an IPv4 literal and the port a decimal value fitting uint16,
// matching the source's make_address_v4/from_chars<uint16_t> checks.
func validateTCPAddr(addr string) error {
	colon := strings.IndexByte(addr, ':')
	if colon < 0 {
		return errors.Errorf("varlink: tcp address %q missing port", addr)
	}
	host, port := addr[:colon], addr[colon+1:]

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return errors.Errorf("varlink: tcp address host %q is not an IPv4 literal", host)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return errors.Errorf("varlink: tcp address port %q is not a valid uint16", port)
	}
	return nil
}
