package varlink

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// CallMode distinguishes the four call modes a request's "more"/"oneway"/
// "upgrade" flags select (spec.md §6).
type CallMode int

const (
	CallBasic CallMode = iota
	CallMore
	CallOneway
	CallUpgrade
)

func (m CallMode) String() string {
	switch m {
	case CallMore:
		return "more"
	case CallOneway:
		return "oneway"
	case CallUpgrade:
		return "upgrade"
	default:
		return "basic"
	}
}

// wireRequest is the JSON shape of a request as it appears on the wire
// (spec.md §6).
type wireRequest struct {
	Method     string          `json:"method"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	More       bool            `json:"more,omitempty"`
	Oneway     bool            `json:"oneway,omitempty"`
	Upgrade    bool            `json:"upgrade,omitempty"`
}

// wireReply is the JSON shape of a reply as it appears on the wire.
// Continues uses a pointer so that an explicit "continues": false (the
// terminal reply of a streaming call) is still serialized, while it is
// omitted entirely for non-"more" calls (spec.md §6).
type wireReply struct {
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Continues  *bool           `json:"continues,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Message is a parsed incoming request (spec.md §6).
type Message struct {
	Qualified  string
	Parameters json.RawMessage
	Mode       CallMode
}

// ParseMessage decodes a raw wire request into a Message. Any error it
// returns is a malformed-message failure (spec.md §4.6): the request's
// JSON is not even a well-formed call, as opposed to a call for an
// unknown interface/method, which is a recoverable wire-level Error
// reported only once resolve is attempted. The source's Message
// constructor throws on exactly these same conditions — a non-object
// root, a missing/non-string "method", or a "parameters" present but
// not itself an object — and its caller never turns that throw into a
// reply; it tears down the session instead (server_session.hpp).
func ParseMessage(raw []byte) (*Message, error) {
	var wr wireRequest
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, &internalError{cause: err}
	}
	if wr.Method == "" {
		return nil, &internalError{cause: errors.New(`missing or non-string "method"`)}
	}
	if len(wr.Parameters) > 0 && !isJSONObject(wr.Parameters) {
		return nil, &internalError{cause: errors.New(`"parameters" must be a JSON object`)}
	}

	mode := CallBasic
	switch {
	case wr.More:
		mode = CallMore
	case wr.Oneway:
		mode = CallOneway
	case wr.Upgrade:
		mode = CallUpgrade
	}

	params := wr.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	return &Message{Qualified: wr.Method, Parameters: params, Mode: mode}, nil
}

// Interface returns the interface portion of the fully-qualified method
// name, e.g. "org.varlink.service" from "org.varlink.service.GetInfo".
func (m *Message) Interface() string {
	i, _ := m.splitMethod()
	return i
}

// Method returns the bare method name, e.g. "GetInfo".
func (m *Message) Method() string {
	_, meth := m.splitMethod()
	return meth
}

func (m *Message) splitMethod() (iface, method string) {
	idx := strings.LastIndex(m.Qualified, ".")
	if idx < 0 {
		return "", m.Qualified
	}
	return m.Qualified[:idx], m.Qualified[idx+1:]
}

// isJSONObject reports whether raw's first non-whitespace byte opens a
// JSON object, per the encoding/json definition of insignificant
// whitespace.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
