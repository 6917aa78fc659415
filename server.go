package varlink

import (
	"io"
	"net"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-varlink/varlink/idl"
)

// ServerCall is the reply sink a handler uses to answer one request
// (spec.md §4.8, C8). For a "basic"/"oneway" call a handler answers
// exactly once, with CloseWithReply or ReplyError. For a "more" call a
// handler may call Reply any number of times before a final
// CloseWithReply or ReplyError.
type ServerCall struct {
	conn *frameConn
	mode CallMode

	mu       sync.Mutex
	finished bool
	hijacked bool
}

// Mode reports the call mode the request was made with.
func (c *ServerCall) Mode() CallMode { return c.mode }

// Reply sends a non-final reply with continues=true. It is only valid
// for a "more" call; calling it on any other mode is a handler bug, and
// is reported to the caller as a wire-level MethodNotImplemented error
// rather than silently doing nothing or panicking.
func (c *ServerCall) Reply(params interface{}) error {
	if c.mode != CallMore {
		return c.finish(params, "", nil, true)
	}
	t := true
	return c.send(params, "", &t)
}

// CloseWithReply sends the final reply. For a "more" call this sets
// continues=false; for any other mode, continues is omitted entirely.
func (c *ServerCall) CloseWithReply(params interface{}) error {
	return c.finish(params, "", nil, false)
}

// ReplyError sends the final reply as an error.
func (c *ServerCall) ReplyError(err *Error) error {
	return c.finish(nil, err.Name, err.Parameters, false)
}

// Hijack detaches the underlying connection from the session loop,
// usable only for a request with CallUpgrade mode. After Hijack
// succeeds the session stops reading further requests on this
// connection and hands the raw net.Conn to the caller (SPEC_FULL.md §3;
// unused, "upgrade" behaves exactly like "basic").
func (c *ServerCall) Hijack() (net.Conn, bool) {
	if c.mode != CallUpgrade {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished || c.hijacked {
		return nil, false
	}
	c.hijacked = true
	return c.conn.conn, true
}

func (c *ServerCall) finish(params interface{}, errName string, errParams json.RawMessage, asMisuse bool) error {
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return errors.New("varlink: call already finished")
	}
	c.finished = true
	c.mu.Unlock()

	if asMisuse {
		return c.writeReply(mustMarshal(map[string]string{"method": ""}), ErrMethodNotImplemented, nil)
	}

	var raw json.RawMessage
	if errName == "" {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return errors.Wrap(err, "varlink: encode reply parameters")
		}
	} else {
		raw = errParams
	}

	var continues *bool
	if c.mode == CallMore {
		f := false
		continues = &f
	}
	return c.writeReply(raw, errName, continues)
}

func (c *ServerCall) send(params interface{}, errName string, continues *bool) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "varlink: encode reply parameters")
	}
	return c.writeReply(raw, errName, continues)
}

func (c *ServerCall) writeReply(params json.RawMessage, errName string, continues *bool) error {
	if c.mode == CallOneway {
		return nil
	}
	return c.conn.writeMessage(wireReply{Parameters: params, Continues: continues, Error: errName})
}

func mustMarshal(v interface{}) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

// Server dispatches incoming connections against a Registry (C8/C9/C12).
type Server struct {
	registry *Registry
	log      zerolog.Logger
}

// NewServer returns a Server backed by registry, logging through log.
func NewServer(registry *Registry, log zerolog.Logger) *Server {
	return &Server{registry: registry, log: log}
}

// ListenAndServe parses addr (spec.md §4.4) and serves on it until
// accepting on the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	a, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	ln, err := net.Listen(a.Network, a.Address)
	if err != nil {
		return errors.Wrapf(err, "varlink: listen on %s:%s", a.Network, a.Address)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, handling each on its own goroutine
// until ln is closed.
func (s *Server) Serve(ln net.Listener) error {
	defer ln.Close()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return errors.Wrap(err, "varlink: accept")
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	id := uuid.New()
	log := s.log.With().Str("conn", id.String()).Logger()
	log.Debug().Msg("connection accepted")
	hijacked := false
	defer func() {
		if hijacked {
			log.Debug().Msg("connection hijacked")
			return
		}
		conn.Close()
		log.Debug().Msg("connection closed")
	}()

	fc := newFrameConn(conn)
	for {
		raw, err := fc.readMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Msg("read failed")
			}
			return
		}

		msg, err := ParseMessage(raw)
		if err != nil {
			// A malformed request isn't answerable on the wire at all
			// (spec.md §4.8): the source's equivalent throw from the
			// Message constructor is caught by the session's exception
			// handler, which doesn't resume reading. Mirror that by
			// closing the connection instead of replying or continuing.
			log.Warn().Err(err).Msg("malformed request, closing connection")
			return
		}

		call := &ServerCall{conn: fc, mode: msg.Mode}
		if s.dispatch(log, call, msg) {
			hijacked = true
			return
		}
	}
}

// dispatch runs one request to completion and reports whether the
// session's connection was hijacked and should stop reading.
func (s *Server) dispatch(log zerolog.Logger, call *ServerCall, msg *Message) bool {
	iface, member, h, err := s.registry.resolve(msg.Qualified)
	if err != nil {
		if verr, ok := err.(*Error); ok {
			_ = call.ReplyError(verr)
		}
		return false
	}

	var decoded interface{}
	if err := json.Unmarshal(msg.Parameters, &decoded); err != nil {
		_ = call.ReplyError(ErrorInvalidParameter(""))
		return false
	}
	if err := idl.Validate(iface, member.ParameterType(), decoded); err != nil {
		_ = call.ReplyError(ErrorInvalidParameter(invalidParameterField(err)))
		return false
	}

	switch {
	case h.sync != nil:
		result, err := h.sync(call, msg.Parameters)
		if err != nil {
			if verr, ok := err.(*Error); ok {
				_ = call.ReplyError(verr)
			} else {
				log.Error().Err(err).Str("method", msg.Qualified).Msg("handler returned a non-varlink error")
				_ = call.ReplyError(ErrorInvalidParameter(""))
			}
			return call.hijacked
		}
		if err := call.CloseWithReply(result); err != nil {
			log.Debug().Err(err).Msg("failed to send reply")
		}
	case h.stream != nil:
		if err := h.stream(call, msg.Parameters); err != nil {
			if verr, ok := err.(*Error); ok {
				_ = call.ReplyError(verr)
			} else {
				log.Error().Err(err).Str("method", msg.Qualified).Msg("stream handler failed")
			}
		}
	}
	return call.hijacked
}

func invalidParameterField(err error) string {
	if ip, ok := err.(*idl.InvalidParameter); ok {
		return ip.Field
	}
	return ""
}
