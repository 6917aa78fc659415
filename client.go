package varlink

import (
	"net"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/go-varlink/varlink/internal/strand"
)

// Client is a connection to a Varlink service (C10). The protocol
// forbids multiplexing more than one call on a connection at a time
// (spec.md §5), so Client does not need the read-loop/pending-queue
// demultiplexer a multiplexed RPC client would: each call writes its
// request and reads its reply (or reply stream) synchronously. A Strand
// guards the connection so that concurrent callers begin their calls in
// the order they called, rather than in whatever order sync.Mutex wakes
// them (SPEC_FULL.md §3).
type Client struct {
	conn   *frameConn
	strand *strand.Strand
}

// Dial connects to addr (spec.md §4.4) and returns a Client.
func Dial(addr string) (*Client, error) {
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial(a.Network, a.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "varlink: dial %s:%s", a.Network, a.Address)
	}
	return NewClient(conn), nil
}

// NewClient wraps an already-established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: newFrameConn(conn), strand: strand.New()}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call makes a "basic" call: it blocks for exactly one reply.
func (c *Client) Call(method string, params interface{}, out interface{}) error {
	release := c.strand.Acquire()
	defer release()

	if _, err := c.request(method, params, false, false, false); err != nil {
		return err
	}
	reply, err := c.conn.readMessage()
	if err != nil {
		return errors.Wrap(err, "varlink: read reply")
	}
	return decodeReply(reply, out)
}

// CallOneway sends a request with oneway=true and does not wait for (or
// expect) any reply.
func (c *Client) CallOneway(method string, params interface{}) error {
	release := c.strand.Acquire()
	defer release()
	_, err := c.request(method, params, false, true, false)
	return err
}

// CallMore makes a "more" call and returns a ReplyStream to iterate the
// resulting sequence of replies (spec.md §4.10's "iterator<reply>",
// SPEC_FULL.md §3's ReplyStream shape).
func (c *Client) CallMore(method string, params interface{}) (*ReplyStream, error) {
	release := c.strand.Acquire()
	if _, err := c.request(method, params, true, false, false); err != nil {
		release()
		return nil, err
	}
	return &ReplyStream{conn: c.conn, release: release}, nil
}

func (c *Client) request(method string, params interface{}, more, oneway, upgrade bool) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "varlink: encode call parameters")
	}
	req := wireRequest{Method: method, Parameters: raw, More: more, Oneway: oneway, Upgrade: upgrade}
	if err := c.conn.writeMessage(req); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeReply(raw []byte, out interface{}) error {
	var wr wireReply
	if err := json.Unmarshal(raw, &wr); err != nil {
		return errors.Wrap(err, "varlink: decode reply")
	}
	if wr.Error != "" {
		return &Error{Name: wr.Error, Parameters: wr.Parameters}
	}
	if out == nil || len(wr.Parameters) == 0 {
		return nil
	}
	return json.Unmarshal(wr.Parameters, out)
}

// ReplyStream iterates the sequence of replies to a "more" call.
type ReplyStream struct {
	conn    *frameConn
	release func()

	reply json.RawMessage
	err   error
	done  bool
}

// Next reads the next reply, reporting whether one was available. It
// returns false both at the end of the stream and on error; check Err
// to distinguish the two. Reaching the end of the stream this way
// releases the client strand just as calling Close would (spec.md
// §4.10): the idiomatic "for stream.Next() {}" loop must not have to
// call Close afterward to avoid deadlocking the Client's later calls.
func (s *ReplyStream) Next() bool {
	if s.done {
		return false
	}
	raw, err := s.conn.readMessage()
	if err != nil {
		s.err = errors.Wrap(err, "varlink: read reply")
		s.finish()
		return false
	}

	var wr wireReply
	if err := json.Unmarshal(raw, &wr); err != nil {
		s.err = errors.Wrap(err, "varlink: decode reply")
		s.finish()
		return false
	}
	if wr.Error != "" {
		s.err = &Error{Name: wr.Error, Parameters: wr.Parameters}
		s.finish()
		return false
	}

	s.reply = wr.Parameters
	if wr.Continues == nil || !*wr.Continues {
		s.finish()
	}
	return true
}

func (s *ReplyStream) finish() {
	s.done = true
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

// Reply returns the parameters of the most recent reply read by Next.
func (s *ReplyStream) Reply() json.RawMessage { return s.reply }

// Unmarshal decodes the most recent reply into v.
func (s *ReplyStream) Unmarshal(v interface{}) error {
	if len(s.reply) == 0 {
		return nil
	}
	return json.Unmarshal(s.reply, v)
}

// Err returns the error that stopped iteration, if any.
func (s *ReplyStream) Err() error { return s.err }

// Close releases the client strand, allowing the next queued call to
// proceed. Callers that abandon the stream before Next returns false
// must call Close; it is always safe to call, including after Next has
// already released the strand on reaching the end of the stream.
func (s *ReplyStream) Close() error {
	s.finish()
	return nil
}
