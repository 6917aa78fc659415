package varlink

import (
	"bufio"
	"bytes"
	"net"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// frameConn wraps a net.Conn with Varlink's NUL-delimited message framing
// (spec.md §6): each JSON message is written followed by a single 0x00
// byte, and incoming bytes are buffered and split on 0x00 the same way
// the source's json_connection scans, reparses, and shifts its read
// buffer after each complete message.
//
// Writes are serialized by writeMu; reads are not synchronized, so a
// connection is safe for one reader goroutine alongside any number of
// writers, matching how the server drives one session goroutine per
// connection and the client serializes calls through a strand.
type frameConn struct {
	conn net.Conn
	br   *bufio.Reader

	writeMu sync.Mutex
}

func newFrameConn(conn net.Conn) *frameConn {
	return &frameConn{conn: conn, br: bufio.NewReader(conn)}
}

// writeMessage marshals v and writes it followed by the NUL frame terminator.
func (c *frameConn) writeMessage(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "varlink: encode message")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(append(raw, 0)); err != nil {
		return errors.Wrap(err, "varlink: write message")
	}
	return nil
}

// readMessage reads up to the next NUL byte and returns the raw JSON
// payload preceding it. Reads are not safe for concurrent use; callers
// that need concurrent readers and writers on the same connection (the
// server's per-connection loop writing replies while a reader goroutine
// blocks) must not call readMessage from more than one goroutine.
func (c *frameConn) readMessage() ([]byte, error) {
	raw, err := c.br.ReadBytes(0)
	if err != nil {
		return nil, errors.Wrap(err, "varlink: read message")
	}
	return bytes.TrimSuffix(raw, []byte{0}), nil
}

func (c *frameConn) Close() error {
	return c.conn.Close()
}
