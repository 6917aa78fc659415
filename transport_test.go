package varlink

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameConnWriteRead(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := newFrameConn(server)
	cc := newFrameConn(client)

	done := make(chan error, 1)
	go func() {
		done <- sc.writeMessage(wireReply{Parameters: []byte(`{"ok":true}`)})
	}()

	raw, err := cc.readMessage()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.JSONEq(t, `{"parameters":{"ok":true}}`, string(raw))
}

// TestFrameConnSplitsConcatenatedMessages exercises spec.md §8's
// "two messages arrive in a single read" framing property directly
// against the buffered reader, bypassing net.Pipe's one-write-per-read
// semantics by writing both frames before any read happens.
func TestFrameConnSplitsConcatenatedMessages(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	written := make(chan struct{})
	go func() {
		_, _ = server.Write([]byte(`{"a":1}` + "\x00" + `{"b":2}` + "\x00"))
		close(written)
	}()

	cc := newFrameConn(client)
	first, err := cc.readMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(first))

	second, err := cc.readMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(second))
	<-written
}
