package varlink

import (
	"net"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoDescription = `
interface org.example.echo

method Echo(text: string) -> (text: string)

method Countdown(n: int) -> (current: int)
`

func newTestServer(t *testing.T) (net.Listener, *Registry) {
	t.Helper()
	registry := NewRegistry(RegistryOptions{Vendor: "test", Product: "echo", Version: "0.0.0"})

	echo := SyncFunc(func(call *ServerCall, params json.RawMessage) (interface{}, error) {
		var in struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, ErrorInvalidParameter("text")
		}
		return map[string]string{"text": in.Text}, nil
	})
	countdown := StreamFunc(func(call *ServerCall, params json.RawMessage) error {
		var in struct {
			N int `json:"n"`
		}
		if err := json.Unmarshal(params, &in); err != nil {
			return ErrorInvalidParameter("n")
		}
		for i := 0; i < in.N; i++ {
			if err := call.Reply(map[string]int{"current": i}); err != nil {
				return err
			}
		}
		return call.CloseWithReply(map[string]int{"current": in.N})
	})

	require.NoError(t, registry.AddInterface(echoDescription, map[string]interface{}{
		"Echo":      echo,
		"Countdown": countdown,
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(registry, zerolog.Nop())
	go server.Serve(ln)

	return ln, registry
}

func TestServerClientEcho(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var out struct {
		Text string `json:"text"`
	}
	err = client.Call("org.example.echo.Echo", map[string]string{"text": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Text)
}

func TestServerClientStreaming(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	stream, err := client.CallMore("org.example.echo.Countdown", map[string]int{"n": 3})
	require.NoError(t, err)
	defer stream.Close()

	var got []int
	for stream.Next() {
		var r struct {
			Current int `json:"current"`
		}
		require.NoError(t, stream.Unmarshal(&r))
		got = append(got, r.Current)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestReplyStreamReleasesStrandWithoutClose(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	stream, err := client.CallMore("org.example.echo.Countdown", map[string]int{"n": 2})
	require.NoError(t, err)
	for stream.Next() {
	}
	require.NoError(t, stream.Err())

	// Draining the stream to its natural end must release the strand on
	// its own; a caller that never calls Close shouldn't deadlock every
	// later call on this Client.
	var out struct {
		Text string `json:"text"`
	}
	err = client.Call("org.example.echo.Echo", map[string]string{"text": "ok"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
}

func TestServerClientUnknownInterface(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var out json.RawMessage
	err = client.Call("org.example.missing.Foo", struct{}{}, &out)
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrInterfaceNotFound, verr.Name)
}

func TestServerClientUnknownMethod(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var out json.RawMessage
	err = client.Call("org.example.echo.Nope", struct{}{}, &out)
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrMethodNotFound, verr.Name)
}

func TestServerClientInvalidParameter(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var out json.RawMessage
	err = client.Call("org.example.echo.Echo", map[string]int{"text": 1}, &out)
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrInvalidParameter, verr.Name)
}

func TestServerClientGetInfo(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var info struct {
		Vendor     string   `json:"vendor"`
		Interfaces []string `json:"interfaces"`
	}
	require.NoError(t, client.Call("org.varlink.service.GetInfo", struct{}{}, &info))
	assert.Equal(t, "test", info.Vendor)
	assert.Contains(t, info.Interfaces, "org.example.echo")
	assert.Contains(t, info.Interfaces, "org.varlink.service")
}

func TestServerClientGetInterfaceDescriptionRoundTrips(t *testing.T) {
	ln, _ := newTestServer(t)
	defer ln.Close()

	client, err := Dial("tcp:" + ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var out struct {
		Description string `json:"description"`
	}
	in := struct {
		Interface string `json:"interface"`
	}{Interface: "org.example.echo"}
	require.NoError(t, client.Call("org.varlink.service.GetInterfaceDescription", in, &out))
	assert.Contains(t, out.Description, "interface org.example.echo")
	assert.Contains(t, out.Description, "method Echo")
}
