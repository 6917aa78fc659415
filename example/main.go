// Command example runs a small demo Varlink service, org.example.more,
// serving a "basic" echo method and a "more" streaming method, then
// calls Echo on itself with varlinkctl's underlying client library
// (the streaming method is served but not called). It exists to exercise the core packages the way a real
// deployment would wire them, not as generated stub output.
package main

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/go-varlink/varlink"
)

const exampleDescription = `
# A small demo interface exercising basic and streaming calls.
interface org.example.more

# Echo back whatever text was sent.
method Echo(text: string) -> (text: string)

# Count from 0 up to n, sending one reply per number.
method Countdown(n: int) -> (current: int)
`

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	registry := varlink.NewRegistry(varlink.RegistryOptions{
		Vendor:  "go-varlink",
		Product: "example",
		Version: "0.1.0",
		URL:     "https://github.com/go-varlink/varlink",
	})

	err := registry.AddInterface(exampleDescription, map[string]interface{}{
		"Echo":      varlink.SyncFunc(echo),
		"Countdown": varlink.StreamFunc(countdown),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("register interface")
	}

	socket := "/tmp/org.example.more.socket"
	os.Remove(socket)

	server := varlink.NewServer(registry, log)
	go func() {
		if err := server.ListenAndServe("unix:" + socket); err != nil {
			log.Fatal().Err(err).Msg("serve")
		}
	}()
	time.Sleep(100 * time.Millisecond)

	client, err := varlink.Dial("unix:" + socket)
	if err != nil {
		log.Fatal().Err(err).Msg("dial")
	}
	defer client.Close()

	var out struct {
		Text string `json:"text"`
	}
	in := struct {
		Text string `json:"text"`
	}{Text: "hello"}
	if err := client.Call("org.example.more.Echo", in, &out); err != nil {
		log.Fatal().Err(err).Msg("call Echo")
	}
	fmt.Println("Echo replied:", out.Text)
}

func echo(call *varlink.ServerCall, params json.RawMessage) (interface{}, error) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, varlink.ErrorInvalidParameter("text")
	}
	return map[string]string{"text": in.Text}, nil
}

func countdown(call *varlink.ServerCall, params json.RawMessage) error {
	var in struct {
		N int `json:"n"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return varlink.ErrorInvalidParameter("n")
	}
	for i := 0; i < in.N; i++ {
		if err := call.Reply(map[string]int{"current": i}); err != nil {
			return err
		}
	}
	return call.CloseWithReply(map[string]int{"current": in.N})
}
