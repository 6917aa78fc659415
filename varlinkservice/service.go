// Package varlinkservice is a hand-written typed client for the
// org.varlink.service interface every Varlink endpoint exposes. It is
// shaped the way a code generator would render a client stub for that
// interface, without being generated: stub/codegen generation itself is
// out of scope (spec.md §1).
package varlinkservice

import (
	"github.com/go-varlink/varlink"
)

// Info is the decoded result of GetInfo.
type Info struct {
	Vendor     string   `json:"vendor"`
	Product    string   `json:"product"`
	Version    string   `json:"version"`
	URL        string   `json:"url"`
	Interfaces []string `json:"interfaces"`
}

// Client wraps a *varlink.Client with typed methods for
// org.varlink.service.
type Client struct {
	c *varlink.Client
}

// New wraps an existing varlink.Client.
func New(c *varlink.Client) *Client {
	return &Client{c: c}
}

// GetInfo calls org.varlink.service.GetInfo.
func (c *Client) GetInfo() (*Info, error) {
	var info Info
	if err := c.c.Call("org.varlink.service.GetInfo", struct{}{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetInterfaceDescription calls org.varlink.service.GetInterfaceDescription
// and returns the interface's re-emitted IDL source text.
func (c *Client) GetInterfaceDescription(iface string) (string, error) {
	var out struct {
		Description string `json:"description"`
	}
	in := struct {
		Interface string `json:"interface"`
	}{Interface: iface}
	if err := c.c.Call("org.varlink.service.GetInterfaceDescription", in, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}
