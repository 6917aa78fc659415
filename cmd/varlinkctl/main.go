// Command varlinkctl is a general-purpose Varlink client: it calls a
// method on a running service and prints the reply, or introspects a
// service's interfaces. It replaces the ad hoc certification client the
// teacher shipped with a small, general cobra CLI.
package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/go-varlink/varlink"
	"github.com/go-varlink/varlink/varlinkservice"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "varlinkctl",
		Short: "Call and introspect Varlink services",
	}
	root.AddCommand(newCallCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newDescribeCmd())
	return root
}

func newCallCmd() *cobra.Command {
	var more bool
	cmd := &cobra.Command{
		Use:   "call <address> <interface.Method> [json-params]",
		Short: "Call a method and print its reply(ies)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := varlink.Dial(args[0])
			if err != nil {
				return err
			}
			defer client.Close()

			params := json.RawMessage("{}")
			if len(args) == 3 {
				params = json.RawMessage(args[2])
			}

			if more {
				stream, err := client.CallMore(args[1], params)
				if err != nil {
					return err
				}
				defer stream.Close()
				for stream.Next() {
					fmt.Println(string(stream.Reply()))
				}
				return stream.Err()
			}

			var out json.RawMessage
			if err := client.Call(args[1], params, &out); err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&more, "more", false, "make a streaming (more) call")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <address>",
		Short: "Print a service's vendor/product/version/interfaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := varlink.Dial(args[0])
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := varlinkservice.New(client).GetInfo()
			if err != nil {
				return err
			}
			fmt.Printf("vendor:     %s\n", info.Vendor)
			fmt.Printf("product:    %s\n", info.Product)
			fmt.Printf("version:    %s\n", info.Version)
			fmt.Printf("url:        %s\n", info.URL)
			fmt.Printf("interfaces: %v\n", info.Interfaces)
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <address> <interface>",
		Short: "Print an interface's IDL description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := varlink.Dial(args[0])
			if err != nil {
				return err
			}
			defer client.Close()

			desc, err := varlinkservice.New(client).GetInterfaceDescription(args[1])
			if err != nil {
				return err
			}
			fmt.Println(desc)
			return nil
		},
	}
}
