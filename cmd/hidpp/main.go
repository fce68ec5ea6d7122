// Command hidpp is a thin CLI over the core library: it enumerates hidraw
// endpoints, drives a Bolt receiver's pairing and discovery flow, and
// renders receiver events live. It performs no protocol interpretation of
// its own beyond calling into the channel, protocol, and receiver
// packages.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := New("dev").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
