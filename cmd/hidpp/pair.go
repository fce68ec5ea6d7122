package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/receiver/bolt"
	"github.com/relvacode/hidpp/transport/hidraw"
)

func newPairCommand() *cobra.Command {
	var path string
	var timeoutSeconds uint8

	cmd := &cobra.Command{
		Use:   "pair",
		Short: "put a Bolt receiver into discovery mode and report the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("pair: --path is required")
			}

			endpoint, err := hidraw.Open(path)
			if err != nil {
				return err
			}
			defer endpoint.Close()

			ch, err := channel.New(endpoint)
			if err != nil {
				return err
			}
			defer ch.Close()

			r, err := bolt.New(ch)
			if err != nil {
				return err
			}
			defer r.Close()

			events := r.Listen()

			if err := r.StartDiscovery(timeoutSeconds); err != nil {
				return err
			}
			cmd.Printf("discovery started, waiting up to %ds for a pairing attempt\n", timeoutSeconds)

			deadline := time.After(time.Duration(timeoutSeconds) * time.Second)
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return fmt.Errorf("pair: receiver closed before discovery finished")
					}
					switch e := ev.(type) {
					case bolt.PairingStatus:
						if err := r.CancelDiscovery(); err != nil {
							cmd.PrintErrf("cancel discovery: %s\n", err)
						}
						if e.ErrorCode != bolt.PairingErrorNone {
							return fmt.Errorf("pair: failed with code %#02x (raw status %#02x)", byte(e.ErrorCode), e.RawStatus)
						}
						cmd.Printf("paired device at slot %d\n", e.Slot)
						return nil
					case bolt.PasskeyRequest:
						cmd.Printf("passkey requested: %s\n", string(e.Passkey[:]))
					}
				case <-deadline:
					_ = r.CancelDiscovery()
					return fmt.Errorf("pair: timed out after %ds", timeoutSeconds)
				}
			}
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "hidraw device path of the receiver")
	cmd.Flags().Uint8Var(&timeoutSeconds, "timeout", 30, "discovery timeout in seconds")
	return cmd
}
