package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/receiver/bolt"
	"github.com/relvacode/hidpp/transport/hidraw"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "enumerate hidraw endpoints and identify HID++ receivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for info, err := range hidraw.Enumerate() {
				if err != nil {
					return err
				}
				if info.UsagePage != channel.HidppUsagePage {
					continue
				}

				endpoint, err := hidraw.Open(info.Path)
				if err != nil {
					cmd.PrintErrf("%s: %s\n", info.Path, err)
					continue
				}

				ch, err := channel.New(endpoint)
				if err != nil {
					endpoint.Close()
					cmd.PrintErrf("%s: %s\n", info.Path, err)
					continue
				}

				line := fmt.Sprintf("%s\t%04x:%04x", info.Path, ch.VendorID(), ch.ProductID())
				if _, err := bolt.New(ch); err == nil {
					line += "\t(bolt receiver)"
				}
				cmd.Println(line)

				ch.Close()
			}
			return nil
		},
	}
}
