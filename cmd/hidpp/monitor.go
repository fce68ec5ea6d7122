package main

import (
	"fmt"

	"github.com/malivvan/cui"
	"github.com/spf13/cobra"

	"github.com/relvacode/hidpp/channel"
	"github.com/relvacode/hidpp/receiver/bolt"
	"github.com/relvacode/hidpp/transport/hidraw"
)

func newMonitorCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "render a Bolt receiver's pairing and discovery events live",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("monitor: --path is required")
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

			return runMonitor(ch, r)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "hidraw device path of the receiver")
	return cmd
}

func runMonitor(ch *channel.Channel, r *bolt.Receiver) error {
	app := cui.NewApplication()

	header := cui.NewTextView()
	header.SetText(fmt.Sprintf("hidpp monitor %04x:%04x", ch.VendorID(), ch.ProductID()))
	header.SetTextAlign(cui.AlignLeft)

	footer := cui.NewTextView()
	footer.SetText("Press Ctrl+C to exit")
	footer.SetTextAlign(cui.AlignRight)

	events := cui.NewTextView()
	events.SetTextAlign(cui.AlignLeft)

	root := cui.NewFlex()
	root.SetDirection(cui.FlexRow)
	root.AddItem(header, 1, 0, false)
	root.AddItem(events, 0, 1, false)
	root.AddItem(footer, 1, 0, false)

	app.SetRoot(root, true)

	var log string
	go func() {
		for ev := range r.Listen() {
			log += formatEvent(ev) + "\n"
			app.QueueUpdateDraw(func() {
				events.SetText(log)
			})
		}
	}()

	return app.Run()
}

func formatEvent(ev bolt.Event) string {
	switch e := ev.(type) {
	case bolt.DeviceConnection:
		return fmt.Sprintf("device %d connected: kind=%s wpid=%04x online=%t", e.Index, e.Kind, e.WPID, e.Online)
	case bolt.DiscoveryDetails:
		return fmt.Sprintf("discovered device: kind=%s wpid=%04x", e.Kind, e.WPID)
	case bolt.DiscoveryName:
		return fmt.Sprintf("discovered device name: %s", e.Name)
	case bolt.DiscoveryStatus:
		return fmt.Sprintf("discovery %s", map[bool]string{true: "enabled", false: "disabled"}[e.Enabled])
	case bolt.PairingStatus:
		return fmt.Sprintf("pairing status: error=%#02x slot=%d", byte(e.ErrorCode), e.Slot)
	case bolt.PasskeyRequest:
		return fmt.Sprintf("passkey request: %s", string(e.Passkey[:]))
	case bolt.PasskeyKeypress:
		return fmt.Sprintf("passkey keypress: %v", e.PressType)
	default:
		return fmt.Sprintf("%v", e)
	}
}
