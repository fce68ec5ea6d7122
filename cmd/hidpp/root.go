package main

import (
	"github.com/spf13/cobra"
)

// New builds the hidpp root command and its devices/pair/monitor
// subcommands.
func New(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "hidpp",
		Short:   "inspect and pair Logitech HID++ wireless receivers",
		Version: version,
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(cmd.Root().Version)
		},
	})
	root.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	root.AddCommand(newDevicesCommand())
	root.AddCommand(newPairCommand())
	root.AddCommand(newMonitorCommand())

	return root
}
