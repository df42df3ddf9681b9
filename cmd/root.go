// Package cmd implements the demo CLI that wires the packet capture
// frontend (an offline pcap file, via gopacket) into the sipcore dialog
// core. The frontend is deliberately kept out of the sipcore import
// graph; it only ever talks to sipcore.Core through Packet values.
package cmd

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "sipcore",
	Short: "Offline SIP traffic observer",
	Long: `sipcore reads a pcap capture, recognizes SIP messages, groups them
into call dialogs by Call-ID/X-Call-ID, and reports the resulting call set.

This is a demo capture frontend over the sipcore storage and dialog core:
it is not the production capture pipeline, which would instead deliver
packets from a live interface or TCP-reassembled stream.`,
	Version: "0.1.0",
}

// Execute runs the root command; subcommands are attached in init. Called
// once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (YAML, sip-core: root key); defaults are used if omitted")
	rootCmd.AddCommand(startCmd)
}
