// Command mmcode is a terminal editor that mirrors the active file, cursor
// and edits to a collaboration server.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mmcode",
		Short: "Mirror your editor to a shared room",
		Long: `mmcode opens files in a small terminal editor and, while MM is
running, streams the active file, cursor line and edits to a
collaboration server over a WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// glog reads its flags from the standard flag set.
			goflag.CommandLine.Parse(nil)
		},
	}
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(
		editCmd(),
		configCmd(),
		versionCmd(),
	)

	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
