package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/cmd/inspect"
	"github.com/ValentinKolb/dMsg/cmd/perf"
	"github.com/ValentinKolb/dMsg/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dmsg",
		Short: "binary message codec tools",
		Long: fmt.Sprintf(`dMsg (v%s)

A binary message codec written in Go: typed, schema-described messages
are converted to and from a compact length-prefixed little-endian wire
format, using pooled scratch buffers.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dMsg",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dMsg v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
