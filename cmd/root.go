package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/shamanec/find-simulator/ios_sim"
	"github.com/shamanec/find-simulator/logger"
	"github.com/spf13/cobra"
)

const (
	ExitMatch     = 0
	ExitNoMatch   = 1
	ExitMalformed = 2
)

func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find-simulator",
		Short: "Print the UDID of the first available iPhone simulator",
		Long: "Reads `xcrun simctl list devices -j` output from standard input and prints the UDID " +
			"of the first available simulator whose name contains \"iPhone\".\n" +
			"Exits 1 when there is no such simulator and 2 when the input can't be read.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := ios_sim.FirstAvailableIPhone(cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), device.UDID)
			return err
		},
	}
}

func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	log := logger.CreateCustomLogger(errOut, "info")

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return ExitMatch
	case ios_sim.IsNoMatch(err):
		log.LogDebug("find_simulator", err.Error())
		return ExitNoMatch
	default:
		log.LogError("find_simulator", err.Error())
		return ExitMalformed
	}
}
