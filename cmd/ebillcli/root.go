// Command ebillcli is the operator-facing surface for the e-bill core:
// local identity bootstrap, the address book, and every bill action named
// in core/action.Engine's dispatch table. It operates directly against the
// same on-disk stores the daemon (ebilld) reads and writes; the two never
// run against different data directories for one node.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitbill-network/ebill-core/pkg/config"
)

var (
	cfgEnv  string
	rootCmd = &cobra.Command{
		Use:   "ebillcli",
		Short: "Operator CLI for an e-bill node",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgEnv, "env", os.Getenv("EBILL_ENV"), "config overlay to merge (e.g. bootstrap)")
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(billCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgEnv)
}
