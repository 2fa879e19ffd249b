// Command asgraph infers AS relationships from yearly routing table dumps
// and writes the per-year figure tables.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

// errTasksFailed is returned when at least one year could not be built.
// Reports for the other years are still written.
var errTasksFailed = errors.New("some years failed")

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "asgraph",
		Short: "AS relationship inference over yearly routing table dumps",
		Long: `asgraph builds one AS graph per year and address family from a directory
of MRT routing table dumps, infers customer, provider, peer and sibling
relationships, classifies every AS into a role and writes the per-year
figure tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newInspectCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
