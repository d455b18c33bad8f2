package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/vitrine/internal/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for vitrine: the version, git commit, build
time, Go version and target platform.

Examples:
  vitrine version              # Show version info
  vitrine version --short      # Show the version only
  vitrine version --format json`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	AddStandardFlags(versionCmd, "output")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch {
	case outputFormat(cmd) == "json":
		return writeJSON(out, info)
	case versionShort:
		fmt.Fprintln(out, info.Short())
	default:
		fmt.Fprintln(out, "vitrine")
		fmt.Fprintln(out, info.String())
	}
	return nil
}
