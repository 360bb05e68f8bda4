package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "kakomon", displayVersion(version))
	},
}

// displayVersion normalizes release tags and marks anything else as a
// development build.
func displayVersion(v string) string {
	if !semver.IsValid(v) {
		if semver.IsValid("v" + v) {
			return semver.Canonical("v" + v)
		}
		return v + " (development build)"
	}
	if semver.Prerelease(v) != "" {
		return semver.Canonical(v) + " (pre-release)"
	}
	return semver.Canonical(v)
}
