package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information about Commit Composer.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		v, commit, buildTime := GetVersionInfo()
		fmt.Fprintf(out, "Commit Composer %s\n", v)
		fmt.Fprintf(out, "  Git Commit: %s\n", commit)
		fmt.Fprintf(out, "  Build Time: %s\n", buildTime)
		fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
