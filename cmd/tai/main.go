// Command tai is the TA-I terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// flags shared by every command.
type rootFlags struct {
	apiURL  string
	state   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "tai",
		Short: "TA-I - AI teaching assistant in your terminal",
		Long: `TA-I helps students work through coursework with guided hints
instead of answers, and lets teachers manage course materials and guardrails.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, &flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "backend base URL (overrides TAI_API_URL)")
	root.PersistentFlags().StringVar(&flags.state, "state", "", "local state file (overrides TAI_STATE_PATH)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newWhoamiCmd(&flags),
		newSelectRoleCmd(&flags),
		newSwitchRoleCmd(&flags),
		newCoursesCmd(&flags),
		newJoinCmd(&flags),
		newLeaveCmd(&flags),
		newCreateCourseCmd(&flags),
		newDevServerCmd(&flags),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
