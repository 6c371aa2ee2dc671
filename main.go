// Command gopher-linkb turns a LinnStrument into a computer keyboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	logLevel   string
	trayMode   bool
	outputFile string
	useDefault bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gopher-linkb",
	Short: "Use a LinnStrument as a computer keyboard",
	Long: `gopher-linkb reads pad presses from a LinnStrument in user firmware mode
and types the mapped keys through a virtual keyboard. Pads can act as layer
modifiers, held keys auto-repeat, and pad LEDs show the active layout.

Examples:
  gopher-linkb run
  gopher-linkb run --tray
  gopher-linkb console
  gopher-linkb layout export --default -o layout.txt
  gopher-linkb startup enable`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the keyboard",
	Args:  cobra.NoArgs,
	RunE:  runKeyboard,
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the keyboard with a live view of the grid",
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect layout files",
}

var layoutExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the configured layout in text form",
	Args:  cobra.NoArgs,
	RunE:  runLayoutExport,
}

var layoutCheckCmd = &cobra.Command{
	Use:   "check <layout.txt>",
	Short: "Validate a layout file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayoutCheck,
}

var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Manage launching at login",
}

var startupEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Launch the keyboard in the tray at login",
	Args:  cobra.NoArgs,
	RunE:  runStartupEnable,
}

var startupDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop launching at login",
	Args:  cobra.NoArgs,
	RunE:  runStartupDisable,
}

var startupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the keyboard launches at login",
	Args:  cobra.NoArgs,
	RunE:  runStartupStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gopher-linkb %s\n", rootCmd.Version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	// run command
	runCmd.Flags().BoolVar(&trayMode, "tray", false, "Show the active layer in the system tray")

	// layout export command
	layoutExportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	layoutExportCmd.Flags().BoolVar(&useDefault, "default", false, "Export the built-in layout")

	// Add commands
	layoutCmd.AddCommand(layoutExportCmd, layoutCheckCmd)
	startupCmd.AddCommand(startupEnableCmd, startupDisableCmd, startupStatusCmd)
	rootCmd.AddCommand(runCmd, consoleCmd, portsCmd, layoutCmd, startupCmd, versionCmd)
}
