package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ostraka/segstream/cmd/segstream/commands"
	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/logger"
)

var rootCmd = &cobra.Command{
	Use:   "segstream",
	Short: "segstream - real-time semantic segmentation gateway",
	Long: `segstream - WebSocket gateway for real-time semantic segmentation.

Browsers stream webcam frames over a WebSocket; segstream runs them through
a segmentation model and streams rendered visualizations back, with bounded
per-session queuing so slow inference never builds a latency backlog.

Available commands:
  serve   - Start the WebSocket gateway
  modes   - Show the built-in model profiles
  version - Show version information

Examples:
  segstream serve                  # Serve on the default port (8000)
  segstream serve --port 9000      # Serve on a specific port
  segstream serve --preload        # Load every model profile at startup
  segstream modes                  # Inspect the mode table`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "JSON log output instead of console formatting")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ModesCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, commands.ErrModelInit) {
			os.Exit(2)
		}
		// Listen failures and other startup errors share the generic code.
		os.Exit(1)
	}
}
