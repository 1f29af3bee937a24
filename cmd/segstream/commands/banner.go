package commands

import (
	"fmt"

	"github.com/ostraka/segstream/config"
	"github.com/ostraka/segstream/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(cfg *config.Config) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔══════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                          ║\n")
	fmt.Printf("   ║   ███████ ███████  ██████                ║\n")
	fmt.Printf("   ║   ██      ██      ██                     ║\n")
	fmt.Printf("   ║   ███████ █████   ██   ███ stream        ║\n")
	fmt.Printf("   ║        ██ ██      ██    ██               ║\n")
	fmt.Printf("   ║   ███████ ███████  ██████                ║\n")
	fmt.Printf("   ║                                          ║\n")
	fmt.Printf("   ╚══════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ segstream ──────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:      %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:        %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Port:         %d\n", green, reset, cfg.GetPort())
	fmt.Printf("%s│%s Default mode: %s\n", green, reset, cfg.Model.DefaultMode)
	fmt.Printf("%s│%s Backend:      %s\n", green, reset, cfg.Model.Backend)
	fmt.Printf("%s│%s Max sessions: %d\n", green, reset, cfg.GetMaxSessions())
	fmt.Printf("%s└──────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Point a client at ws://localhost:%d/ws%s\n", yellow, bold, cfg.GetPort(), reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
