package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ostraka/segstream/model"
	"github.com/ostraka/segstream/vocab"
)

// ModesCmd prints the built-in model profile table
var ModesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Show the built-in model profiles",
	Long:  `Display the model profile behind each mode: backbone, input resolution, vocabulary, and the expected throughput and memory footprint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := pterm.TableData{
			{"Mode", "Model", "Backbone", "Input", "Vocabulary", "FPS", "Memory"},
		}
		for _, mode := range model.Modes() {
			p := mode.Profile()
			rows = append(rows, []string{
				mode.String(),
				p.Name,
				p.Backbone,
				fmt.Sprintf("%dx%d", p.InputW, p.InputH),
				fmt.Sprintf("%s (%d classes)", p.Vocabulary, vocab.NumClasses(p.Vocabulary)),
				fmt.Sprintf("~%d", p.ExpectedFPS),
				fmt.Sprintf("%d MB", p.MemoryMB),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}
