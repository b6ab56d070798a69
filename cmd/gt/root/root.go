package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datefujinari/giftytask/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "gt",
	Short:         "GiftyTask — gamified task and reward tracker",
	Long:          "GiftyTask is a local-first CLI/TUI task tracker where completing tasks earns XP, builds streaks, and unlocks real rewards.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoCmd(),
		newArchiveCmd(),
		newListCmd(),
		newEpicCmd(),
		newGiftCmd(),
		newStatusCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
