package main

import (
	"os"

	"github.com/spf13/cobra"

	"buymeacoffee/coffee"
)

var (
	mobileView bool
	showAll    bool
)

var memosCmd = &cobra.Command{
	Use:   "memos",
	Short: "Prints the top memos by amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		if _, err := connect(ctx); err != nil {
			return err
		}
		if showAll {
			printMemos(os.Stdout, session.ReadModel().Memos)
			return nil
		}
		printProjection(os.Stdout, session.Projection(viewport()))
		return nil
	},
}

func viewport() coffee.Viewport {
	if mobileView {
		return coffee.Mobile
	}
	return coffee.Desktop
}

func init() {
	rootCmd.AddCommand(memosCmd)

	memosCmd.Flags().BoolVar(&mobileView, "mobile", false, "mobile layout (no card positions)")
	memosCmd.Flags().BoolVar(&showAll, "all", false, "print every memo in arrival order")
}
