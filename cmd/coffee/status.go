package main

import (
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connects the wallet and prints account and donation totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		state, err := connect(ctx)
		if err != nil {
			return err
		}
		printState(os.Stdout, state, session.ReadModel())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
