package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var refreshInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follows new memos live and reprints the top memos on every change",
	Long:  `Follows new memos live and reprints the top memos on every change. Stop it with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		if _, err := connect(ctx); err != nil {
			return err
		}
		// The initial load is printed below, not as a change.
		select {
		case <-session.Memos().Changed():
		default:
		}
		printProjection(os.Stdout, session.Projection(viewport()))

		var tick <-chan time.Time
		if refreshInterval > 0 {
			ticker := time.NewTicker(refreshInterval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-session.Memos().Changed():
				fmt.Println()
				printProjection(os.Stdout, session.Projection(viewport()))

			case <-tick:
				if _, err := session.Refresh(ctx); err != nil {
					logger.Warn("periodic refresh failed", zap.Error(err))
				}

			case <-ctx.Done():
				logger.Info("stopping watch")
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&mobileView, "mobile", false, "mobile layout (no card positions)")
	watchCmd.Flags().DurationVar(&refreshInterval, "refresh", 0, "also re-read the chain at this interval (0 disables)")
}
