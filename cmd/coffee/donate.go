package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"buymeacoffee/coffee"
)

var (
	donorName    string
	donorMessage string
	donorAmount  string
	receiptDir   string
)

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Buys a coffee: sends a donation with a name and a message",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		if _, err := connect(ctx); err != nil {
			return err
		}

		draft := coffee.NewDraft()
		draft.Name = donorName
		draft.Message = donorMessage
		draft.Amount = cfg.DefaultAmount
		if cmd.Flags().Changed("amount") {
			draft.Amount = donorAmount
		}

		receipt, err := session.Submit(ctx, &draft)
		if err != nil {
			return fmt.Errorf("transaction failed: %w", err)
		}
		fmt.Println("✅ " + session.DonationMessage())
		printReceipt(os.Stdout, receipt)

		if receiptDir == "" {
			return nil
		}
		var buf bytes.Buffer
		name, err := session.ExportReceipt(&buf)
		if err != nil {
			return err
		}
		path := filepath.Join(receiptDir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write receipt: %w", err)
		}
		logger.Info("receipt saved", zap.String("path", path))
		fmt.Printf("Receipt saved to %v\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(donateCmd)

	donateCmd.Flags().StringVarP(&donorName, "name", "n", "", "your name (empty shows as Anonymous)")
	donateCmd.Flags().StringVarP(&donorMessage, "message", "m", "", "message for the memo")
	donateCmd.Flags().StringVarP(&donorAmount, "amount", "a", coffee.DefaultAmount, "amount in ether (defaults to donation.default_amount)")
	donateCmd.Flags().StringVar(&receiptDir, "receipt-dir", "", "save the transaction receipt as JSON in this directory")
	donateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "sign without asking")
}
