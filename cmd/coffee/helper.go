package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"buymeacoffee/coffee"
	"buymeacoffee/contract"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func connect(ctx context.Context) (coffee.ConnectionState, error) {
	state, err := session.Connect(ctx)
	if err != nil {
		return state, fmt.Errorf("connect: %w", err)
	}
	return state, nil
}

func printState(w io.Writer, state coffee.ConnectionState, model coffee.ReadModel) {
	network := session.Target()
	symbol := network.Currency.Symbol
	fmt.Fprintf(w, "------------- %v -----------------\n", network.Name)
	fmt.Fprintf(w, "Chain ID : %v\n", state.ChainID)
	fmt.Fprintf(w, "Account  : %v\n", state.Address.Hex())
	fmt.Fprintf(w, "           %v\n", network.AddressURL(state.Address.Hex()))
	fmt.Fprintf(w, "Balance  : %v %v\n", state.BalanceEther(), symbol)
	fmt.Fprintf(w, "Donated  : %v %v in %v memos\n", model.TotalEther(), symbol, humanize.Comma(int64(len(model.Memos))))
	if state.Status != "" {
		fmt.Fprintf(w, "Status   : %v\n", state.Status)
	}
}

func printProjection(w io.Writer, p coffee.Projection) {
	symbol := session.Target().Currency.Symbol
	fmt.Fprintf(w, "------------- TOP MEMOS (%v) -----------------\n", p.Viewport)
	if len(p.Top) == 0 {
		fmt.Fprintln(w, "No memos yet.")
		return
	}
	for i, m := range p.Top {
		place := ""
		if p.Layout != nil {
			pos := p.Layout[i]
			place = fmt.Sprintf(" [%v #%v]", pos.Side, pos.Slot+1)
		}
		fmt.Fprintf(w, "#%d%v %v %v - %v\n", i+1, place, m.AmountEther(), symbol, m.DisplayName())
		printMemoBody(w, m)
	}
}

func printMemos(w io.Writer, memos []contract.Memo) {
	symbol := session.Target().Currency.Symbol
	fmt.Fprintf(w, "------------- ALL MEMOS -----------------\n")
	for i, m := range memos {
		fmt.Fprintf(w, "#%03d %v %v - %v\n", i+1, m.AmountEther(), symbol, m.DisplayName())
		printMemoBody(w, m)
	}
}

func printMemoBody(w io.Writer, m contract.Memo) {
	fmt.Fprintf(w, "     %q\n", m.Message)
	fmt.Fprintf(w, "     from %v, %v\n", m.From.Hex(), humanize.Time(m.Time()))
}

func printReceipt(w io.Writer, r *coffee.Receipt) {
	fmt.Fprintf(w, "Transaction : %v\n", r.TransactionHash.Hex())
	fmt.Fprintf(w, "Block       : %v\n", humanize.Comma(int64(r.BlockNumber)))
	fmt.Fprintf(w, "Gas used    : %v\n", humanize.Comma(int64(r.GasUsed)))
	fmt.Fprintf(w, "Explorer    : %v\n", r.ExplorerURL)
}
