package coffee

import (
	"errors"
	"fmt"
	"strings"

	"buymeacoffee/contract"
	"buymeacoffee/wallet"
)

var (
	ErrNoWallet           = errors.New("no wallet is installed")
	ErrUserRejected       = errors.New("request rejected in wallet")
	ErrNetworkSwitch      = errors.New("could not switch wallet network")
	ErrUnsupportedChain   = contract.ErrUnsupportedChain
	ErrValidation         = errors.New("invalid donation")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrRPC                = errors.New("rpc request failed")
	ErrNotConnected       = errors.New("contract is not loaded")
	ErrSubmissionInFlight = errors.New("a donation is already being submitted")
	ErrNoReceipt          = errors.New("no confirmed transaction receipt")
)

// classifyRemote maps a wallet or node failure onto the error taxonomy.
func classifyRemote(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUserRejected), errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrRPC):
		return err
	case wallet.IsUserRejected(err):
		return fmt.Errorf("%w: %w", ErrUserRejected, err)
	case isInsufficientFunds(err):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	default:
		return fmt.Errorf("%w: %w", ErrRPC, err)
	}
}

// Nodes and wallets only report this condition as text.
func isInsufficientFunds(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}

// Kind names the taxonomy entry err belongs to, "" for foreign errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoWallet):
		return "no_wallet"
	case errors.Is(err, ErrUserRejected):
		return "user_rejected"
	case errors.Is(err, ErrNetworkSwitch):
		return "network_switch"
	case errors.Is(err, ErrUnsupportedChain):
		return "unsupported_chain"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrSubmissionInFlight):
		return "in_flight"
	case errors.Is(err, ErrNotConnected):
		return "not_connected"
	case errors.Is(err, ErrRPC):
		return "rpc"
	default:
		return ""
	}
}
