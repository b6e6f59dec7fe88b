package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"buymeacoffee/wallet"
)

var ErrNoBackend = errors.New("wallet has no active backend")

// Handle is the donation contract bound to one chain and one signer.
type Handle struct {
	chainID  *big.Int
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
	backend  wallet.Backend
	auth     *bind.TransactOpts
}

// Bind resolves the deployment for chainID and binds it to the signer in auth.
func (r Registry) Bind(chainID *big.Int, backend wallet.Backend, auth *bind.TransactOpts) (*Handle, error) {
	d, err := r.Lookup(chainID)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, ErrNoBackend
	}
	if auth == nil {
		return nil, fmt.Errorf("bind %s: missing transactor", d.Address.Hex())
	}
	parsed, err := ParseABI(d.ABI)
	if err != nil {
		return nil, err
	}
	return &Handle{
		chainID:  new(big.Int).Set(chainID),
		address:  d.Address,
		abi:      parsed,
		contract: bind.NewBoundContract(d.Address, parsed, backend, backend, backend),
		backend:  backend,
		auth:     auth,
	}, nil
}

func (h *Handle) Address() common.Address {
	return h.address
}

func (h *Handle) ChainID() *big.Int {
	return new(big.Int).Set(h.chainID)
}

// Signer is the account value-bearing calls are sent from.
func (h *Handle) Signer() common.Address {
	return h.auth.From
}

func (h *Handle) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := h.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("get balance of %s: %w", account.Hex(), err)
	}
	return balance, nil
}

func (h *Handle) TotalDonations(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := h.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodTotalDonations); err != nil {
		return nil, fmt.Errorf("call %s: %w", MethodTotalDonations, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("call %s: unexpected %d results", MethodTotalDonations, len(out))
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (h *Handle) Memos(ctx context.Context) ([]Memo, error) {
	var out []interface{}
	if err := h.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodGetMemos); err != nil {
		return nil, fmt.Errorf("call %s: %w", MethodGetMemos, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("call %s: unexpected %d results", MethodGetMemos, len(out))
	}
	raw := *abi.ConvertType(out[0], new([]memoFields)).(*[]memoFields)
	memos := make([]Memo, 0, len(raw))
	for _, f := range raw {
		memos = append(memos, f.memo())
	}
	return memos, nil
}

// BuyCoffee sends the payable donation call. Gas and fees are left to the
// backend defaults.
func (h *Handle) BuyCoffee(ctx context.Context, name, message string, value *big.Int) (*types.Transaction, error) {
	opts := *h.auth
	opts.Context = ctx
	opts.Value = value
	tx, err := h.contract.Transact(&opts, MethodBuyCoffee, name, message)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", MethodBuyCoffee, err)
	}
	return tx, nil
}

// WaitMined blocks until tx is included. A reverted transaction is returned
// together with a *RevertError.
func (h *Handle) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, h.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, &RevertError{TxHash: tx.Hash(), Reason: h.revertReason(ctx, tx, receipt)}
	}
	return receipt, nil
}

// revertReason replays tx at its block to recover the revert message.
func (h *Handle) revertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) string {
	msg := ethereum.CallMsg{
		From:  h.auth.From,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := h.backend.CallContract(ctx, msg, receipt.BlockNumber)
	return RevertReason(err)
}

// WatchMemos streams NewMemo events of this contract into sink until the
// subscription is cancelled or fails.
func (h *Handle) WatchMemos(ctx context.Context, sink chan<- Memo) (event.Subscription, error) {
	logs, sub, err := h.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, EventNewMemo)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", EventNewMemo, err)
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				memo, err := h.ParseNewMemo(log)
				if err != nil {
					return err
				}
				select {
				case sink <- memo:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

func (h *Handle) ParseNewMemo(log types.Log) (Memo, error) {
	var f memoFields
	if err := h.contract.UnpackLog(&f, EventNewMemo, log); err != nil {
		return Memo{}, fmt.Errorf("unpack %s: %w", EventNewMemo, err)
	}
	return f.memo(), nil
}
