package coffee

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"buymeacoffee/contract"
	"buymeacoffee/wallet"
)

// Connect requests account access, moves the wallet onto the target chain,
// binds the contract, starts the live listener and loads the read model.
// Calling it again reconciles to the same state; the contract is rebound and
// the listener replaced only when the chain or account changed.
func (s *Session) Connect(ctx context.Context) (ConnectionState, error) {
	chainID, from, err := s.reconcile(ctx)
	if err != nil {
		s.fail("connect", err)
		return s.State(), err
	}
	if err := s.attach(ctx, chainID, from); err != nil {
		s.fail("connect", err)
		return s.State(), err
	}
	if _, err := s.Refresh(ctx); err != nil {
		return s.State(), err
	}
	s.setStatus("")
	s.logger.Info("connected", zap.String("chain_id", chainID.String()), zap.String("address", from.Hex()))
	return s.State(), nil
}

func (s *Session) reconcile(ctx context.Context) (*big.Int, common.Address, error) {
	if s.wallet == nil {
		return nil, common.Address{}, ErrNoWallet
	}

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil {
		if code, ok := wallet.ErrorCode(err); ok && code == wallet.CodeDisconnected {
			return nil, common.Address{}, fmt.Errorf("%w: %w", ErrRPC, err)
		}
		return nil, common.Address{}, fmt.Errorf("%w: %w", ErrUserRejected, err)
	}
	if len(accounts) == 0 {
		return nil, common.Address{}, fmt.Errorf("%w: wallet returned no accounts", ErrUserRejected)
	}

	target := s.target.ChainIDBig()
	current, err := s.wallet.ChainID(ctx)
	if err != nil {
		return nil, common.Address{}, classifyRemote(err)
	}
	if current.Cmp(target) != 0 {
		s.logger.Info("wallet on wrong network",
			zap.String("chain_id", current.String()),
			zap.String("target", target.String()))
		if err := s.switchNetwork(ctx, target); err != nil {
			return nil, common.Address{}, err
		}
		current, err = s.wallet.ChainID(ctx)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("%w: %w", ErrNetworkSwitch, err)
		}
		if current.Cmp(target) != 0 {
			return nil, common.Address{}, fmt.Errorf("%w: wallet is on chain %s, want %s", ErrNetworkSwitch, current, target)
		}
	}
	return current, accounts[0], nil
}

// switchNetwork asks the wallet to switch and, when the wallet does not know
// the target chain, to add it. Adding implies switching.
func (s *Session) switchNetwork(ctx context.Context, target *big.Int) error {
	err := s.wallet.SwitchChain(ctx, target)
	if err == nil {
		s.metrics.ObserveNetworkSwitch("switched")
		return nil
	}
	if !wallet.IsUnrecognizedChain(err) {
		s.metrics.ObserveNetworkSwitch("failed")
		return fmt.Errorf("%w: %w", ErrNetworkSwitch, err)
	}

	s.logger.Info("wallet does not know target chain, adding it", zap.String("chain_id", target.String()))
	if err := s.wallet.AddChain(ctx, s.target.AddChainParams()); err != nil {
		s.metrics.ObserveNetworkSwitch("failed")
		return fmt.Errorf("%w: add chain: %w", ErrNetworkSwitch, err)
	}
	s.metrics.ObserveNetworkSwitch("added")
	return nil
}

// attach binds the contract for chainID/from and replaces the listener,
// cancelling the previous one before the new one starts.
func (s *Session) attach(ctx context.Context, chainID *big.Int, from common.Address) error {
	s.mu.RLock()
	unchanged := s.handle != nil && s.sub.Active() &&
		s.state.ChainID != nil && s.state.ChainID.Cmp(chainID) == 0 &&
		s.state.Address == from
	s.mu.RUnlock()
	if unchanged {
		return nil
	}

	handle, err := s.bind(ctx, chainID, s.wallet, from)
	if err != nil {
		if errors.Is(err, ErrUnsupportedChain) {
			return err
		}
		return fmt.Errorf("bind contract: %w", classifyRemote(err))
	}

	s.mu.Lock()
	old := s.sub
	s.sub = nil
	s.handle = handle
	if s.state.ChainID == nil || s.state.ChainID.Cmp(chainID) != 0 || s.state.Address != from {
		s.state.Balance = nil
	}
	s.state.ChainID = chainID
	s.state.Address = from
	s.mu.Unlock()
	old.Cancel()

	sub, err := Subscribe(context.WithoutCancel(ctx), handle, s.deliver, s.logger)
	if err != nil {
		return fmt.Errorf("%w: subscribe to %s: %w", ErrRPC, handle.Address().Hex(), err)
	}
	s.mu.Lock()
	if s.handle != handle {
		// A concurrent attach replaced the handle while this one subscribed.
		s.mu.Unlock()
		sub.Cancel()
		return nil
	}
	stale := s.sub
	s.sub = sub
	s.mu.Unlock()
	stale.Cancel()
	return nil
}

func (s *Session) deliver(m contract.Memo) {
	s.metrics.ObserveMemo()
	if s.memos.Add(m) {
		s.logger.Debug("memo received", zap.String("from", m.From.Hex()), zap.Uint64("timestamp", m.Timestamp))
	}
}

func (s *Session) fail(op string, err error) {
	s.logger.Warn(op+" failed", zap.Error(err), zap.String("kind", Kind(err)))
	s.setStatus(err.Error())
}
