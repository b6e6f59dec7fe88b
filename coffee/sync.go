package coffee

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FetchReadModel reads the balance of account, the donation total and the
// memo list. The reads run concurrently and are not atomic with respect to
// each other, so the total may be slightly out of step with the memos. Any
// failure fails the whole fetch.
func FetchReadModel(ctx context.Context, c Contract, account common.Address) (ReadModel, error) {
	var m ReadModel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balance, err := c.BalanceAt(gctx, account)
		m.Balance = balance
		return err
	})
	g.Go(func() error {
		total, err := c.TotalDonations(gctx)
		m.TotalDonations = total
		return err
	})
	g.Go(func() error {
		memos, err := c.Memos(gctx)
		m.Memos = memos
		return err
	})
	if err := g.Wait(); err != nil {
		return ReadModel{}, classifyRemote(err)
	}
	return m, nil
}

// Refresh fetches a fresh read model and publishes it. Balance, total and
// memos are published together or not at all; on failure the previous
// values stay in place.
func (s *Session) Refresh(ctx context.Context) (ReadModel, error) {
	handle, account := s.current()
	if handle == nil {
		s.fail("refresh", ErrNotConnected)
		return ReadModel{}, ErrNotConnected
	}

	fresh, err := FetchReadModel(ctx, handle, account)
	s.metrics.ObserveRefresh(err)
	if err != nil {
		s.fail("refresh", err)
		return ReadModel{}, err
	}

	s.mu.Lock()
	if s.handle != handle {
		s.mu.Unlock()
		s.logger.Debug("discarding refresh for replaced contract handle")
		return s.ReadModel(), nil
	}
	s.state.Balance = fresh.Balance
	s.total = fresh.TotalDonations
	added := s.memos.Merge(fresh.Memos)
	s.mu.Unlock()

	s.logger.Debug("read model refreshed",
		zap.String("balance", fresh.Balance.String()),
		zap.String("total", fresh.TotalDonations.String()),
		zap.Int("memos_added", added))
	return s.ReadModel(), nil
}
