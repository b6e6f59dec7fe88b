package coffee

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"buymeacoffee/contract"
)

// Subscription is a live NewMemo listener.
type Subscription struct {
	mu     sync.Mutex
	active bool
	err    error

	once   sync.Once
	cancel context.CancelFunc
	sub    event.Subscription
	quit   chan struct{}
	done   chan struct{}
}

// Subscribe delivers each NewMemo event of c to onMemo, one at a time and in
// delivery order, until the subscription is cancelled or the stream fails.
// onMemo must not call Cancel.
func Subscribe(ctx context.Context, c Contract, onMemo func(contract.Memo), logger *zap.Logger) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sink := make(chan contract.Memo, 16)
	sub, err := c.WatchMemos(ctx, sink)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Subscription{
		active: true,
		cancel: cancel,
		sub:    sub,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.loop(sink, onMemo, logger)
	return s, nil
}

func (s *Subscription) loop(sink <-chan contract.Memo, onMemo func(contract.Memo), logger *zap.Logger) {
	defer close(s.done)
	for {
		select {
		case m := <-sink:
			s.deliver(m, onMemo)
		case err := <-s.sub.Err():
			// The stream ended without Cancel, with or without an error.
			if err != nil {
				logger.Warn("memo subscription failed", zap.Error(err))
			} else {
				logger.Info("memo subscription ended")
			}
			s.mu.Lock()
			s.err = err
			s.active = false
			s.mu.Unlock()
			return
		case <-s.quit:
			return
		}
	}
}

func (s *Subscription) deliver(m contract.Memo, onMemo func(contract.Memo)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	onMemo(m)
}

// Cancel stops delivery. No callback runs after Cancel returns. It is safe
// to call more than once and on a nil or already failed subscription.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
		close(s.quit)
		s.sub.Unsubscribe()
		s.cancel()
	})
}

func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Err returns the stream failure that ended the subscription, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the delivery loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
