package coffee

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"buymeacoffee/chain"
	"buymeacoffee/contract"
	"buymeacoffee/metrics"
	"buymeacoffee/wallet"
)

// Contract is the bound donation contract as the session uses it.
// *contract.Handle implements it.
type Contract interface {
	Address() common.Address
	Signer() common.Address
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	TotalDonations(ctx context.Context) (*big.Int, error)
	Memos(ctx context.Context) ([]contract.Memo, error)
	BuyCoffee(ctx context.Context, name, message string, value *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	WatchMemos(ctx context.Context, sink chan<- contract.Memo) (event.Subscription, error)
}

// BindFunc produces a contract handle for chainID signed by from.
type BindFunc func(ctx context.Context, chainID *big.Int, w wallet.Provider, from common.Address) (Contract, error)

// RegistryBinder binds through a static deployment registry.
func RegistryBinder(r contract.Registry) BindFunc {
	return func(ctx context.Context, chainID *big.Int, w wallet.Provider, from common.Address) (Contract, error) {
		auth, err := w.Transactor(ctx, from)
		if err != nil {
			return nil, err
		}
		h, err := r.Bind(chainID, w.Backend(), auth)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}

// ConnectionState is what the presentation layer shows about the wallet.
type ConnectionState struct {
	ChainID *big.Int       `json:"chainId"`
	Address common.Address `json:"address"`
	Balance *big.Int       `json:"balance"`
	Status  string         `json:"status"`
}

func (s ConnectionState) Connected() bool {
	return s.ChainID != nil
}

func (s ConnectionState) BalanceEther() string {
	return chain.FormatEther(s.Balance)
}

// ReadModel is one consistent view of balance, donations and memos.
type ReadModel struct {
	Balance        *big.Int        `json:"balance"`
	TotalDonations *big.Int        `json:"totalDonations"`
	Memos          []contract.Memo `json:"memos"`
}

func (m ReadModel) TotalEther() string {
	return chain.FormatEther(m.TotalDonations)
}

// Session owns all client state for one connected wallet. The wallet is
// injected; a nil wallet means none is installed.
type Session struct {
	wallet  wallet.Provider
	target  chain.Network
	bind    BindFunc
	logger  *zap.Logger
	metrics *metrics.Metrics
	onPhase func(Phase)

	mu       sync.RWMutex
	state    ConnectionState
	handle   Contract
	total    *big.Int
	sub      *Subscription
	receipt  *Receipt
	donation string

	memos    *MemoBook
	inFlight atomic.Bool
}

type Option func(*Session)

func WithBinder(bind BindFunc) Option {
	return func(s *Session) {
		s.bind = bind
	}
}

func WithRegistry(r contract.Registry) Option {
	return WithBinder(RegistryBinder(r))
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithPhaseHook is called on every donation pipeline transition.
func WithPhaseHook(fn func(Phase)) Option {
	return func(s *Session) {
		s.onPhase = fn
	}
}

func NewSession(w wallet.Provider, target chain.Network, opts ...Option) *Session {
	s := &Session{
		wallet: w,
		target: target,
		bind:   RegistryBinder(contract.DefaultRegistry()),
		logger: zap.NewNop(),
		memos:  NewMemoBook(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Target() chain.Network {
	return s.target
}

func (s *Session) State() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.state.Status = msg
	s.mu.Unlock()
}

// ReadModel returns the last published read model.
func (s *Session) ReadModel() ReadModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ReadModel{
		Balance:        s.state.Balance,
		TotalDonations: s.total,
		Memos:          s.memos.Snapshot(),
	}
}

func (s *Session) Memos() *MemoBook {
	return s.memos
}

// Projection recomputes the memo window from the current list.
func (s *Session) Projection(viewport Viewport) Projection {
	return Project(s.memos.Snapshot(), viewport)
}

func (s *Session) current() (Contract, common.Address) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle, s.state.Address
}

// Close cancels the live listener. A later Connect subscribes again.
func (s *Session) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	sub.Cancel()
}
