package coffee

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap/zaptest"

	"buymeacoffee/chain"
	"buymeacoffee/contract"
	"buymeacoffee/wallet"
)

var (
	alice        = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	contractAddr = common.HexToAddress("0x2F3B3bC31FEc78A4378E6ff18B8F9F50667d45df")
	oneEther     = big.NewInt(1_000_000_000_000_000_000)
)

// fakeWallet behaves like a browser wallet that knows a fixed set of chains.
type fakeWallet struct {
	mu          sync.Mutex
	accounts    []common.Address
	accountsErr error
	chainID     uint64
	known       map[uint64]bool
	switchErr   error
	addErr      error
	calls       []string
	added       []chain.AddChainParams
}

func newFakeWallet(chainID uint64, known ...uint64) *fakeWallet {
	w := &fakeWallet{
		accounts: []common.Address{alice},
		chainID:  chainID,
		known:    map[uint64]bool{chainID: true},
	}
	for _, id := range known {
		w.known[id] = true
	}
	return w
}

func (w *fakeWallet) record(call string) {
	w.calls = append(w.calls, call)
}

func (w *fakeWallet) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_requestAccounts")
	if w.accountsErr != nil {
		return nil, w.accountsErr
	}
	return w.accounts, nil
}

func (w *fakeWallet) ChainID(context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_chainId")
	return new(big.Int).SetUint64(w.chainID), nil
}

func (w *fakeWallet) SwitchChain(_ context.Context, chainID *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("wallet_switchEthereumChain")
	if w.switchErr != nil {
		return w.switchErr
	}
	if !w.known[chainID.Uint64()] {
		return wallet.NewProviderError(wallet.CodeUnrecognizedChain, "Unrecognized chain ID")
	}
	w.chainID = chainID.Uint64()
	return nil
}

func (w *fakeWallet) AddChain(_ context.Context, params chain.AddChainParams) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("wallet_addEthereumChain")
	w.added = append(w.added, params)
	if w.addErr != nil {
		return w.addErr
	}
	id, err := params.ParseChainID()
	if err != nil {
		return err
	}
	w.known[id] = true
	w.chainID = id
	return nil
}

func (w *fakeWallet) Backend() wallet.Backend {
	return nil
}

func (w *fakeWallet) Transactor(_ context.Context, from common.Address) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: from}, nil
}

// fakeContract is an in-memory donation contract.
type fakeContract struct {
	mu         sync.Mutex
	signer     common.Address
	balance    *big.Int
	balanceErr error
	total      *big.Int
	totalErr   error
	memos      []contract.Memo
	memosErr   error
	buyErr     error
	waitErr    error
	buyGate    chan struct{}
	buyEntered chan struct{}

	balanceCalls int
	memoCalls    int
	sent         []sentDonation
	watches      int
	sinks        []chan<- contract.Memo
	subs         []*fakeSub
}

type sentDonation struct {
	name, message string
	value         *big.Int
}

func newFakeContract(signer common.Address) *fakeContract {
	return &fakeContract{
		signer:  signer,
		balance: new(big.Int).Set(oneEther),
		total:   new(big.Int),
	}
}

func (c *fakeContract) Address() common.Address { return contractAddr }
func (c *fakeContract) Signer() common.Address  { return c.signer }

func (c *fakeContract) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balanceCalls++
	return c.balance, c.balanceErr
}

func (c *fakeContract) TotalDonations(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, c.totalErr
}

func (c *fakeContract) Memos(context.Context) ([]contract.Memo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memoCalls++
	if c.memosErr != nil {
		return nil, c.memosErr
	}
	return append([]contract.Memo(nil), c.memos...), nil
}

func (c *fakeContract) BuyCoffee(_ context.Context, name, message string, value *big.Int) (*types.Transaction, error) {
	if c.buyEntered != nil {
		close(c.buyEntered)
	}
	if c.buyGate != nil {
		<-c.buyGate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buyErr != nil {
		return nil, c.buyErr
	}
	c.sent = append(c.sent, sentDonation{name: name, message: message, value: value})
	return types.NewTransaction(uint64(len(c.sent)), contractAddr, value, 100_000, big.NewInt(1), nil), nil
}

// WaitMined "mines" the donation: it lands in the contract state as the
// real contract would record it.
func (c *fakeContract) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waitErr != nil {
		return nil, c.waitErr
	}
	last := c.sent[len(c.sent)-1]
	c.memos = append(c.memos, contract.Memo{
		Name:      last.name,
		Message:   last.message,
		Timestamp: uint64(1700000000 + len(c.memos)),
		From:      c.signer,
		Amount:    last.value,
	})
	c.total = new(big.Int).Add(c.total, last.value)
	c.balance = new(big.Int).Sub(c.balance, last.value)
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(42),
		GasUsed:     50_000,
	}, nil
}

type fakeSub struct {
	event.Subscription
	fail         chan error
	unsubscribed chan struct{}
}

func (c *fakeContract) WatchMemos(_ context.Context, sink chan<- contract.Memo) (event.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watches++
	fs := &fakeSub{fail: make(chan error, 1), unsubscribed: make(chan struct{})}
	fs.Subscription = event.NewSubscription(func(quit <-chan struct{}) error {
		select {
		case err := <-fs.fail:
			return err
		case <-quit:
			close(fs.unsubscribed)
			return nil
		}
	})
	c.sinks = append(c.sinks, sink)
	c.subs = append(c.subs, fs)
	return fs, nil
}

// emit pushes an event into the most recent watch.
func (c *fakeContract) emit(m contract.Memo) {
	c.mu.Lock()
	sink := c.sinks[len(c.sinks)-1]
	c.mu.Unlock()
	sink <- m
}

func (c *fakeContract) Sent() []sentDonation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentDonation(nil), c.sent...)
}

func (c *fakeContract) MemoCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memoCalls
}

func (c *fakeContract) BalanceCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceCalls
}

func (c *fakeContract) set(fn func(c *fakeContract)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// fakeBinder hands out one fakeContract per bind, keyed by signer.
type fakeBinder struct {
	mu        sync.Mutex
	binds     int
	contracts map[common.Address]*fakeContract
	err       error
}

func newFakeBinder(contracts ...*fakeContract) *fakeBinder {
	b := &fakeBinder{contracts: map[common.Address]*fakeContract{}}
	for _, c := range contracts {
		b.contracts[c.signer] = c
	}
	return b
}

func (b *fakeBinder) bind(_ context.Context, chainID *big.Int, _ wallet.Provider, from common.Address) (Contract, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.binds++
	if b.err != nil {
		return nil, b.err
	}
	if chainID.Uint64() != chain.SepoliaChainID {
		return nil, contract.ErrUnsupportedChain
	}
	c, ok := b.contracts[from]
	if !ok {
		return nil, errors.New("no fake contract for signer")
	}
	return c, nil
}

func (b *fakeBinder) Binds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.binds
}

func newTestSession(t *testing.T, w wallet.Provider, b *fakeBinder, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithBinder(b.bind), WithLogger(zaptest.NewLogger(t))}, opts...)
	s := NewSession(w, chain.Sepolia(), opts...)
	t.Cleanup(s.Close)
	return s
}

// connectedSession returns a session connected to a fresh fake contract.
func connectedSession(t *testing.T, opts ...Option) (*Session, *fakeContract) {
	t.Helper()
	c := newFakeContract(alice)
	s := newTestSession(t, newFakeWallet(chain.SepoliaChainID), newFakeBinder(c), opts...)
	_, err := s.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return s, c
}

func memo(name string, amount int64, ts uint64) contract.Memo {
	return contract.Memo{
		Name:      name,
		Message:   "msg " + name,
		Timestamp: ts,
		From:      bob,
		Amount:    big.NewInt(amount),
	}
}

// big1e15 is 0.001 ether in wei.
func big1e15() *big.Int {
	return big.NewInt(1_000_000_000_000_000)
}
