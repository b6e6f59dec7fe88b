package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"buymeacoffee/chain"
)

// Client is a dialed JSON-RPC endpoint.
type Client interface {
	Backend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

type Dialer func(ctx context.Context, rpcURL string) (Client, error)

// Approver is consulted before every signature. Returning false rejects the
// request with CodeUserRejected.
type Approver func(from common.Address, tx *types.Transaction) bool

// LocalWallet is a key-backed Provider. It keeps a list of networks it knows,
// one of which is active, and behaves like a browser wallet when asked to
// switch to or add a network.
type LocalWallet struct {
	mu       sync.Mutex
	key      *ecdsa.PrivateKey
	address  common.Address
	networks map[uint64]string
	active   uint64
	client   Client

	dial    Dialer
	approve Approver
	logger  *zap.Logger
}

type Option func(*LocalWallet)

// WithNetwork registers an additional network the wallet already knows.
func WithNetwork(chainID uint64, rpcURL string) Option {
	return func(w *LocalWallet) {
		w.networks[chainID] = rpcURL
	}
}

func WithApprover(approve Approver) Option {
	return func(w *LocalWallet) {
		w.approve = approve
	}
}

func WithDialer(dial Dialer) Option {
	return func(w *LocalWallet) {
		w.dial = dial
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *LocalWallet) {
		w.logger = logger
	}
}

// NewLocalWallet creates a wallet whose active network is chainID at rpcURL.
func NewLocalWallet(privateKeyHex string, chainID uint64, rpcURL string, opts ...Option) (*LocalWallet, error) {
	key, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	address, err := AddressFromKey(key)
	if err != nil {
		return nil, err
	}

	w := &LocalWallet{
		key:      key,
		address:  address,
		networks: map[uint64]string{chainID: rpcURL},
		active:   chainID,
		dial:     dialEthClient,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func dialEthClient(ctx context.Context, rpcURL string) (Client, error) {
	return ethclient.DialContext(ctx, rpcURL)
}

func (w *LocalWallet) Address() common.Address {
	return w.address
}

func (w *LocalWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if _, err := w.connected(ctx); err != nil {
		return nil, err
	}
	return []common.Address{w.address}, nil
}

// ChainID reports the chain id of the active endpoint as the node sees it.
func (w *LocalWallet) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := w.connected(ctx)
	if err != nil {
		return nil, err
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, &ProviderError{Code: CodeChainDisconnected, Message: "failed to read chain id", Err: err}
	}
	return id, nil
}

func (w *LocalWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	if !chainID.IsUint64() {
		return NewProviderError(CodeUnrecognizedChain, fmt.Sprintf("unrecognized chain id %s", chainID))
	}
	id := chainID.Uint64()

	w.mu.Lock()
	defer w.mu.Unlock()

	rpcURL, ok := w.networks[id]
	if !ok {
		return NewProviderError(CodeUnrecognizedChain, fmt.Sprintf("unrecognized chain id %d, try adding the chain first", id))
	}
	if id == w.active && w.client != nil {
		return nil
	}

	client, err := w.dial(ctx, rpcURL)
	if err != nil {
		return &ProviderError{Code: CodeChainDisconnected, Message: "failed to connect to network", Err: err}
	}
	if w.client != nil {
		w.client.Close()
	}
	w.client = client
	w.active = id
	w.logger.Info("switched network", zap.Uint64("chain_id", id))
	return nil
}

// AddChain registers the network and switches to it, as browser wallets do
// after the user approves the addition.
func (w *LocalWallet) AddChain(ctx context.Context, params chain.AddChainParams) error {
	id, err := params.ParseChainID()
	if err != nil {
		return &ProviderError{Code: CodeInternal, Message: "invalid add chain request", Err: err}
	}
	if len(params.RPCURLs) == 0 || params.RPCURLs[0] == "" {
		return NewProviderError(CodeInternal, "add chain request has no rpc url")
	}

	w.mu.Lock()
	w.networks[id] = params.RPCURLs[0]
	w.mu.Unlock()
	w.logger.Info("added network", zap.Uint64("chain_id", id), zap.String("name", params.ChainName))

	return w.SwitchChain(ctx, new(big.Int).SetUint64(id))
}

func (w *LocalWallet) Backend() Backend {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client
}

// Transactor returns signing options for the active network. The signer
// asks the Approver before producing a signature.
func (w *LocalWallet) Transactor(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	if from != w.address {
		return nil, NewProviderError(CodeUnauthorized, fmt.Sprintf("account %s is not managed by this wallet", from.Hex()))
	}
	w.mu.Lock()
	active := w.active
	w.mu.Unlock()

	opts, err := bind.NewKeyedTransactorWithChainID(w.key, new(big.Int).SetUint64(active))
	if err != nil {
		return nil, &ProviderError{Code: CodeInternal, Message: "failed to create transactor", Err: err}
	}
	sign := opts.Signer
	opts.Signer = func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if w.approve != nil && !w.approve(addr, tx) {
			return nil, NewProviderError(CodeUserRejected, "user rejected the request")
		}
		return sign(addr, tx)
	}
	opts.Context = ctx
	return opts, nil
}

func (w *LocalWallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		w.client.Close()
		w.client = nil
	}
}

// connected dials the active network on first use.
func (w *LocalWallet) connected(ctx context.Context) (Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		return w.client, nil
	}
	client, err := w.dial(ctx, w.networks[w.active])
	if err != nil {
		return nil, &ProviderError{Code: CodeDisconnected, Message: "failed to connect to network", Err: err}
	}
	w.client = client
	return client, nil
}
