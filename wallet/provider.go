package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"buymeacoffee/chain"
)

// Backend is the JSON-RPC surface a bound contract needs, plus native balances.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Provider is the injected wallet: account access, network management and
// signing. Failures are reported as *ProviderError where the wallet has a code.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, params chain.AddChainParams) error
	Backend() Backend
	Transactor(ctx context.Context, from common.Address) (*bind.TransactOpts, error)
}
