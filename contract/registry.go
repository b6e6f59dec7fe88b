package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"buymeacoffee/chain"
)

var ErrUnsupportedChain = errors.New("no contract deployment for chain")

// Deployment is a contract address and its interface descriptor on one chain.
type Deployment struct {
	Address common.Address
	ABI     string
}

// Registry maps chain ids to deployments. A miss is an error, there is no
// fallback address.
type Registry map[uint64]Deployment

func DefaultRegistry() Registry {
	return Registry{
		chain.SepoliaChainID: {
			Address: common.HexToAddress("0x2F3B3bC31FEc78A4378E6ff18B8F9F50667d45df"),
			ABI:     BuyMeACoffeeABI,
		},
	}
}

func (r Registry) Lookup(chainID *big.Int) (Deployment, error) {
	if chainID == nil || !chainID.IsUint64() {
		return Deployment{}, fmt.Errorf("%w %v", ErrUnsupportedChain, chainID)
	}
	d, ok := r[chainID.Uint64()]
	if !ok || d.Address == (common.Address{}) {
		return Deployment{}, fmt.Errorf("%w %s", ErrUnsupportedChain, chainID)
	}
	if d.ABI == "" {
		d.ABI = BuyMeACoffeeABI
	}
	return d, nil
}

// With returns a copy of r with address registered for chainID.
func (r Registry) With(chainID uint64, address common.Address) Registry {
	out := make(Registry, len(r)+1)
	for id, d := range r {
		out[id] = d
	}
	out[chainID] = Deployment{Address: address, ABI: BuyMeACoffeeABI}
	return out
}
