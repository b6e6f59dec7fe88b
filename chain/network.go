package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const SepoliaChainID = 11155111

var (
	ErrMissingChainID  = errors.New("network chain id is required")
	ErrMissingRPCURL   = errors.New("network rpc url is required")
	ErrInvalidDecimals = errors.New("native currency decimals must be 18")
)

type NativeCurrency struct {
	Name     string `json:"name" mapstructure:"name"`
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals"`
}

// Network describes the single chain the application expects the wallet to be on.
// The display metadata is only used when the wallet has to be taught the chain.
type Network struct {
	ChainID     uint64         `mapstructure:"chain_id"`
	Name        string         `mapstructure:"name"`
	RPCURL      string         `mapstructure:"rpc_url"`
	ExplorerURL string         `mapstructure:"explorer_url"`
	Currency    NativeCurrency `mapstructure:"currency"`
}

// AddChainParams mirrors the wallet_addEthereumChain request object.
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RPCURLs           []string       `json:"rpcUrls"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

// Sepolia - default target network
func Sepolia() Network {
	return Network{
		ChainID:     SepoliaChainID,
		Name:        "Sepolia Testnet",
		RPCURL:      "https://rpc.sepolia.org",
		ExplorerURL: "https://sepolia.etherscan.io",
		Currency: NativeCurrency{
			Name:     "SepoliaETH",
			Symbol:   "ETH",
			Decimals: 18,
		},
	}
}

func (n Network) Validate() error {
	if n.ChainID == 0 {
		return ErrMissingChainID
	}
	if strings.TrimSpace(n.RPCURL) == "" {
		return ErrMissingRPCURL
	}
	// Amounts are parsed and shown in ether units.
	if n.Currency.Decimals != EtherDecimals {
		return ErrInvalidDecimals
	}
	return nil
}

func (n Network) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(n.ChainID)
}

// HexChainID returns the chain id in the 0x-prefixed form wallets expect.
func (n Network) HexChainID() string {
	return hexutil.EncodeUint64(n.ChainID)
}

func (n Network) AddChainParams() AddChainParams {
	params := AddChainParams{
		ChainID:        n.HexChainID(),
		ChainName:      n.Name,
		RPCURLs:        []string{n.RPCURL},
		NativeCurrency: n.Currency,
	}
	if n.ExplorerURL != "" {
		params.BlockExplorerURLs = []string{n.explorerBase() + "/"}
	}
	return params
}

// ParseChainID decodes the 0x-prefixed chain id of an add-chain request.
func (p AddChainParams) ParseChainID() (uint64, error) {
	id, err := hexutil.DecodeUint64(p.ChainID)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", p.ChainID, err)
	}
	return id, nil
}

// TxURL - explorer link for a transaction hash
func (n Network) TxURL(txHash string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return n.explorerBase() + "/tx/" + txHash
}

// AddressURL - explorer link for an account
func (n Network) AddressURL(address string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return n.explorerBase() + "/address/" + address
}

func (n Network) explorerBase() string {
	return strings.TrimRight(n.ExplorerURL, "/")
}
