package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSepoliaAddChainParams(t *testing.T) {
	n := Sepolia()
	require.NoError(t, n.Validate())

	params := n.AddChainParams()
	assert.Equal(t, "0xaa36a7", params.ChainID)
	assert.Equal(t, "Sepolia Testnet", params.ChainName)
	assert.Equal(t, []string{n.RPCURL}, params.RPCURLs)
	assert.Equal(t, []string{"https://sepolia.etherscan.io/"}, params.BlockExplorerURLs)
	assert.Equal(t, uint8(18), params.NativeCurrency.Decimals)

	id, err := params.ParseChainID()
	require.NoError(t, err)
	assert.Equal(t, uint64(SepoliaChainID), id)
}

func TestExplorerURLs(t *testing.T) {
	n := Sepolia()
	n.ExplorerURL = "https://sepolia.etherscan.io/"
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", n.TxURL("0xabc"))
	assert.Equal(t, "https://sepolia.etherscan.io/address/0xdef", n.AddressURL("0xdef"))

	n.ExplorerURL = ""
	assert.Empty(t, n.TxURL("0xabc"))
}

func TestNetworkValidate(t *testing.T) {
	n := Sepolia()
	n.ChainID = 0
	assert.ErrorIs(t, n.Validate(), ErrMissingChainID)

	n = Sepolia()
	n.RPCURL = " "
	assert.ErrorIs(t, n.Validate(), ErrMissingRPCURL)

	n = Sepolia()
	n.Currency.Decimals = 0
	assert.ErrorIs(t, n.Validate(), ErrInvalidDecimals)

	n.Currency.Decimals = 6
	assert.ErrorIs(t, n.Validate(), ErrInvalidDecimals)
}
