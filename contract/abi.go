package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	MethodBuyCoffee      = "buyCoffee"
	MethodTotalDonations = "totalDonations"
	MethodGetMemos       = "getMemos"
	EventNewMemo         = "NewMemo"
)

// BuyMeACoffeeABI is the interface descriptor of the donation contract.
const BuyMeACoffeeABI = `[
	{"type":"function","name":"buyCoffee","stateMutability":"payable",
	 "inputs":[{"name":"_name","type":"string"},{"name":"_message","type":"string"}],"outputs":[]},
	{"type":"function","name":"totalDonations","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getMemos","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"tuple[]","internalType":"struct BuyMeACoffee.Memo[]","components":[
		{"name":"name","type":"string"},
		{"name":"message","type":"string"},
		{"name":"timestamp","type":"uint256"},
		{"name":"from","type":"address"},
		{"name":"amount","type":"uint256"}]}]},
	{"type":"event","name":"NewMemo","anonymous":false,"inputs":[
		{"indexed":false,"name":"name","type":"string"},
		{"indexed":false,"name":"message","type":"string"},
		{"indexed":false,"name":"timestamp","type":"uint256"},
		{"indexed":true,"name":"from","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"}]}
]`

// ParseABI parses an interface descriptor and checks it exposes everything
// the donation flow calls.
func ParseABI(descriptor string) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(descriptor))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	for _, name := range []string{MethodBuyCoffee, MethodTotalDonations, MethodGetMemos} {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("abi is missing method %s", name)
		}
	}
	if _, ok := parsed.Events[EventNewMemo]; !ok {
		return abi.ABI{}, fmt.Errorf("abi is missing event %s", EventNewMemo)
	}
	return parsed, nil
}
