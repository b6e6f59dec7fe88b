package contract

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertError reports a transaction that was included but reverted.
type RevertError struct {
	TxHash common.Hash
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "transaction " + e.TxHash.Hex() + " reverted"
	}
	return "transaction " + e.TxHash.Hex() + " reverted: " + e.Reason
}

// RevertReason decodes the Error(string) payload carried by a node error.
// It returns "" when err carries no decodable reason.
func RevertReason(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	var data []byte
	switch v := dataErr.ErrorData().(type) {
	case string:
		decoded, err := hexutil.Decode(v)
		if err != nil {
			return ""
		}
		data = decoded
	case []byte:
		data = v
	default:
		return ""
	}
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		return ""
	}
	return reason
}
