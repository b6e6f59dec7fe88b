package coffee

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"buymeacoffee/chain"
)

const ReceiptStatusConfirmed = "confirmed"

// Receipt is the confirmation of one donation. It lives for the session
// only; ExportReceipt serialises it for download.
type Receipt struct {
	AttemptID         string         `json:"attemptId"`
	TransactionHash   common.Hash    `json:"transactionHash"`
	Status            string         `json:"status"`
	BlockHash         common.Hash    `json:"blockHash"`
	BlockNumber       uint64         `json:"blockNumber"`
	GasUsed           uint64         `json:"gasUsed"`
	EffectiveGasPrice string         `json:"effectiveGasPrice,omitempty"`
	From              common.Address `json:"from"`
	To                common.Address `json:"to"`
	Value             string         `json:"value"`
	Name              string         `json:"name"`
	Message           string         `json:"message"`
	ExplorerURL       string         `json:"explorerUrl,omitempty"`
}

func newReceipt(attempt uuid.UUID, tx *types.Transaction, mined *types.Receipt, from common.Address, draft Draft, network chain.Network) *Receipt {
	r := &Receipt{
		AttemptID:       attempt.String(),
		TransactionHash: tx.Hash(),
		Status:          ReceiptStatusConfirmed,
		From:            from,
		Value:           tx.Value().String(),
		Name:            draft.Name,
		Message:         draft.Message,
		ExplorerURL:     network.TxURL(tx.Hash().Hex()),
	}
	if to := tx.To(); to != nil {
		r.To = *to
	}
	if mined != nil {
		r.BlockHash = mined.BlockHash
		r.GasUsed = mined.GasUsed
		if mined.BlockNumber != nil {
			r.BlockNumber = mined.BlockNumber.Uint64()
		}
		if mined.EffectiveGasPrice != nil {
			r.EffectiveGasPrice = mined.EffectiveGasPrice.String()
		}
	}
	return r
}

// FileName is the download name of the exported receipt.
func (r *Receipt) FileName() string {
	return fmt.Sprintf("transaction-receipt-%s.json", r.TransactionHash.Hex())
}

func (r *Receipt) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (s *Session) LastReceipt() *Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receipt
}

// ExportReceipt writes the last confirmed receipt to w and returns the file
// name it should be saved under.
func (s *Session) ExportReceipt(w io.Writer) (string, error) {
	r := s.LastReceipt()
	if r == nil {
		return "", ErrNoReceipt
	}
	if err := r.WriteJSON(w); err != nil {
		return "", fmt.Errorf("export receipt: %w", err)
	}
	return r.FileName(), nil
}
