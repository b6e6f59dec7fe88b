package contract

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"buymeacoffee/chain"
)

const AnonymousName = "Anonymous"

// Memo is one donation record. Name is stored as given, possibly empty.
// Amount is nil when the source did not carry one.
type Memo struct {
	Name      string         `json:"name"`
	Message   string         `json:"message"`
	Timestamp uint64         `json:"timestamp"`
	From      common.Address `json:"from"`
	Amount    *big.Int       `json:"amount"`
}

// MemoKey identifies memos that describe the same donation.
type MemoKey struct {
	From      common.Address
	Timestamp uint64
	Name      string
	Message   string
	Amount    string
}

// memoFields matches both the getMemos tuple and the NewMemo event layout.
type memoFields struct {
	Name      string
	Message   string
	Timestamp *big.Int
	From      common.Address
	Amount    *big.Int
}

func (f memoFields) memo() Memo {
	m := Memo{
		Name:    f.Name,
		Message: f.Message,
		From:    f.From,
		Amount:  f.Amount,
	}
	if f.Timestamp != nil && f.Timestamp.IsUint64() {
		m.Timestamp = f.Timestamp.Uint64()
	}
	return m
}

func (m Memo) Key() MemoKey {
	return MemoKey{
		From:      m.From,
		Timestamp: m.Timestamp,
		Name:      m.Name,
		Message:   m.Message,
		Amount:    m.AmountOrZero().String(),
	}
}

func (m Memo) DisplayName() string {
	if m.Name == "" {
		return AnonymousName
	}
	return m.Name
}

func (m Memo) AmountOrZero() *big.Int {
	if m.Amount == nil {
		return new(big.Int)
	}
	return m.Amount
}

// AmountEther renders the amount with six decimals, "0.000000" when absent.
func (m Memo) AmountEther() string {
	return chain.FormatEtherFixed(m.Amount, 6)
}

func (m Memo) Time() time.Time {
	return time.Unix(int64(m.Timestamp), 0)
}
