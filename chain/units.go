package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const EtherDecimals = 18

var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrInvalidAmount   = errors.New("amount is not a decimal number")
	ErrAmountPrecision = errors.New("amount has more decimal places than the currency supports")
)

// ParseEther converts a decimal ether string such as "0.001" into wei.
func ParseEther(amount string) (*big.Int, error) {
	return ParseUnits(amount, EtherDecimals)
}

func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, ErrEmptyAmount
	}
	// Only plain decimal notation; exponents could expand to huge values.
	if strings.ContainsAny(amount, "eE") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q", ErrAmountPrecision, amount)
	}
	return scaled.BigInt(), nil
}

// FormatEther renders wei as an ether amount without trailing zeros.
// A nil amount renders as "0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}

// FormatEtherFixed renders wei with a fixed number of decimal places.
func FormatEtherFixed(wei *big.Int, places int32) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).StringFixed(places)
}
