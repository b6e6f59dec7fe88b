package wallet

import (
	"errors"
	"fmt"
)

// Provider error codes, EIP-1193 and the wallet_switchEthereumChain extension.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeInternal          = -32603
)

// ProviderError is the tagged failure returned by wallet requests.
type ProviderError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wallet error %d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(code int, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// ErrorCode extracts the provider code from err, if any.
func ErrorCode(err error) (int, bool) {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code, true
	}
	return 0, false
}

func IsUserRejected(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}

func IsUnrecognizedChain(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUnrecognizedChain
}
