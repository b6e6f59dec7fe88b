package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.001", "1000000000000000"},
		{"1", "1000000000000000000"},
		{" 2.5 ", "2500000000000000000"},
		{"0", "0"},
		{"0.000000000000000001", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseEther_Errors(t *testing.T) {
	_, err := ParseEther("")
	assert.ErrorIs(t, err, ErrEmptyAmount)

	_, err = ParseEther("coffee")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseEther("0.0000000000000000001")
	assert.ErrorIs(t, err, ErrAmountPrecision)

	for _, in := range []string{"1e-3", "1E2", "1e100000"} {
		_, err = ParseEther(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "0.001", FormatEther(big.NewInt(1_000_000_000_000_000)))
	assert.Equal(t, "0.001000", FormatEtherFixed(big.NewInt(1_000_000_000_000_000), 6))
	assert.Equal(t, "0.000000", FormatEtherFixed(nil, 6))
}
