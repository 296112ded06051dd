package evm_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sherpas/supply/pkg/clients/evm"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	var nilInt *big.Int
	address := common.HexToAddress("0x8e745b4Ce4d564824b486d14b2E3e240f5B148A9")
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"nil big int", nilInt, ""},
		{"big int", new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil), "1000000000000000000000000"},
		{"uint8", uint8(18), "18"},
		{"bool", true, "true"},
		{"string", "goods", "goods"},
		{"address", address, address.Hex()},
		{"bytes", []byte{0xde, 0xad}, "0xdead"},
		{"bytes4", [4]byte{0x01, 0x02, 0x03, 0x04}, "0x01020304"},
		{"list", []*big.Int{big.NewInt(1), big.NewInt(2)}, "[1, 2]"},
		{"struct", struct {
			Name   string
			Amount *big.Int
		}{"flour", big.NewInt(3)}, "{Name: flour, Amount: 3}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, evm.FormatValue(tt.value))
		})
	}
}

func TestFormatValues(t *testing.T) {
	require.Equal(t, []string{"1", "ok"}, evm.FormatValues([]interface{}{big.NewInt(1), "ok"}))
	require.Empty(t, evm.FormatValues(nil))
}
