package contracts_abi

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

const (
	SupplyAddress  = "0x8e745b4Ce4d564824b486d14b2E3e240f5B148A9"
	SupplyFunction = "SupplyChain"
)

var (
	ErrInvalidAddress  = errors.New("invalid contract address")
	ErrUnknownFunction = errors.New("function not found in abi")
)

//go:embed supply.json
var supplyAbi string

// Descriptor names what to query: a contract address, its ABI and the function to call.
type Descriptor struct {
	ABI          abi.ABI
	Address      string
	FunctionName string
}

func SupplyABI() string {
	return supplyAbi
}

func NewSupplyDescriptor() (*Descriptor, error) {
	return NewDescriptor(supplyAbi, SupplyAddress, SupplyFunction)
}

// NewDescriptor parses abiJson and checks that address is a 20 byte hex address
// and that functionName is declared. The address is kept exactly as given.
func NewDescriptor(abiJson string, address string, functionName string) (*Descriptor, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJson))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if _, ok := parsed.Methods[functionName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, functionName)
	}
	// all lower case addresses carry no checksum
	hasChecksum := strings.ToLower(address) != address
	if mixed, err := common.NewMixedcaseAddressFromString(address); err == nil && hasChecksum && !mixed.ValidChecksum() {
		log.Warn().Str("address", address).Msg("[ContractsAbi] [NewDescriptor] address checksum does not match, using it as is")
	}
	return &Descriptor{
		ABI:          parsed,
		Address:      address,
		FunctionName: functionName,
	}, nil
}

func (d *Descriptor) ContractAddress() common.Address {
	return common.HexToAddress(d.Address)
}

func (d *Descriptor) Method() abi.Method {
	return d.ABI.Methods[d.FunctionName]
}
