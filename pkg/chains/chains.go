package chains

import (
	"errors"
	"fmt"
	"strings"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

var ErrUnknownChain = errors.New("unknown chain")

// Descriptor identifies one EVM network the wallet client may connect to.
// Key is the short name used in configuration (e.g. "baseSepolia").
type Descriptor struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	ChainID      uint64 `json:"id"`
	Selector     uint64 `json:"selector"`
	SelectorName string `json:"selectorName"`
	Testnet      bool   `json:"testnet"`
	DefaultRPC   string `json:"-"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%d)", d.Key, d.ChainID)
}

func newDescriptor(key string, name string, chain chainsel.Chain, testnet bool, rpcUrl string) Descriptor {
	return Descriptor{
		Key:          key,
		Name:         name,
		ChainID:      chain.EvmChainID,
		Selector:     chain.Selector,
		SelectorName: chain.Name,
		Testnet:      testnet,
		DefaultRPC:   rpcUrl,
	}
}

var (
	Mainnet     = newDescriptor("mainnet", "Ethereum", chainsel.ETHEREUM_MAINNET, false, "https://eth.merkle.io")
	Sepolia     = newDescriptor("sepolia", "Sepolia", chainsel.ETHEREUM_TESTNET_SEPOLIA, true, "https://sepolia.drpc.org")
	Base        = newDescriptor("base", "Base", chainsel.ETHEREUM_MAINNET_BASE_1, false, "https://mainnet.base.org")
	BaseSepolia = newDescriptor("baseSepolia", "Base Sepolia", chainsel.ETHEREUM_TESTNET_SEPOLIA_BASE_1, true, "https://sepolia.base.org")
	Arbitrum    = newDescriptor("arbitrum", "Arbitrum One", chainsel.ETHEREUM_MAINNET_ARBITRUM_1, false, "https://arb1.arbitrum.io/rpc")
	Optimism    = newDescriptor("optimism", "OP Mainnet", chainsel.ETHEREUM_MAINNET_OPTIMISM_1, false, "https://mainnet.optimism.io")
	Polygon     = newDescriptor("polygon", "Polygon", chainsel.POLYGON_MAINNET, false, "https://polygon-rpc.com")
)

var known = []Descriptor{Mainnet, Sepolia, Base, BaseSepolia, Arbitrum, Optimism, Polygon}

// Known returns every chain this service knows how to reach.
func Known() []Descriptor {
	out := make([]Descriptor, len(known))
	copy(out, known)
	return out
}

// Lookup finds a chain by its configuration key. Matching ignores case.
func Lookup(key string) (Descriptor, error) {
	for _, d := range known {
		if strings.EqualFold(d.Key, key) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownChain, key)
}

func ByChainID(chainID uint64) (Descriptor, error) {
	for _, d := range known {
		if d.ChainID == chainID {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: chain id %d", ErrUnknownChain, chainID)
}

// Resolve maps configuration keys to descriptors, keeping their order.
// Duplicated keys are rejected.
func Resolve(keys []string) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(keys))
	seen := make(map[uint64]struct{}, len(keys))
	for _, key := range keys {
		d, err := Lookup(key)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[d.ChainID]; ok {
			return nil, fmt.Errorf("chain %s is listed more than once", d.Key)
		}
		seen[d.ChainID] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}
