package evm

import (
	"time"

	"github.com/sherpas/supply/pkg/chains"
)

const (
	COMPONENT_NAME = "EvmClient"
	RETRY_INTERVAL = time.Second // Delay between read attempts
	READ_TIMEOUT   = 10 * time.Second
)

type EvmNetworkConfig struct {
	Chain         chains.Descriptor
	RPCUrl        string
	ReadTimeout   time.Duration // Timeout of a single eth_call attempt
	RetryAttempts uint
	RetryDelay    time.Duration
}

func (c *EvmNetworkConfig) GetChainId() uint64 {
	return c.Chain.ChainID
}
func (c *EvmNetworkConfig) GetId() string {
	return c.Chain.Key
}
func (c *EvmNetworkConfig) GetName() string {
	return c.Chain.Name
}

func (c *EvmNetworkConfig) setDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = READ_TIMEOUT
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 1
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = RETRY_INTERVAL
	}
}
