package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/config"
	"github.com/sherpas/supply/pkg/chains"
	contracts_abi "github.com/sherpas/supply/pkg/contracts-abi"
)

type EvmClient struct {
	EvmConfig *EvmNetworkConfig
	Client    *ethclient.Client
	Reader    *ContractReader
}

// NewEvmClients dials every configured chain that has an rpc endpoint.
// Chains that cannot be reached are skipped with a warning.
func NewEvmClients(ctx context.Context, globalConfig *config.Config, wallet *config.WalletConfig, descriptor *contracts_abi.Descriptor) ([]*EvmClient, error) {
	if globalConfig == nil || wallet == nil {
		return nil, fmt.Errorf("config is not set")
	}
	evmClients := make([]*EvmClient, 0, len(wallet.Chains()))
	for _, chain := range wallet.Chains() {
		evmConfig := NetworkConfigFor(globalConfig, chain)
		if evmConfig.RPCUrl == "" {
			log.Warn().Str("chain", chain.Key).Msgf("[%s] [NewEvmClients] no rpc url configured, chain skipped", COMPONENT_NAME)
			continue
		}
		client, err := NewEvmClient(ctx, evmConfig, descriptor)
		if err != nil {
			log.Warn().Err(err).Msgf("[%s] [NewEvmClients] failed to create evm client for %s", COMPONENT_NAME, evmConfig.GetName())
			continue
		}
		evmClients = append(evmClients, client)
	}
	return evmClients, nil
}

func NetworkConfigFor(globalConfig *config.Config, chain chains.Descriptor) *EvmNetworkConfig {
	return &EvmNetworkConfig{
		Chain:         chain,
		RPCUrl:        globalConfig.RPCUrl(chain.Key),
		ReadTimeout:   globalConfig.ReadTimeout,
		RetryAttempts: globalConfig.Retry.Attempts,
		RetryDelay:    globalConfig.Retry.Delay,
	}
}

func NewEvmClient(ctx context.Context, evmConfig *EvmNetworkConfig, descriptor *contracts_abi.Descriptor) (*EvmClient, error) {
	log.Info().Str("chain", evmConfig.GetId()).Uint64("chainId", evmConfig.GetChainId()).
		Msgf("[%s] [NewEvmClient] connecting to EVM network", COMPONENT_NAME)
	rpcClient, err := rpc.DialContext(ctx, evmConfig.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to EVM network %s: %w", evmConfig.GetName(), err)
	}
	client := ethclient.NewClient(rpcClient)
	reader, err := NewContractReader(evmConfig, descriptor, client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create contract reader for network %s: %w", evmConfig.GetName(), err)
	}
	return &EvmClient{
		EvmConfig: evmConfig,
		Client:    client,
		Reader:    reader,
	}, nil
}

// VerifyChainID checks that the endpoint serves the chain it is configured for.
func (c *EvmClient) VerifyChainID(ctx context.Context) error {
	chainID, err := c.Client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id of %s: %w", c.EvmConfig.GetName(), err)
	}
	if chainID.Uint64() != c.EvmConfig.GetChainId() {
		return fmt.Errorf("rpc endpoint of %s serves chain %d, expected %d", c.EvmConfig.GetName(), chainID.Uint64(), c.EvmConfig.GetChainId())
	}
	return nil
}

func (c *EvmClient) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}
