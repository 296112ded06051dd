package config

import (
	"fmt"
	"strings"

	"github.com/sherpas/supply/pkg/chains"
)

// WalletConfig is what the wallet connection client is initialised with.
// It is built once and passed down; callers never mutate it.
type WalletConfig struct {
	appName   string
	projectID string
	chains    []chains.Descriptor
	ssr       bool
}

func NewWalletConfig(appName string, projectID string, descriptors []chains.Descriptor, ssr bool) *WalletConfig {
	list := make([]chains.Descriptor, len(descriptors))
	copy(list, descriptors)
	return &WalletConfig{
		appName:   appName,
		projectID: projectID,
		chains:    list,
		ssr:       ssr,
	}
}

// DefaultWallet returns the sherpas-supply wallet configuration.
func DefaultWallet() *WalletConfig {
	return NewWalletConfig(APP_NAME, PROJECT_ID, []chains.Descriptor{
		chains.Sepolia,
		chains.Base,
		chains.Mainnet,
		chains.BaseSepolia,
	}, true)
}

// Wallet resolves the configured chain keys into a WalletConfig.
func (c *Config) Wallet() (*WalletConfig, error) {
	descriptors, err := chains.Resolve(c.Chains)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chains: %w", err)
	}
	return NewWalletConfig(c.AppName, c.ProjectID, descriptors, c.SSR), nil
}

func (w *WalletConfig) AppName() string   { return w.appName }
func (w *WalletConfig) ProjectID() string { return w.projectID }
func (w *WalletConfig) SSR() bool         { return w.ssr }

// Chains returns a copy of the supported chains in configured order.
func (w *WalletConfig) Chains() []chains.Descriptor {
	out := make([]chains.Descriptor, len(w.chains))
	copy(out, w.chains)
	return out
}

func (w *WalletConfig) DefaultChain() chains.Descriptor {
	return w.chains[0]
}

func (w *WalletConfig) Chain(key string) (chains.Descriptor, error) {
	for _, chain := range w.chains {
		if strings.EqualFold(chain.Key, key) {
			return chain, nil
		}
	}
	return chains.Descriptor{}, fmt.Errorf("%w: %s is not configured", chains.ErrUnknownChain, key)
}

// WalletOptions is the JSON document handed to the client side wallet library.
type WalletOptions struct {
	AppName   string              `json:"appName"`
	ProjectID string              `json:"projectId"`
	Chains    []chains.Descriptor `json:"chains"`
	SSR       bool                `json:"ssr"`
}

func (w *WalletConfig) Options() WalletOptions {
	return WalletOptions{
		AppName:   w.appName,
		ProjectID: w.projectID,
		Chains:    w.Chains(),
		SSR:       w.ssr,
	}
}
