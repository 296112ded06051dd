package supply

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/config"
	"github.com/sherpas/supply/pkg/chains"
	"github.com/sherpas/supply/pkg/clients/evm"
	contracts_abi "github.com/sherpas/supply/pkg/contracts-abi"
	"github.com/sherpas/supply/pkg/events"
	"github.com/sherpas/supply/pkg/types"
)

// Reader performs one contract read. It reports failures inside the result.
type Reader interface {
	Chain() string
	ChainID() uint64
	Read(ctx context.Context) *types.ReadResult
}

type Service struct {
	wallet       *config.WalletConfig
	readers      map[string]Reader
	defaultChain string
	pollInterval time.Duration
	eventBus     *events.EventBus
	evmClients   []*evm.EvmClient

	// reads are numbered when they start; the cache only moves forward
	sequence atomic.Uint64
	mutex    sync.RWMutex
	latest   map[string]*types.ReadResult
	cachedAt map[string]uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService dials one evm client per configured chain and reads the supply contract through them.
func NewService(ctx context.Context, cfg *config.Config, wallet *config.WalletConfig, eventBus *events.EventBus) (*Service, error) {
	descriptor, err := contracts_abi.NewDescriptor(contracts_abi.SupplyABI(), cfg.Contract.Address, cfg.Contract.Function)
	if err != nil {
		return nil, fmt.Errorf("failed to create contract descriptor: %w", err)
	}
	evmClients, err := evm.NewEvmClients(ctx, cfg, wallet, descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to create evm clients: %w", err)
	}
	readers := make([]Reader, 0, len(evmClients))
	for _, client := range evmClients {
		readers = append(readers, client.Reader)
	}
	defaultChain := cfg.Contract.Chain
	if defaultChain == "" {
		defaultChain = wallet.DefaultChain().Key
	}
	service, err := NewServiceWithReaders(wallet, readers, defaultChain, cfg.PollInterval, eventBus)
	if err != nil {
		for _, client := range evmClients {
			client.Close()
		}
		return nil, err
	}
	service.evmClients = evmClients
	return service, nil
}

func NewServiceWithReaders(wallet *config.WalletConfig, readers []Reader, defaultChain string, pollInterval time.Duration, eventBus *events.EventBus) (*Service, error) {
	if wallet == nil {
		return nil, fmt.Errorf("wallet config is not set")
	}
	chain, err := wallet.Chain(defaultChain)
	if err != nil {
		return nil, fmt.Errorf("invalid default chain: %w", err)
	}
	service := &Service{
		wallet:       wallet,
		readers:      make(map[string]Reader, len(readers)),
		defaultChain: chain.Key,
		pollInterval: pollInterval,
		eventBus:     eventBus,
		latest:       make(map[string]*types.ReadResult, len(readers)),
		cachedAt:     make(map[string]uint64, len(readers)),
	}
	for _, reader := range readers {
		key := strings.ToLower(reader.Chain())
		service.readers[key] = reader
		service.latest[key] = types.Pending(reader.Chain(), reader.ChainID())
	}
	if _, ok := service.readers[strings.ToLower(service.defaultChain)]; !ok {
		return nil, fmt.Errorf("no reader available for default chain %s", service.defaultChain)
	}
	return service, nil
}

func (s *Service) DefaultChain() string {
	return s.defaultChain
}

// Chains lists the chains that can be read, in configured order.
func (s *Service) Chains() []string {
	out := make([]string, 0, len(s.readers))
	for _, chain := range s.wallet.Chains() {
		if _, ok := s.readers[strings.ToLower(chain.Key)]; ok {
			out = append(out, chain.Key)
		}
	}
	return out
}

func (s *Service) reader(chain string) (Reader, error) {
	if chain == "" {
		chain = s.defaultChain
	}
	reader, ok := s.readers[strings.ToLower(chain)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chains.ErrUnknownChain, chain)
	}
	return reader, nil
}

// Latest returns the cached result of chain, pending until the first read settles.
// An empty chain selects the default chain.
func (s *Service) Latest(chain string) (*types.ReadResult, error) {
	reader, err := s.reader(chain)
	if err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.latest[strings.ToLower(reader.Chain())], nil
}

// Snapshot returns the cached result of every readable chain.
func (s *Service) Snapshot() map[string]*types.ReadResult {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make(map[string]*types.ReadResult, len(s.latest))
	for _, result := range s.latest {
		out[result.Chain] = result
	}
	return out
}

// Refresh reads chain now, caches and publishes the result. The cache keeps the
// result of the most recently started read, so a slow read finishing late does
// not replace a newer value.
func (s *Service) Refresh(ctx context.Context, chain string) (*types.ReadResult, error) {
	reader, err := s.reader(chain)
	if err != nil {
		return nil, err
	}
	seq := s.sequence.Add(1)
	result := reader.Read(ctx)
	if result == nil {
		result = types.Failure(reader.Chain(), reader.ChainID(), fmt.Errorf("reader returned no result"))
	}
	// a read aborted by the caller says nothing about the contract
	if result.IsError() && ctx.Err() != nil {
		return result, nil
	}
	s.store(seq, result)
	return result, nil
}

func (s *Service) store(seq uint64, result *types.ReadResult) {
	key := strings.ToLower(result.Chain)
	s.mutex.Lock()
	if seq > s.cachedAt[key] {
		s.latest[key] = result
		s.cachedAt[key] = seq
	} else {
		log.Debug().Str("chain", result.Chain).Uint64("seq", seq).
			Msg("[SupplyService] [store] newer read already cached, keeping it")
	}
	s.mutex.Unlock()
	if s.eventBus != nil {
		s.eventBus.BroadcastEvent(events.NewReadEnvelope(result))
	}
}

func (s *Service) refreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, chain := range s.Chains() {
		wg.Add(1)
		go func(chain string) {
			defer wg.Done()
			if _, err := s.Refresh(ctx, chain); err != nil {
				log.Error().Err(err).Str("chain", chain).Msg("[SupplyService] [refreshAll] refresh failed")
			}
		}(chain)
	}
	wg.Wait()
}

// Start reads every chain once and then again on each poll interval until Stop.
func (s *Service) Start(ctx context.Context) error {
	if s.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", s.pollInterval)
	}
	for _, client := range s.evmClients {
		if err := client.VerifyChainID(ctx); err != nil {
			log.Warn().Err(err).Msg("[SupplyService] [Start] chain id check failed")
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refreshAll(ctx)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refreshAll(ctx)
			}
		}
	}()
	log.Info().Strs("chains", s.Chains()).Str("default", s.defaultChain).Dur("interval", s.pollInterval).
		Msg("[SupplyService] [Start] polling supply contract")
	return nil
}

func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	for _, client := range s.evmClients {
		client.Close()
	}
}
