package evm

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/rs/zerolog/log"
	contracts_abi "github.com/sherpas/supply/pkg/contracts-abi"
	"github.com/sherpas/supply/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/sherpas/supply/pkg/clients/evm")

// ContractReader calls one argument-less function of one contract.
type ContractReader struct {
	config     *EvmNetworkConfig
	descriptor *contracts_abi.Descriptor
	contract   *bind.BoundContract
}

func NewContractReader(evmConfig *EvmNetworkConfig, descriptor *contracts_abi.Descriptor, caller bind.ContractCaller) (*ContractReader, error) {
	if evmConfig == nil {
		return nil, fmt.Errorf("evm network config is not set")
	}
	if descriptor == nil {
		return nil, fmt.Errorf("contract descriptor is not set for network %s", evmConfig.GetName())
	}
	if caller == nil {
		return nil, fmt.Errorf("contract caller is not set for network %s", evmConfig.GetName())
	}
	evmConfig.setDefaults()
	contract := bind.NewBoundContract(descriptor.ContractAddress(), descriptor.ABI, caller, nil, nil)
	return &ContractReader{
		config:     evmConfig,
		descriptor: descriptor,
		contract:   contract,
	}, nil
}

func (r *ContractReader) Chain() string {
	return r.config.GetId()
}

func (r *ContractReader) ChainID() uint64 {
	return r.config.GetChainId()
}

// Read never returns nil: failures are reported as a ReadResult in the error state.
func (r *ContractReader) Read(ctx context.Context) *types.ReadResult {
	ctx, span := tracer.Start(ctx, "ContractReader.Read")
	defer span.End()
	span.SetAttributes(
		attribute.String("chain", r.Chain()),
		attribute.Int64("chain.id", int64(r.ChainID())),
		attribute.String("contract.address", r.descriptor.Address),
		attribute.String("contract.function", r.descriptor.FunctionName),
	)

	values, err := r.call(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("chain", r.Chain()).
			Msgf("[%s] [Read] failed to call %s on %s", COMPONENT_NAME, r.descriptor.FunctionName, r.descriptor.Address)
		return types.Failure(r.Chain(), r.ChainID(), err)
	}
	formatted := FormatValues(values)
	log.Debug().Str("chain", r.Chain()).Strs("values", formatted).
		Msgf("[%s] [Read] %s returned", COMPONENT_NAME, r.descriptor.FunctionName)
	return types.Success(r.Chain(), r.ChainID(), formatted)
}

func (r *ContractReader) call(ctx context.Context) ([]interface{}, error) {
	var values []interface{}
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			attemptCtx, cancel := context.WithTimeout(ctx, r.config.ReadTimeout)
			defer cancel()
			var out []interface{}
			if err := r.contract.Call(&bind.CallOpts{Context: attemptCtx}, &out, r.descriptor.FunctionName); err != nil {
				return err
			}
			values = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.config.RetryAttempts),
		retry.Delay(r.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Str("chain", r.Chain()).Uint("attempt", n+1).
				Msgf("[%s] [Read] retrying in %s", COMPONENT_NAME, r.config.RetryDelay)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("call %s after %d attempt(s): %w", r.descriptor.FunctionName, attempt, err)
	}
	return values, nil
}

// Missing code and cancelled contexts will not change on a retry.
func isRetryable(err error) bool {
	return !errors.Is(err, bind.ErrNoCode) &&
		!errors.Is(err, context.Canceled)
}
