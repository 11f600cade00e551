// Package proxy classifies a contract's proxy layout.
package proxy

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/bytecode"
	"tokenScope/internal/chain"
	"tokenScope/internal/model"
	"tokenScope/internal/probe"
	"tokenScope/internal/state"
)

const component = "proxy"

// Resolver runs the detection steps in a fixed order: EIP-1967
// implementation slot, beacon slot, implementation() getter, EIP-1167 clone.
type Resolver struct {
	slots  *state.Reader
	prober *probe.Prober
	logger *zap.Logger
}

func NewResolver(slots *state.Reader, prober *probe.Prober, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{slots: slots, prober: prober, logger: logger}
}

// Resolve classifies contract. code is its runtime bytecode at the pinned
// block. The error is non-nil only for fatal conditions; transport failures
// yield kind none plus a diagnostic.
func (r *Resolver) Resolve(ctx context.Context, contract common.Address, code []byte) (model.ProxyInfo, []model.Diagnostic, error) {
	info, diags, err := r.resolve(ctx, contract, code)
	if err == nil {
		return info, diags, nil
	}
	if isFatal(ctx, err) {
		return model.ProxyInfo{}, nil, err
	}
	r.logger.Warn("proxy resolution degraded", zap.String("token", contract.Hex()), zap.Error(err))
	diags = append(diags, model.NewDiagnostic(component, model.DiagRPCError, "proxy resolution failed: %v", err))
	return model.ProxyInfo{Kind: model.ProxyNone}, diags, nil
}

func (r *Resolver) resolve(ctx context.Context, contract common.Address, code []byte) (model.ProxyInfo, []model.Diagnostic, error) {
	impl, ok, err := r.slots.ReadAddressSlot(ctx, contract, state.ImplementationSlot)
	if err != nil {
		return model.ProxyInfo{}, nil, err
	}
	if ok {
		info := model.ProxyInfo{Kind: model.ProxyEIP1967, Implementation: &impl}
		admin, ok, err := r.slots.ReadAddressSlot(ctx, contract, state.AdminSlot)
		if err != nil {
			return model.ProxyInfo{}, nil, err
		}
		if ok {
			info.Admin = &admin
		}
		return info, nil, nil
	}

	beacon, ok, err := r.slots.ReadAddressSlot(ctx, contract, state.BeaconSlot)
	if err != nil {
		return model.ProxyInfo{}, nil, err
	}
	if ok {
		return r.resolveBeacon(ctx, beacon)
	}

	impl, err = r.prober.CallAddress(ctx, contract, probe.Implementation)
	switch {
	case err == nil && impl != (common.Address{}):
		return model.ProxyInfo{Kind: model.ProxyTransparent, Implementation: &impl}, nil, nil
	case err != nil && !probe.IsUnsupported(err):
		return model.ProxyInfo{}, nil, err
	}

	if target, ok := bytecode.MinimalProxyTarget(code); ok {
		return model.ProxyInfo{Kind: model.ProxyMinimal, Implementation: &target}, nil, nil
	}
	return model.ProxyInfo{Kind: model.ProxyNone}, nil, nil
}

// resolveBeacon keeps kind beacon even when the beacon cannot be queried.
func (r *Resolver) resolveBeacon(ctx context.Context, beacon common.Address) (model.ProxyInfo, []model.Diagnostic, error) {
	info := model.ProxyInfo{Kind: model.ProxyBeacon, Beacon: &beacon}
	impl, err := r.prober.CallAddress(ctx, beacon, probe.Implementation)
	switch {
	case err == nil:
		if impl != (common.Address{}) {
			info.Implementation = &impl
		}
		return info, nil, nil
	case isFatal(ctx, err):
		return model.ProxyInfo{}, nil, err
	case probe.IsUnsupported(err):
		return info, []model.Diagnostic{
			model.NewDiagnostic(component, model.DiagUnsupported, "beacon %s has no implementation()", beacon.Hex()),
		}, nil
	default:
		return info, []model.Diagnostic{
			model.NewDiagnostic(component, model.DiagRPCError, "beacon implementation lookup failed: %v", err),
		}, nil
	}
}

func isFatal(ctx context.Context, err error) bool {
	return errors.Is(err, chain.ErrNotFound) || ctx.Err() != nil
}
