// Package token collects metadata, ownership and security facts for a token.
package token

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"tokenScope/internal/bytecode"
	"tokenScope/internal/chain"
	"tokenScope/internal/model"
	"tokenScope/internal/probe"
	"tokenScope/internal/state"
)

const (
	component      = "token"
	maxRoleMembers = 16
)

// Role is a well-known AccessControl role id.
type Role struct {
	Name string
	ID   common.Hash
}

var Roles = []Role{
	{Name: "DEFAULT_ADMIN_ROLE", ID: common.Hash{}},
	{Name: "MINTER_ROLE", ID: crypto.Keccak256Hash([]byte("MINTER_ROLE"))},
	{Name: "PAUSER_ROLE", ID: crypto.Keccak256Hash([]byte("PAUSER_ROLE"))},
	{Name: "UPGRADER_ROLE", ID: crypto.Keccak256Hash([]byte("UPGRADER_ROLE"))},
}

var (
	cooldownMarkers    = []string{"cooldown"}
	sellBlockedMarkers = []string{"onlybuy", "nosell", "selllock"}
)

// Inspector builds TokenFacts with best-effort probes.
type Inspector struct {
	prober *probe.Prober
	slots  *state.Reader
	cache  *MetaCache
	logger *zap.Logger
}

func NewInspector(prober *probe.Prober, slots *state.Reader, cache *MetaCache, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMetaCache()
	}
	return &Inspector{prober: prober, slots: slots, cache: cache, logger: logger}
}

// inspection accumulates diagnostics and the first fatal error of one run.
type inspection struct {
	*Inspector
	ctx      context.Context
	token    common.Address
	profiles []*bytecode.Profile
	diags    []model.Diagnostic
	fatal    error
}

// note turns err into a diagnostic. Absence is silent; fatal errors stick.
func (in *inspection) note(what string, err error) bool {
	if err == nil {
		return true
	}
	if probe.IsUnsupported(err) {
		return false
	}
	if errors.Is(err, chain.ErrNotFound) || in.ctx.Err() != nil {
		if in.fatal == nil {
			in.fatal = err
		}
		return false
	}
	in.logger.Warn("token probe failed", zap.String("token", in.token.Hex()), zap.String("field", what), zap.Error(err))
	in.diags = append(in.diags, model.NewDiagnostic(component, model.DiagRPCError, "%s: %v", what, err))
	return false
}

// Inspect collects facts for token. code is the token's runtime bytecode and
// px its resolved proxy info; implementation code is scanned too.
func (i *Inspector) Inspect(ctx context.Context, token common.Address, code []byte, px model.ProxyInfo) (model.TokenFacts, []model.Diagnostic, error) {
	in := &inspection{Inspector: i, ctx: ctx, token: token}
	in.profiles = append(in.profiles, bytecode.Scan(code))

	facts := model.TokenFacts{}
	facts.TokenMeta = in.metadata(px)

	if supply, err := i.prober.CallUint(ctx, token, probe.TotalSupply); in.note("totalSupply", err) {
		facts.TotalSupply = supply
		if facts.Decimals != nil {
			facts.TotalSupplyFormatted = HumanAmount(supply, *facts.Decimals)
		}
	}

	if px.Implementation != nil {
		implCode, err := i.slots.Code(ctx, *px.Implementation)
		if in.note("implementation code", err) {
			in.profiles = append(in.profiles, bytecode.Scan(implCode))
		}
	}

	in.ownership(&facts)
	facts.Security = in.security()
	if facts.Security.AccessControl {
		facts.Roles = in.roles(roleCandidates(facts.Owner, px.Admin))
	}

	if in.fatal != nil {
		return model.TokenFacts{}, nil, in.fatal
	}
	return facts, in.diags, nil
}

func (in *inspection) metadata(px model.ProxyInfo) model.TokenMeta {
	meta, err := in.cache.Lookup(in.ctx, in.prober, in.token, in.logger)
	in.note("metadata", err)
	meta.Address = in.token

	if px.Implementation == nil || (meta.Name != "" && meta.Symbol != "" && meta.Decimals != nil) {
		return meta
	}
	impl, err := FetchMeta(in.ctx, in.prober, *px.Implementation, in.logger)
	if !in.note("implementation metadata", err) {
		return meta
	}
	if meta.Name == "" {
		meta.Name = impl.Name
	}
	if meta.Symbol == "" {
		meta.Symbol = impl.Symbol
	}
	if meta.Decimals == nil {
		meta.Decimals = impl.Decimals
	}
	return meta
}

func (in *inspection) ownership(facts *model.TokenFacts) {
	owner, _, err := in.prober.FirstAddress(in.ctx, in.token, probe.OwnerGetters)
	if in.note("owner", err) {
		facts.Owner = &owner
		facts.Renounced = owner == (common.Address{})
		if !facts.Renounced {
			code, err := in.slots.Code(in.ctx, owner)
			if in.note("owner code", err) {
				isContract := len(code) > 0
				facts.OwnerIsContract = &isContract
			}
		}
	}
}

func (in *inspection) roles(candidates []common.Address) map[string][]common.Address {
	out := make(map[string][]common.Address)
	for _, role := range Roles {
		id := [32]byte(role.ID)
		var holders []common.Address

		count, err := in.prober.CallUint(in.ctx, in.token, probe.GetRoleMemberCount, id)
		if in.note(role.Name+" member count", err) {
			n := count.Int64()
			if !count.IsInt64() || n > maxRoleMembers {
				n = maxRoleMembers
			}
			for idx := int64(0); idx < n; idx++ {
				member, err := in.prober.CallAddress(in.ctx, in.token, probe.GetRoleMember, id, big.NewInt(idx))
				if in.note(role.Name+" member", err) {
					holders = appendUnique(holders, member)
				}
			}
		} else {
			for _, candidate := range candidates {
				has, err := in.prober.CallBool(in.ctx, in.token, probe.HasRole, id, candidate)
				if in.note(role.Name+" hasRole", err) && has {
					holders = appendUnique(holders, candidate)
				}
			}
		}
		if len(holders) > 0 {
			out[role.Name] = holders
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (in *inspection) hasSelector(fns ...probe.Function) bool {
	for _, p := range in.profiles {
		for _, fn := range fns {
			if p.HasSelector(fn.Selector()) {
				return true
			}
		}
	}
	return false
}

func (in *inspection) hasMarker(markers ...string) bool {
	for _, p := range in.profiles {
		if p.ContainsAnyMarker(markers...) {
			return true
		}
	}
	return false
}

func roleCandidates(owner, admin *common.Address) []common.Address {
	var out []common.Address
	for _, a := range []*common.Address{owner, admin} {
		if a != nil && *a != (common.Address{}) {
			out = appendUnique(out, *a)
		}
	}
	return out
}

func appendUnique(list []common.Address, addr common.Address) []common.Address {
	for _, a := range list {
		if a == addr {
			return list
		}
	}
	return append(list, addr)
}
