package dex

import (
	"fmt"
	"sort"
)

// Registry maps a chain id to the ordered adapters that serve it.
type Registry struct {
	byChain map[uint64][]Adapter
}

func NewRegistry() *Registry {
	return &Registry{byChain: make(map[uint64][]Adapter)}
}

// Register appends a to every chain it supports.
func (r *Registry) Register(a Adapter) {
	for _, id := range a.Chains() {
		r.byChain[id] = append(r.byChain[id], a)
	}
}

// For returns the adapters for chainID. Unknown chains have none.
func (r *Registry) For(chainID uint64) []Adapter {
	return append([]Adapter(nil), r.byChain[chainID]...)
}

// Chains lists the chain ids with at least one adapter.
func (r *Registry) Chains() []uint64 {
	out := make([]uint64, 0, len(r.byChain))
	for id := range r.byChain {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Family names a pool discovery implementation.
type Family string

const (
	FamilyConstantProduct Family = "constant_product"
	FamilyConcentrated    Family = "concentrated"
	FamilyStableSwap      Family = "stable_swap"
	FamilyWeighted        Family = "weighted"
)

// Spec is the static configuration of one adapter instance.
type Spec struct {
	Name     string
	Family   Family
	ChainID  uint64
	Factory  string
	FeeBps   uint32
	FeeTiers []uint32
	Registry string
	Vault    string
	PoolIDs  []string
}

// New builds the adapter described by spec.
func New(spec Spec) (Adapter, error) {
	switch spec.Family {
	case FamilyConstantProduct:
		return NewConstantProduct(spec)
	case FamilyConcentrated:
		return NewConcentrated(spec)
	case FamilyStableSwap:
		return NewStableSwap(spec)
	case FamilyWeighted:
		return NewWeighted(spec)
	default:
		return nil, fmt.Errorf("adapter %s: unknown family %q", spec.Name, spec.Family)
	}
}

// BuildRegistry creates one adapter per spec, preserving order.
func BuildRegistry(specs []Spec) (*Registry, error) {
	r := NewRegistry()
	for _, spec := range specs {
		a, err := New(spec)
		if err != nil {
			return nil, err
		}
		r.Register(a)
	}
	return r, nil
}
