// Package bytecode extracts static hints from runtime bytecode.
package bytecode

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

const (
	opPush1  = 0x60
	opPush4  = 0x63
	opPush32 = 0x7f
)

var (
	minimalProxyPrefix = common.FromHex("0x363d3d373d3d3d363d73")
	minimalProxySuffix = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

// Profile is the result of one pass over a contract's code.
type Profile struct {
	size      int
	selectors map[[4]byte]struct{}
	lowered   []byte
}

// Scan walks code once, collecting every PUSH4 immediate as a candidate
// selector. PUSH data is skipped so immediates are never read as opcodes.
func Scan(code []byte) *Profile {
	p := &Profile{
		size:      len(code),
		selectors: make(map[[4]byte]struct{}),
		lowered:   bytes.ToLower(code),
	}
	for pc := 0; pc < len(code); pc++ {
		op := code[pc]
		if op < opPush1 || op > opPush32 {
			continue
		}
		n := int(op - opPush1 + 1)
		if op == opPush4 && pc+1+n <= len(code) {
			var sel [4]byte
			copy(sel[:], code[pc+1:pc+1+n])
			p.selectors[sel] = struct{}{}
		}
		pc += n
	}
	return p
}

// Empty reports whether the account has no code.
func (p *Profile) Empty() bool {
	return p.size == 0
}

// HasSelector reports whether sel appears in the dispatcher.
func (p *Profile) HasSelector(sel [4]byte) bool {
	_, ok := p.selectors[sel]
	return ok
}

// HasAnySelector reports whether any of sels appears.
func (p *Profile) HasAnySelector(sels ...[4]byte) bool {
	for _, sel := range sels {
		if p.HasSelector(sel) {
			return true
		}
	}
	return false
}

// ContainsMarker does a case-insensitive search for an ASCII marker, usually
// part of a revert string or an embedded identifier.
func (p *Profile) ContainsMarker(marker string) bool {
	return bytes.Contains(p.lowered, bytes.ToLower([]byte(marker)))
}

// ContainsAnyMarker reports whether any marker is present.
func (p *Profile) ContainsAnyMarker(markers ...string) bool {
	for _, m := range markers {
		if p.ContainsMarker(m) {
			return true
		}
	}
	return false
}

// MinimalProxyTarget returns the implementation embedded in an EIP-1167 clone.
func MinimalProxyTarget(code []byte) (common.Address, bool) {
	want := len(minimalProxyPrefix) + common.AddressLength + len(minimalProxySuffix)
	if len(code) != want || !bytes.HasPrefix(code, minimalProxyPrefix) || !bytes.HasSuffix(code, minimalProxySuffix) {
		return common.Address{}, false
	}
	target := common.BytesToAddress(code[len(minimalProxyPrefix) : len(minimalProxyPrefix)+common.AddressLength])
	return target, target != (common.Address{})
}
