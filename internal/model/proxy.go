package model

import "github.com/ethereum/go-ethereum/common"

// ProxyKind names the detected proxy layout.
type ProxyKind string

const (
	ProxyNone        ProxyKind = "none"
	ProxyEIP1967     ProxyKind = "eip1967"
	ProxyBeacon      ProxyKind = "beacon"
	ProxyTransparent ProxyKind = "transparent"
	ProxyMinimal     ProxyKind = "minimal"
)

// ProxyInfo describes the proxy posture of a contract.
type ProxyInfo struct {
	Kind           ProxyKind       `json:"kind"`
	Implementation *common.Address `json:"implementation,omitempty"`
	Admin          *common.Address `json:"admin,omitempty"`
	Beacon         *common.Address `json:"beacon,omitempty"`
}

func (p ProxyInfo) IsProxy() bool {
	return p.Kind != "" && p.Kind != ProxyNone
}
