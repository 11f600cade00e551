package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TokenMeta captures ERC20 metadata. Decimals is nil when decimals() is absent.
type TokenMeta struct {
	Address  common.Address `json:"address"`
	Decimals *uint8         `json:"decimals,omitempty"`
	Symbol   string         `json:"symbol,omitempty"`
	Name     string         `json:"name,omitempty"`
}

// TokenFacts is the token section of a report.
type TokenFacts struct {
	TokenMeta
	TotalSupply          *big.Int                    `json:"total_supply,omitempty"`
	TotalSupplyFormatted string                      `json:"total_supply_formatted,omitempty"`
	Owner                *common.Address             `json:"owner,omitempty"`
	OwnerIsContract      *bool                       `json:"owner_is_contract,omitempty"`
	Renounced            bool                        `json:"renounced"`
	Roles                map[string][]common.Address `json:"roles,omitempty"`
	Security             SecurityFlags               `json:"security"`
}

// SecurityFlags holds detected fee, limit, blacklist and pause facts.
type SecurityFlags struct {
	BuyFeePercent   *decimal.Decimal `json:"buy_fee_percent,omitempty"`
	SellFeePercent  *decimal.Decimal `json:"sell_fee_percent,omitempty"`
	MaxTxAmount     *big.Int         `json:"max_tx_amount,omitempty"`
	MaxWalletAmount *big.Int         `json:"max_wallet_amount,omitempty"`
	Paused          *bool            `json:"paused,omitempty"`
	Mintable        bool             `json:"mintable"`
	Burnable        bool             `json:"burnable"`
	Blacklist       bool             `json:"blacklist"`
	AccessControl   bool             `json:"access_control"`
	TradingCooldown bool             `json:"trading_cooldown"`
	SellBlocked     bool             `json:"sell_blocked"`
	Honeypot        bool             `json:"honeypot"`
	HoneypotReason  string           `json:"honeypot_reason,omitempty"`
}
