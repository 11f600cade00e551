package token

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
)

var (
	maxFeeValue       = big.NewInt(100)
	maxComponentValue = big.NewInt(50)
	honeypotSellFee   = decimal.NewFromInt(50)
)

func (in *inspection) security() model.SecurityFlags {
	flags := model.SecurityFlags{
		Mintable:        in.hasSelector(probe.Mint),
		Burnable:        in.hasSelector(probe.Burn),
		Blacklist:       in.hasSelector(probe.BlacklistSelectors...),
		TradingCooldown: in.hasSelector(probe.CooldownSelectors...) || in.hasMarker(cooldownMarkers...),
		SellBlocked:     in.hasMarker(sellBlockedMarkers...),
	}

	flags.AccessControl = in.hasSelector(probe.HasRole)
	if !flags.AccessControl {
		_, err := in.prober.TryCall(in.ctx, in.token, probe.GetRoleAdmin, [32]byte{})
		flags.AccessControl = in.note("getRoleAdmin", err)
	}

	if paused, _, err := in.prober.FirstBool(in.ctx, in.token, probe.PauseGetters); in.note("paused", err) {
		flags.Paused = &paused
	}

	flags.BuyFeePercent, flags.SellFeePercent = in.fees()
	flags.MaxTxAmount = in.firstPositive("maxTx", probe.MaxTxGetters)
	flags.MaxWalletAmount = in.firstPositive("maxWallet", probe.MaxWalletGetters)

	switch {
	case flags.SellFeePercent != nil && flags.SellFeePercent.GreaterThan(honeypotSellFee):
		flags.Honeypot = true
		flags.HoneypotReason = fmt.Sprintf("sell fee %s%%", flags.SellFeePercent.String())
	case flags.SellBlocked:
		flags.Honeypot = true
		flags.HoneypotReason = "sell restriction markers in bytecode"
	}
	return flags
}

// fees reads on-chain fee getters: specific buy/sell getters, then generic
// getters, then summed components.
func (in *inspection) fees() (*decimal.Decimal, *decimal.Decimal) {
	buy := in.firstFee(probe.BuyFeeGetters)
	sell := in.firstFee(probe.SellFeeGetters)

	if buy == nil && sell == nil {
		if v := in.firstFee(probe.GenericFeeGetters); v != nil {
			buy, sell = v, v
		}
	}

	if buy == nil && sell == nil {
		total := new(big.Int)
		for _, fn := range probe.FeeComponentGetters {
			v, err := in.prober.CallUint(in.ctx, in.token, fn)
			if in.note(fn.Name(), err) && v.Cmp(maxComponentValue) <= 0 {
				total.Add(total, v)
			}
		}
		if total.Sign() > 0 && total.Cmp(maxFeeValue) <= 0 {
			buy, sell = feePercent(total), feePercent(total)
		}
	}
	return buy, sell
}

func (in *inspection) firstFee(fns []probe.Function) *decimal.Decimal {
	for _, fn := range fns {
		v, err := in.prober.CallUint(in.ctx, in.token, fn)
		if !in.note(fn.Name(), err) {
			continue
		}
		if v.Sign() > 0 && v.Cmp(maxFeeValue) <= 0 {
			return feePercent(v)
		}
	}
	return nil
}

// feePercent normalises values above 50, read as basis points above 100 and
// per-mille otherwise.
func feePercent(v *big.Int) *decimal.Decimal {
	d := decimal.NewFromBigInt(v, 0)
	switch {
	case v.Cmp(maxFeeValue) > 0:
		d = d.Shift(-2)
	case v.Cmp(maxComponentValue) > 0:
		d = d.Shift(-1)
	}
	return &d
}

func (in *inspection) firstPositive(what string, fns []probe.Function) *big.Int {
	for _, fn := range fns {
		v, err := in.prober.CallUint(in.ctx, in.token, fn)
		if in.note(what, err) && v.Sign() > 0 {
			return v
		}
	}
	return nil
}
