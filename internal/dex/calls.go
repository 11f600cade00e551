package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/probe"
)

// callMethod packs, calls and unpacks one view method through the prober.
// Empty or malformed return data is reported as probe.ErrUnsupported.
func callMethod(ctx context.Context, prober *probe.Prober, to common.Address, lazy *lazyABI, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := lazy.get()
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := prober.Call(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("call %s on %s: %w: empty return", method, to.Hex(), probe.ErrUnsupported)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w: %v", method, probe.ErrUnsupported, err)
	}
	return values, nil
}

func callAddress(ctx context.Context, prober *probe.Prober, to common.Address, lazy *lazyABI, method string, args ...interface{}) (common.Address, error) {
	values, err := callMethod(ctx, prober, to, lazy, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("%w: unsupported address type %T", probe.ErrUnsupported, value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported int type %T", probe.ErrUnsupported, value)
	}
}

func asBigInts(value interface{}) ([]*big.Int, error) {
	switch v := value.(type) {
	case []*big.Int:
		return v, nil
	case [8]*big.Int:
		return v[:], nil
	default:
		return nil, fmt.Errorf("%w: unsupported int list type %T", probe.ErrUnsupported, value)
	}
}

func asAddresses(value interface{}) ([]common.Address, error) {
	switch v := value.(type) {
	case []common.Address:
		return v, nil
	case [8]common.Address:
		return v[:], nil
	default:
		return nil, fmt.Errorf("%w: unsupported address list type %T", probe.ErrUnsupported, value)
	}
}

// balanceOf reads an ERC20 balance at the pinned block.
func balanceOf(ctx context.Context, prober *probe.Prober, token, owner common.Address) (*big.Int, error) {
	return prober.CallUint(ctx, token, probe.BalanceOf, owner)
}
