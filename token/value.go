package token

import (
	"github.com/sat20-labs/tokenledger/common"
	"lukechampine.com/uint128"
)

// ValueUnit is a non-duplicable quantity of one asset. Units are created by
// mint, split or withdraw, and can only leave the system through merge, burn
// or deposit, all of which consume the unit. Touching a consumed unit panics;
// there is no way to copy one.
type ValueUnit struct {
	id       AssetIdentity
	amount   uint64
	consumed bool
}

func newValueUnit(id AssetIdentity, amount uint64) *ValueUnit {
	return &ValueUnit{id: id, amount: amount}
}

func (u *ValueUnit) Identity() AssetIdentity {
	u.assertLive()
	return u.id
}

func (u *ValueUnit) Amount() uint64 {
	u.assertLive()
	return u.amount
}

// Split carves amount off the unit and returns it as a new unit with the same
// identity. The receiver keeps the remainder; total value is conserved.
func (u *ValueUnit) Split(amount uint64) (*ValueUnit, error) {
	u.assertLive()
	if amount > u.amount {
		return nil, ErrSplitAmountExceedsBalance
	}
	u.amount -= amount
	return newValueUnit(u.id, amount), nil
}

// Merge folds src into the receiver and consumes src. Both units must share
// an identity; total value is conserved.
func (u *ValueUnit) Merge(src *ValueUnit) error {
	u.assertLive()
	src.assertLive()
	if u.id != src.id {
		return ErrInvalidMerge
	}
	sum, err := checkedAdd(u.amount, src.amount)
	if err != nil {
		return err
	}
	u.amount = sum
	src.consume()
	return nil
}

// consume retires the unit and returns its final amount.
func (u *ValueUnit) consume() uint64 {
	u.assertLive()
	u.consumed = true
	return u.amount
}

func (u *ValueUnit) assertLive() {
	if u.consumed {
		common.Log.Panicf("value unit %s used after consumption", u.id)
	}
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := uint128.From64(a).Add(uint128.From64(b))
	if sum.Hi != 0 {
		return 0, ErrAmountOverflow
	}
	return sum.Lo, nil
}
