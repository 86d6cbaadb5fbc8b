package token

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// HolderInventory is the per-holder resource: one balance slot per identity
// the account has ever touched, plus deposit/withdraw logs. At most one
// exists per account, created lazily and never destroyed. Slots are held in
// an ordered map so iteration (queries, audits, persistence) is
// deterministic.
type HolderInventory struct {
	Owner string
	slots *treemap.Map // identity key -> *ValueUnit

	DepositEvents  *EventLog
	WithdrawEvents *EventLog
}

func newHolderInventory(owner string) *HolderInventory {
	return &HolderInventory{
		Owner:          owner,
		slots:          treemap.NewWithStringComparator(),
		DepositEvents:  &EventLog{},
		WithdrawEvents: &EventLog{},
	}
}

func (inv *HolderInventory) slot(id AssetIdentity) (*ValueUnit, bool) {
	v, ok := inv.slots.Get(id.Key())
	if !ok {
		return nil, false
	}
	return v.(*ValueUnit), true
}

// ensureSlot returns the slot for id, creating an empty one if absent.
func (inv *HolderInventory) ensureSlot(id AssetIdentity) *ValueUnit {
	if unit, ok := inv.slot(id); ok {
		return unit
	}
	unit := newValueUnit(id, 0)
	inv.slots.Put(id.Key(), unit)
	return unit
}

func (inv *HolderInventory) initializeSlot(id AssetIdentity) error {
	if _, ok := inv.slot(id); ok {
		return ErrAlreadyHasBalance
	}
	inv.slots.Put(id.Key(), newValueUnit(id, 0))
	return nil
}

// depositUnit merges the unit into its identity's slot, consuming it. The
// slot is created if absent. Returns the merged amount.
func (inv *HolderInventory) depositUnit(unit *ValueUnit) (uint64, error) {
	amount := unit.Amount()
	slot := inv.ensureSlot(unit.Identity())
	if err := slot.Merge(unit); err != nil {
		return 0, err
	}
	return amount, nil
}

// withdrawUnit detaches amount from the slot as a fresh unit. The slot must
// exist; taking more than it holds aborts.
func (inv *HolderInventory) withdrawUnit(id AssetIdentity, amount uint64) (*ValueUnit, error) {
	slot, ok := inv.slot(id)
	if !ok {
		return nil, ErrBalanceNotPublished
	}
	if amount > slot.Amount() {
		return nil, ErrInsufficientBalance
	}
	return slot.Split(amount)
}

// balanceOf never errors: a missing slot reads as zero.
func (inv *HolderInventory) balanceOf(id AssetIdentity) uint64 {
	slot, ok := inv.slot(id)
	if !ok {
		return 0
	}
	return slot.Amount()
}

func (inv *HolderInventory) forEachSlot(fn func(id AssetIdentity, amount uint64)) {
	it := inv.slots.Iterator()
	for it.Next() {
		unit := it.Value().(*ValueUnit)
		fn(unit.Identity(), unit.Amount())
	}
}

// InventoryState is the persisted existence marker plus event counters.
type InventoryState struct {
	Owner           string `json:"owner"`
	DepositCounter  uint64 `json:"depositCounter"`
	WithdrawCounter uint64 `json:"withdrawCounter"`
}
