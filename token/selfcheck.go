package token

import (
	"github.com/sat20-labs/tokenledger/common"
	"github.com/sat20-labs/tokenledger/db"
)

// checkSelf audits the persisted state against the conservation invariants.
// Runs after a flush, so the store and the cached resources agree. Any
// violation means corrupted accounting and is not recoverable.
func (l *Ledger) checkSelf() {
	balances := make(map[string]uint64) // identity key -> total held

	err := l.kv.BatchRead([]byte(DB_PREFIX_BALANCE), false, func(k, v []byte) error {
		_, id, err := ParseBalanceKey(string(k))
		if err != nil {
			return err
		}
		var amount uint64
		if err := db.DecodeBytes(v, &amount); err != nil {
			return err
		}
		sum, err := checkedAdd(balances[id.Key()], amount)
		if err != nil {
			return err
		}
		balances[id.Key()] = sum
		return nil
	})
	if err != nil {
		common.Log.Panicf("self check: reading balances failed, %v", err)
	}

	tokensPerCollection := make(map[string]uint64) // collection key -> token type count

	err = l.kv.BatchRead([]byte(DB_PREFIX_TOKENTYPE), false, func(k, v []byte) error {
		var meta TokenTypeMeta
		if err := db.DecodeBytes(v, &meta); err != nil {
			return err
		}
		key := meta.ID.Key()
		if meta.MonitorSupply {
			if held := balances[key]; held != meta.Supply {
				common.Log.Panicf("self check: %s tracked supply %d but %d held in inventories",
					meta.ID, meta.Supply, held)
			}
			if meta.HasMaximum && meta.Supply > meta.Maximum {
				common.Log.Panicf("self check: %s supply %d exceeds maximum %d",
					meta.ID, meta.Supply, meta.Maximum)
			}
		}
		collKey := GetCollectionKey(meta.ID.Creator, meta.ID.Collection)
		tokensPerCollection[collKey]++
		return nil
	})
	if err != nil {
		common.Log.Panicf("self check: reading token types failed, %v", err)
	}

	err = l.kv.BatchRead([]byte(DB_PREFIX_COLLECTION), false, func(k, v []byte) error {
		var meta CollectionMeta
		if err := db.DecodeBytes(v, &meta); err != nil {
			return err
		}
		if registered := tokensPerCollection[string(k)]; registered != meta.Count {
			common.Log.Panicf("self check: collection %s counts %d token types but %d registered",
				meta.Name, meta.Count, registered)
		}
		if meta.HasMaximum && meta.Count > meta.Maximum {
			common.Log.Panicf("self check: collection %s count %d exceeds maximum %d",
				meta.Name, meta.Count, meta.Maximum)
		}
		return nil
	})
	if err != nil {
		common.Log.Panicf("self check: reading collections failed, %v", err)
	}
}

// CheckSelf runs the audit on demand. Used by tests and the rpc status page.
func (l *Ledger) CheckSelf() {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.checkSelf()
}
