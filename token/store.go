package token

import (
	"github.com/decred/dcrd/lru"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sat20-labs/tokenledger/common"
	"github.com/sat20-labs/tokenledger/db"
)

// How many holder inventories stay resident between operations. Registries
// are few (one per creator) and stay resident for the life of the process.
const maxCachedInventories = 4096

// resourceStore is the account-addressed resource layer: get-or-create a
// CollectionRegistry or HolderInventory for an address, backed by the KVDB.
// Mutations are staged in memory and flushed through one write batch, so an
// aborted operation leaves the store untouched.
type resourceStore struct {
	kv common.KVDB

	registries  cmap.ConcurrentMap[string, *CollectionRegistry]
	inventories map[string]*HolderInventory
	hotOwners   lru.Cache

	pending []pendingWrite
}

type pendingWrite struct {
	key   string
	value interface{}
}

func newResourceStore(kv common.KVDB) *resourceStore {
	return &resourceStore{
		kv:          kv,
		registries:  cmap.New[*CollectionRegistry](),
		inventories: make(map[string]*HolderInventory),
		hotOwners:   lru.NewCache(maxCachedInventories),
	}
}

// registry returns the creator's registry, or nil if it was never published.
func (s *resourceStore) registry(creator string) *CollectionRegistry {
	if reg, ok := s.registries.Get(creator); ok {
		return reg
	}
	reg := s.loadRegistry(creator)
	if reg != nil {
		s.registries.Set(creator, reg)
	}
	return reg
}

// getOrCreateRegistry lazily publishes the registry. The second return is
// true when it was created by this call; the caller stages the new state.
func (s *resourceStore) getOrCreateRegistry(creator string) (*CollectionRegistry, bool) {
	if reg := s.registry(creator); reg != nil {
		return reg, false
	}
	reg := newCollectionRegistry(creator)
	s.registries.Set(creator, reg)
	return reg, true
}

func (s *resourceStore) loadRegistry(creator string) *CollectionRegistry {
	var state RegistryState
	err := db.GetValueFromDB([]byte(GetRegistryKey(creator)), &state, s.kv)
	if err == common.ErrKeyNotFound {
		return nil
	} else if err != nil {
		common.Log.Panicf("loadRegistry %s failed, %v", creator, err)
	}

	reg := newCollectionRegistry(creator)
	reg.CreateEvents.Counter = state.CreateCounter
	reg.MintEvents.Counter = state.MintCounter

	err = s.kv.BatchRead([]byte(GetCollectionPrefix(creator)), false, func(k, v []byte) error {
		var meta CollectionMeta
		if err := db.DecodeBytes(v, &meta); err != nil {
			return err
		}
		reg.Collections[meta.Name] = &meta
		return nil
	})
	if err != nil {
		common.Log.Panicf("loadRegistry %s collections failed, %v", creator, err)
	}

	err = s.kv.BatchRead([]byte(GetTokenTypePrefix(creator)), false, func(k, v []byte) error {
		var meta TokenTypeMeta
		if err := db.DecodeBytes(v, &meta); err != nil {
			return err
		}
		reg.TokenTypes[meta.ID.Key()] = &meta
		return nil
	})
	if err != nil {
		common.Log.Panicf("loadRegistry %s token types failed, %v", creator, err)
	}

	err = s.kv.BatchRead([]byte(GetMintCapPrefix(creator)), false, func(k, v []byte) error {
		var cap MintCapability
		if err := db.DecodeBytes(v, &cap); err != nil {
			return err
		}
		reg.MintCaps[cap.TokenID.Key()] = &cap
		return nil
	})
	if err != nil {
		common.Log.Panicf("loadRegistry %s mint caps failed, %v", creator, err)
	}

	err = s.kv.BatchRead([]byte(GetBurnCapPrefix(creator)), false, func(k, v []byte) error {
		var cap BurnCapability
		if err := db.DecodeBytes(v, &cap); err != nil {
			return err
		}
		reg.BurnCaps[cap.TokenID.Key()] = &cap
		return nil
	})
	if err != nil {
		common.Log.Panicf("loadRegistry %s burn caps failed, %v", creator, err)
	}

	return reg
}

// inventory returns the owner's inventory, or nil if it was never published.
func (s *resourceStore) inventory(owner string) *HolderInventory {
	if inv, ok := s.inventories[owner]; ok {
		s.hotOwners.Add(owner)
		return inv
	}
	inv := s.loadInventory(owner)
	if inv != nil {
		s.inventories[owner] = inv
		s.hotOwners.Add(owner)
	}
	return inv
}

func (s *resourceStore) getOrCreateInventory(owner string) (*HolderInventory, bool) {
	if inv := s.inventory(owner); inv != nil {
		return inv, false
	}
	inv := newHolderInventory(owner)
	s.inventories[owner] = inv
	s.hotOwners.Add(owner)
	return inv, true
}

func (s *resourceStore) loadInventory(owner string) *HolderInventory {
	var state InventoryState
	err := db.GetValueFromDB([]byte(GetInventoryKey(owner)), &state, s.kv)
	if err == common.ErrKeyNotFound {
		return nil
	} else if err != nil {
		common.Log.Panicf("loadInventory %s failed, %v", owner, err)
	}

	inv := newHolderInventory(owner)
	inv.DepositEvents.Counter = state.DepositCounter
	inv.WithdrawEvents.Counter = state.WithdrawCounter

	err = s.kv.BatchRead([]byte(GetBalancePrefix(owner)), false, func(k, v []byte) error {
		_, id, err := ParseBalanceKey(string(k))
		if err != nil {
			return err
		}
		var amount uint64
		if err := db.DecodeBytes(v, &amount); err != nil {
			return err
		}
		inv.slots.Put(id.Key(), newValueUnit(id, amount))
		return nil
	})
	if err != nil {
		common.Log.Panicf("loadInventory %s balances failed, %v", owner, err)
	}

	return inv
}

func (s *resourceStore) stage(key string, value interface{}) {
	s.pending = append(s.pending, pendingWrite{key: key, value: value})
}

func (s *resourceStore) stageRegistryState(reg *CollectionRegistry) {
	s.stage(GetRegistryKey(reg.Creator), &RegistryState{
		Creator:       reg.Creator,
		CreateCounter: reg.CreateEvents.Counter,
		MintCounter:   reg.MintEvents.Counter,
	})
}

func (s *resourceStore) stageCollection(creator string, meta *CollectionMeta) {
	s.stage(GetCollectionKey(creator, meta.Name), meta)
}

func (s *resourceStore) stageTokenType(meta *TokenTypeMeta) {
	s.stage(GetTokenTypeKey(meta.ID), meta)
}

func (s *resourceStore) stageCapabilities(reg *CollectionRegistry, id AssetIdentity) {
	s.stage(GetMintCapKey(reg.Creator, id), reg.MintCaps[id.Key()])
	s.stage(GetBurnCapKey(reg.Creator, id), reg.BurnCaps[id.Key()])
}

func (s *resourceStore) stageInventoryState(inv *HolderInventory) {
	s.stage(GetInventoryKey(inv.Owner), &InventoryState{
		Owner:           inv.Owner,
		DepositCounter:  inv.DepositEvents.Counter,
		WithdrawCounter: inv.WithdrawEvents.Counter,
	})
}

func (s *resourceStore) stageBalance(owner string, id AssetIdentity, amount uint64) {
	s.stage(GetBalanceKey(owner, id), amount)
}

func (s *resourceStore) stageEventLog(owner, logName string, log *EventLog) {
	for _, ev := range log.takePending() {
		s.stage(GetEventKey(owner, logName, ev.Seq), ev)
	}
}

// flush commits every staged record through one write batch. Storage faults
// at this point are unrecoverable.
func (s *resourceStore) flush() {
	if len(s.pending) == 0 {
		return
	}

	wb := s.kv.NewWriteBatch()
	defer wb.Close()

	for _, w := range s.pending {
		if err := db.SetDB([]byte(w.key), w.value, wb); err != nil {
			common.Log.Panicf("Error setting %s in db %v", w.key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		common.Log.Panicf("Error flushing writes to db %v", err)
	}
	s.pending = nil

	s.evictCold()
}

// discard drops staged writes after an aborted operation. Callers only stage
// after validation, so this is a safety net rather than the normal path.
func (s *resourceStore) discard() {
	s.pending = nil
}

// evictCold drops inventories that fell out of the recent-use window. Only
// called right after a flush, when every resident resource is clean.
func (s *resourceStore) evictCold() {
	if len(s.inventories) <= maxCachedInventories {
		return
	}
	for owner := range s.inventories {
		if !s.hotOwners.Contains(owner) {
			delete(s.inventories, owner)
		}
	}
}
