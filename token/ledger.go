package token

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sat20-labs/tokenledger/common"
	"github.com/sat20-labs/tokenledger/db"
)

// Ledger is the entry surface. Each exported mutation validates everything up
// front, applies the change to the in-memory resources, then flushes one write
// batch; a failed validation leaves no state change. The mutex makes each
// operation exclusive, standing in for the host's per-resource locking.
type Ledger struct {
	mutex sync.RWMutex

	kv        common.KVDB
	store     *resourceStore
	selfCheck bool
}

func NewLedger(kv common.KVDB, selfCheck bool) *Ledger {
	return &Ledger{
		kv:        kv,
		store:     newResourceStore(kv),
		selfCheck: selfCheck,
	}
}

// TokenTypeParams is everything the creator chooses about a new token type
// besides the supply bounds.
type TokenTypeParams struct {
	Collection    string
	Name          string
	Description   string
	URI           string
	MonitorSupply bool
	RoyaltyPayee  string
	RoyaltyRateBp uint64
}

func (l *Ledger) commit() {
	l.store.flush()
	if l.selfCheck {
		l.checkSelf()
	}
}

// CreateLimitedCollection registers a collection that can hold at most maximum
// token types. The creator's registry is published on first use.
func (l *Ledger) CreateLimitedCollection(creator, name, description, uri string, maximum uint64) error {
	return l.createCollection(creator, name, description, uri, true, maximum)
}

func (l *Ledger) CreateUnlimitedCollection(creator, name, description, uri string) error {
	return l.createCollection(creator, name, description, uri, false, 0)
}

func (l *Ledger) createCollection(creator, name, description, uri string, hasMax bool, maximum uint64) error {
	if err := validateAddress(creator); err != nil {
		return errors.Wrap(err, "invalid creator")
	}
	if err := validateName(name); err != nil {
		return errors.Wrap(err, "invalid collection name")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if reg := l.store.registry(creator); reg != nil && reg.collection(name) != nil {
		return ErrCollectionAlreadyExists
	}

	reg, _ := l.store.getOrCreateRegistry(creator)
	meta := &CollectionMeta{
		Name:        name,
		Description: description,
		URI:         uri,
		HasMaximum:  hasMax,
		Maximum:     maximum,
	}
	reg.Collections[name] = meta
	reg.CreateEvents.append(EventCollectionCreated, CollectionCreatedData{
		Creator:     creator,
		Name:        name,
		URI:         uri,
		Description: description,
		HasMaximum:  hasMax,
		Maximum:     maximum,
	})

	l.store.stageRegistryState(reg)
	l.store.stageCollection(creator, meta)
	l.store.stageEventLog(creator, LogCreate, reg.CreateEvents)
	l.commit()

	common.Log.Infof("created collection %s under %s", name, creator)
	return nil
}

// CreateLimitedToken registers a token type with a hard supply cap, mints
// initialAmount of it to the creator and returns the new identity. Supply is
// always tracked for capped tokens regardless of p.MonitorSupply.
func (l *Ledger) CreateLimitedToken(creator string, p *TokenTypeParams, maximum, initialAmount uint64) (AssetIdentity, error) {
	return l.createTokenType(creator, p, true, maximum, initialAmount)
}

func (l *Ledger) CreateUnlimitedToken(creator string, p *TokenTypeParams, initialAmount uint64) (AssetIdentity, error) {
	return l.createTokenType(creator, p, false, 0, initialAmount)
}

func (l *Ledger) createTokenType(creator string, p *TokenTypeParams, hasMax bool, maximum, initialAmount uint64) (AssetIdentity, error) {
	id := NewAssetIdentity(creator, p.Collection, p.Name)
	if err := id.validate(); err != nil {
		return AssetIdentity{}, errors.Wrap(err, "invalid token identity")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	reg := l.store.registry(creator)
	if reg == nil {
		return AssetIdentity{}, ErrRegistryNotPublished
	}
	coll := reg.collection(p.Collection)
	if coll == nil {
		return AssetIdentity{}, ErrCollectionNotPublished
	}
	if reg.tokenType(id) != nil {
		return AssetIdentity{}, ErrTokenAlreadyExists
	}
	if coll.HasMaximum && coll.Count >= coll.Maximum {
		return AssetIdentity{}, ErrCollectionLimitExceeded
	}

	monitor := p.MonitorSupply || hasMax
	if hasMax && initialAmount > maximum {
		return AssetIdentity{}, ErrMintLimitExceeded
	}

	// overflow can only happen on a pre-existing slot, so check before the
	// inventory is lazily created
	var inv *HolderInventory
	if initialAmount > 0 {
		if inv = l.store.inventory(creator); inv != nil {
			if _, err := checkedAdd(inv.balanceOf(id), initialAmount); err != nil {
				return AssetIdentity{}, err
			}
		} else {
			inv, _ = l.store.getOrCreateInventory(creator)
		}
	}

	payee := p.RoyaltyPayee
	if payee == "" {
		payee = creator
	}
	meta := &TokenTypeMeta{
		ID:            id,
		Description:   p.Description,
		URI:           p.URI,
		MonitorSupply: monitor,
		HasMaximum:    hasMax,
		Maximum:       maximum,
		Royalty:       Royalty{Payee: payee, RateBasisPoints: p.RoyaltyRateBp},
	}
	if monitor {
		meta.Supply = initialAmount
	}

	coll.Count++
	reg.installTokenType(meta)
	reg.CreateEvents.append(EventTokenTypeCreated, TokenTypeCreatedData{
		ID:            id,
		Description:   p.Description,
		URI:           p.URI,
		MonitorSupply: monitor,
		HasMaximum:    hasMax,
		Maximum:       maximum,
		InitialAmount: initialAmount,
		RoyaltyRateBp: p.RoyaltyRateBp,
	})

	l.store.stageRegistryState(reg)
	l.store.stageCollection(creator, coll)
	l.store.stageTokenType(meta)
	l.store.stageCapabilities(reg, id)
	l.store.stageEventLog(creator, LogCreate, reg.CreateEvents)

	if initialAmount > 0 {
		amount, err := inv.depositUnit(newValueUnit(id, initialAmount))
		if err != nil {
			common.Log.Panicf("initial deposit of %s failed after validation, %v", id, err)
		}
		inv.DepositEvents.append(EventDeposited, AmountData{ID: id, Amount: amount})
		l.store.stageInventoryState(inv)
		l.store.stageBalance(creator, id, inv.balanceOf(id))
		l.store.stageEventLog(creator, LogDeposit, inv.DepositEvents)
	}
	l.commit()

	common.Log.Infof("created token %s, initial %d", id, initialAmount)
	return id, nil
}

// Mint issues amount of the token into destination's inventory. The mint
// capability is looked up in the AUTHORIZER's own registry, so minting a
// foreign creator's token succeeds only for accounts that hold the capability
// under their own account.
func (l *Ledger) Mint(authorizer, destination string, id AssetIdentity, amount uint64) error {
	if err := validateAddress(destination); err != nil {
		return errors.Wrap(err, "invalid destination")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	authReg := l.store.registry(authorizer)
	if authReg == nil {
		return ErrRegistryNotPublished
	}
	if !authReg.hasMintCap(id) {
		return ErrNoMintCapability
	}

	creatorReg := l.store.registry(id.Creator)
	if creatorReg == nil {
		return ErrRegistryNotPublished
	}
	meta := creatorReg.tokenType(id)
	if meta == nil {
		return ErrTokenNotPublished
	}

	newSupply := meta.Supply
	if meta.MonitorSupply {
		var err error
		newSupply, err = checkedAdd(meta.Supply, amount)
		if err != nil {
			return err
		}
		if meta.HasMaximum && newSupply > meta.Maximum {
			return ErrMintLimitExceeded
		}
	}

	inv := l.store.inventory(destination)
	if inv != nil {
		if _, err := checkedAdd(inv.balanceOf(id), amount); err != nil {
			return err
		}
	} else {
		inv, _ = l.store.getOrCreateInventory(destination)
	}

	meta.Supply = newSupply
	if _, err := inv.depositUnit(newValueUnit(id, amount)); err != nil {
		common.Log.Panicf("mint deposit of %s failed after validation, %v", id, err)
	}
	inv.DepositEvents.append(EventDeposited, AmountData{ID: id, Amount: amount})
	authReg.MintEvents.append(EventMintNotification, AmountData{ID: id, Amount: amount})

	l.store.stageTokenType(meta)
	l.store.stageRegistryState(authReg)
	l.store.stageEventLog(authorizer, LogMint, authReg.MintEvents)
	l.store.stageInventoryState(inv)
	l.store.stageBalance(destination, id, inv.balanceOf(id))
	l.store.stageEventLog(destination, LogDeposit, inv.DepositEvents)
	l.commit()

	common.Log.Infof("minted %d of %s to %s by %s", amount, id, destination, authorizer)
	return nil
}

// Burn withdraws amount from the owner's inventory and destroys it. The burn
// capability is looked up in the owner's own registry, mirroring Mint.
func (l *Ledger) Burn(owner string, id AssetIdentity, amount uint64) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	reg := l.store.registry(owner)
	if reg == nil {
		return ErrRegistryNotPublished
	}
	if !reg.hasBurnCap(id) {
		return ErrNoBurnCapability
	}

	creatorReg := l.store.registry(id.Creator)
	if creatorReg == nil {
		return ErrRegistryNotPublished
	}
	meta := creatorReg.tokenType(id)
	if meta == nil {
		return ErrTokenNotPublished
	}

	inv := l.store.inventory(owner)
	if inv == nil {
		return ErrStoreNotPublished
	}

	unit, err := inv.withdrawUnit(id, amount)
	if err != nil {
		return err
	}
	burned := unit.consume()
	if meta.MonitorSupply {
		meta.Supply -= burned
	}
	inv.WithdrawEvents.append(EventWithdrawn, AmountData{ID: id, Amount: burned})

	l.store.stageTokenType(meta)
	l.store.stageInventoryState(inv)
	l.store.stageBalance(owner, id, inv.balanceOf(id))
	l.store.stageEventLog(owner, LogWithdraw, inv.WithdrawEvents)
	l.commit()

	common.Log.Infof("burned %d of %s from %s", burned, id, owner)
	return nil
}

// DirectTransfer moves amount from sender to receiver, creating the receiver's
// balance slot if needed. Value is conserved: the withdrawn unit is the one
// deposited.
func (l *Ledger) DirectTransfer(sender, receiver string, id AssetIdentity, amount uint64) error {
	if err := validateAddress(receiver); err != nil {
		return errors.Wrap(err, "invalid receiver")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	srcInv := l.store.inventory(sender)
	if srcInv == nil {
		return ErrStoreNotPublished
	}
	if slot, ok := srcInv.slot(id); !ok {
		return ErrBalanceNotPublished
	} else if amount > slot.Amount() {
		return ErrInsufficientBalance
	}

	dstInv := l.store.inventory(receiver)
	if dstInv != nil {
		if sender != receiver {
			if _, err := checkedAdd(dstInv.balanceOf(id), amount); err != nil {
				return err
			}
		}
	} else {
		dstInv, _ = l.store.getOrCreateInventory(receiver)
	}

	unit, err := srcInv.withdrawUnit(id, amount)
	if err != nil {
		return err
	}
	srcInv.WithdrawEvents.append(EventWithdrawn, AmountData{ID: id, Amount: amount})
	if _, err := dstInv.depositUnit(unit); err != nil {
		common.Log.Panicf("transfer deposit of %s failed after validation, %v", id, err)
	}
	dstInv.DepositEvents.append(EventDeposited, AmountData{ID: id, Amount: amount})

	l.store.stageInventoryState(srcInv)
	l.store.stageBalance(sender, id, srcInv.balanceOf(id))
	l.store.stageEventLog(sender, LogWithdraw, srcInv.WithdrawEvents)
	l.store.stageInventoryState(dstInv)
	l.store.stageBalance(receiver, id, dstInv.balanceOf(id))
	l.store.stageEventLog(receiver, LogDeposit, dstInv.DepositEvents)
	l.commit()

	common.Log.Infof("transferred %d of %s from %s to %s", amount, id, sender, receiver)
	return nil
}

// InitializeInventory publishes the account's inventory. Idempotent.
func (l *Ledger) InitializeInventory(account string) error {
	if err := validateAddress(account); err != nil {
		return errors.Wrap(err, "invalid account")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	inv, created := l.store.getOrCreateInventory(account)
	if !created {
		return nil
	}
	l.store.stageInventoryState(inv)
	l.commit()
	return nil
}

// InitializeSlotFor opens an explicit zero-balance slot, the opt-in an account
// makes before it can receive a token it never held. Fails if the slot exists.
func (l *Ledger) InitializeSlotFor(account string, id AssetIdentity) error {
	if err := validateAddress(account); err != nil {
		return errors.Wrap(err, "invalid account")
	}
	if err := id.validate(); err != nil {
		return errors.Wrap(err, "invalid token identity")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	inv, _ := l.store.getOrCreateInventory(account)
	if err := inv.initializeSlot(id); err != nil {
		return err
	}
	l.store.stageInventoryState(inv)
	l.store.stageBalance(account, id, 0)
	l.commit()
	return nil
}

// BalanceOf reads as zero when the account has no inventory or no slot.
func (l *Ledger) BalanceOf(owner string, id AssetIdentity) uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	inv := l.store.inventory(owner)
	if inv == nil {
		return 0
	}
	return inv.balanceOf(id)
}

func (l *Ledger) GetCollection(creator, name string) (*CollectionMeta, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	reg := l.store.registry(creator)
	if reg == nil {
		return nil, ErrRegistryNotPublished
	}
	meta := reg.collection(name)
	if meta == nil {
		return nil, ErrCollectionNotPublished
	}
	clone := *meta
	return &clone, nil
}

func (l *Ledger) GetTokenType(id AssetIdentity) (*TokenTypeMeta, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	reg := l.store.registry(id.Creator)
	if reg == nil {
		return nil, ErrRegistryNotPublished
	}
	meta := reg.tokenType(id)
	if meta == nil {
		return nil, ErrTokenNotPublished
	}
	clone := *meta
	return &clone, nil
}

func (l *Ledger) ListCollections(creator string) ([]*CollectionMeta, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	reg := l.store.registry(creator)
	if reg == nil {
		return nil, ErrRegistryNotPublished
	}
	ret := make([]*CollectionMeta, 0, len(reg.Collections))
	for _, meta := range reg.Collections {
		clone := *meta
		ret = append(ret, &clone)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret, nil
}

func (l *Ledger) ListTokenTypes(creator string) ([]*TokenTypeMeta, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	reg := l.store.registry(creator)
	if reg == nil {
		return nil, ErrRegistryNotPublished
	}
	ret := make([]*TokenTypeMeta, 0, len(reg.TokenTypes))
	for _, meta := range reg.TokenTypes {
		clone := *meta
		ret = append(ret, &clone)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID.Key() < ret[j].ID.Key() })
	return ret, nil
}

// Supply returns the tracked supply; monitored is false for tokens created
// without supply tracking, in which case supply reads as zero.
func (l *Ledger) Supply(id AssetIdentity) (supply uint64, monitored bool, err error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	reg := l.store.registry(id.Creator)
	if reg == nil {
		return 0, false, ErrRegistryNotPublished
	}
	meta := reg.tokenType(id)
	if meta == nil {
		return 0, false, ErrTokenNotPublished
	}
	return meta.Supply, meta.MonitorSupply, nil
}

// Events pages the persisted log of one account, oldest first, starting at
// sequence number start. logName is one of create, mint, deposit, withdraw.
func (l *Ledger) Events(owner, logName string, start uint64, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 100
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	ret := make([]*Event, 0, limit)
	prefix := []byte(GetEventPrefix(owner, logName))
	startKey := []byte(GetEventKey(owner, logName, start))
	err := db.IterateRangeInDB(l.kv, prefix, startKey, nil, func(k, v []byte) error {
		var ev Event
		if err := db.DecodeBytes(v, &ev); err != nil {
			return err
		}
		ret = append(ret, &ev)
		if len(ret) >= limit {
			return errReachedLimit
		}
		return nil
	})
	if err != nil && err != errReachedLimit {
		return nil, err
	}
	return ret, nil
}

var errReachedLimit = errors.New("reached page limit")

// Close flushes nothing (every operation already flushed) and drops caches.
func (l *Ledger) Close() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.store.discard()
}
