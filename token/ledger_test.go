package token

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sat20-labs/tokenledger/common"
	"github.com/sat20-labs/tokenledger/db"
)

const (
	creator = "0xC"
	holder  = "0xH"
)

func openTestDB(t *testing.T, path string) common.KVDB {
	kv, err := db.Open("bbolt", path)
	require.NoError(t, err)
	return kv
}

func newTestLedger(t *testing.T) *Ledger {
	kv := openTestDB(t, filepath.Join(t.TempDir(), "ledger.db"))
	t.Cleanup(func() { kv.Close() })
	return NewLedger(kv, true)
}

func mustCreateToken(t *testing.T, l *Ledger, name string, maximum, initial uint64) AssetIdentity {
	t.Helper()
	id, err := l.CreateLimitedToken(creator, &TokenTypeParams{
		Collection: "Sets",
		Name:       name,
		URI:        "https://example.com/" + name,
	}, maximum, initial)
	require.NoError(t, err)
	assert.Equal(t, NewAssetIdentity(creator, "Sets", name), id)
	return id
}

func TestCreateCollection(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateLimitedCollection(creator, "Sets", "test sets", "https://example.com", 2))
	assert.ErrorIs(t, l.CreateLimitedCollection(creator, "Sets", "again", "", 5), ErrCollectionAlreadyExists)
	assert.ErrorIs(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""), ErrCollectionAlreadyExists)

	meta, err := l.GetCollection(creator, "Sets")
	require.NoError(t, err)
	assert.Equal(t, "Sets", meta.Name)
	assert.True(t, meta.HasMaximum)
	assert.Equal(t, uint64(2), meta.Maximum)
	assert.Equal(t, uint64(0), meta.Count)

	// same name under another creator is a different collection
	require.NoError(t, l.CreateUnlimitedCollection(holder, "Sets", "", ""))

	_, err = l.GetCollection(creator, "Missing")
	assert.ErrorIs(t, err, ErrCollectionNotPublished)
	_, err = l.GetCollection("0xNobody", "Sets")
	assert.ErrorIs(t, err, ErrRegistryNotPublished)
}

func TestCreateTokenType(t *testing.T) {
	l := newTestLedger(t)

	p := &TokenTypeParams{Collection: "Sets", Name: "A"}
	_, err := l.CreateUnlimitedToken(creator, p, 0)
	assert.ErrorIs(t, err, ErrRegistryNotPublished)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	_, err = l.CreateUnlimitedToken(creator, &TokenTypeParams{Collection: "Other", Name: "A"}, 0)
	assert.ErrorIs(t, err, ErrCollectionNotPublished)

	id := mustCreateToken(t, l, "A", 100, 10)
	_, err = l.CreateLimitedToken(creator, p, 100, 0)
	assert.ErrorIs(t, err, ErrTokenAlreadyExists)

	assert.Equal(t, uint64(10), l.BalanceOf(creator, id))
	supply, monitored, err := l.Supply(id)
	require.NoError(t, err)
	assert.True(t, monitored)
	assert.Equal(t, uint64(10), supply)

	meta, err := l.GetTokenType(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), meta.Maximum)
	assert.Equal(t, creator, meta.Royalty.Payee)

	coll, err := l.GetCollection(creator, "Sets")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), coll.Count)

	// initial amount above the cap is rejected up front
	_, err = l.CreateLimitedToken(creator, &TokenTypeParams{Collection: "Sets", Name: "B"}, 5, 6)
	assert.ErrorIs(t, err, ErrMintLimitExceeded)
}

// Scenario: a two-slot collection holds a capped token; minting past the cap
// aborts with no state change.
func TestMintLimit(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateLimitedCollection(creator, "Sets", "", "", 2))
	id := mustCreateToken(t, l, "A", 1, 1)

	assert.ErrorIs(t, l.Mint(creator, creator, id, 1), ErrMintLimitExceeded)
	supply, _, err := l.Supply(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), supply)
	assert.Equal(t, uint64(1), l.BalanceOf(creator, id))
}

func TestCollectionLimit(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateLimitedCollection(creator, "Sets", "", "", 1))
	mustCreateToken(t, l, "A", 10, 0)

	_, err := l.CreateLimitedToken(creator, &TokenTypeParams{Collection: "Sets", Name: "B"}, 10, 0)
	assert.ErrorIs(t, err, ErrCollectionLimitExceeded)

	coll, err := l.GetCollection(creator, "Sets")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), coll.Count)
}

func TestMintAuthorization(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "A", 100, 0)

	// an account with no registry at all
	assert.ErrorIs(t, l.Mint(holder, holder, id, 1), ErrRegistryNotPublished)

	// an account with a registry but no capability for this identity
	require.NoError(t, l.CreateUnlimitedCollection(holder, "Sets", "", ""))
	_, err := l.CreateUnlimitedToken(holder, &TokenTypeParams{Collection: "Sets", Name: "A"}, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Mint(holder, holder, id, 1), ErrNoMintCapability)

	// the creator holds its own capabilities and can mint to anyone
	require.NoError(t, l.Mint(creator, holder, id, 7))
	assert.Equal(t, uint64(7), l.BalanceOf(holder, id))
	supply, _, err := l.Supply(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), supply)
}

func TestBurn(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "A", 100, 10)

	require.NoError(t, l.Burn(creator, id, 4))
	assert.Equal(t, uint64(6), l.BalanceOf(creator, id))
	supply, _, err := l.Supply(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), supply)

	assert.ErrorIs(t, l.Burn(creator, id, 7), ErrInsufficientBalance)

	// a plain holder has no burn capability under its own registry
	require.NoError(t, l.DirectTransfer(creator, holder, id, 2))
	assert.ErrorIs(t, l.Burn(holder, id, 1), ErrRegistryNotPublished)
	require.NoError(t, l.CreateUnlimitedCollection(holder, "Sets", "", ""))
	assert.ErrorIs(t, l.Burn(holder, id, 1), ErrNoBurnCapability)
}

// Scenario: mint 5 to self, send 2 out, get 1 back. Balances 4/1, supply
// unchanged at 5.
func TestTransferConservation(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "X", 100, 5)

	require.NoError(t, l.DirectTransfer(creator, holder, id, 2))
	require.NoError(t, l.DirectTransfer(holder, creator, id, 1))

	assert.Equal(t, uint64(4), l.BalanceOf(creator, id))
	assert.Equal(t, uint64(1), l.BalanceOf(holder, id))
	supply, _, err := l.Supply(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), supply)
}

func TestTransferErrors(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "X", 100, 5)

	// sender without an inventory
	assert.ErrorIs(t, l.DirectTransfer("0xNobody", creator, id, 1), ErrStoreNotPublished)

	// sender with an inventory but no slot for this identity
	require.NoError(t, l.InitializeInventory(holder))
	assert.ErrorIs(t, l.DirectTransfer(holder, creator, id, 1), ErrBalanceNotPublished)

	// an initialized empty slot underflows instead
	require.NoError(t, l.InitializeSlotFor(holder, id))
	assert.ErrorIs(t, l.DirectTransfer(holder, creator, id, 1), ErrInsufficientBalance)

	assert.ErrorIs(t, l.DirectTransfer(creator, holder, id, 6), ErrInsufficientBalance)
	assert.Equal(t, uint64(5), l.BalanceOf(creator, id))
	assert.Equal(t, uint64(0), l.BalanceOf(holder, id))
}

func TestSelfTransfer(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "X", 100, 5)

	require.NoError(t, l.DirectTransfer(creator, creator, id, 3))
	assert.Equal(t, uint64(5), l.BalanceOf(creator, id))
}

// Addresses carrying the key separator must be rejected before anything is
// staged; a committed slot under such an address would corrupt every later
// balance scan.
func TestSeparatorAddressRejected(t *testing.T) {
	l := newTestLedger(t)
	evil := "evil" + KeySep + "addr"

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "X", 100, 5)

	assert.Error(t, l.DirectTransfer(creator, evil, id, 1))
	assert.Error(t, l.Mint(creator, evil, id, 1))
	assert.Error(t, l.InitializeSlotFor(evil, id))
	assert.Error(t, l.InitializeInventory(evil))
	assert.Error(t, l.CreateUnlimitedCollection(evil, "Sets", "", ""))

	// nothing was committed and the ledger still works
	assert.Equal(t, uint64(5), l.BalanceOf(creator, id))
	assert.Equal(t, uint64(0), l.BalanceOf(evil, id))
	supply, _, err := l.Supply(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), supply)

	require.NoError(t, l.DirectTransfer(creator, holder, id, 1))
	assert.Equal(t, uint64(1), l.BalanceOf(holder, id))
	l.CheckSelf()
}

func TestInitializeSlot(t *testing.T) {
	l := newTestLedger(t)
	id := testIdentity("A")

	require.NoError(t, l.InitializeInventory(holder))
	require.NoError(t, l.InitializeInventory(holder)) // idempotent

	require.NoError(t, l.InitializeSlotFor(holder, id))
	assert.ErrorIs(t, l.InitializeSlotFor(holder, id), ErrAlreadyHasBalance)
	assert.Equal(t, uint64(0), l.BalanceOf(holder, id))
}

func TestEvents(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	id := mustCreateToken(t, l, "A", 100, 3)
	require.NoError(t, l.Mint(creator, holder, id, 2))
	require.NoError(t, l.DirectTransfer(holder, creator, id, 1))

	events, err := l.Events(creator, LogCreate, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventCollectionCreated, events[0].Kind)
	assert.Equal(t, EventTokenTypeCreated, events[1].Kind)
	assert.Equal(t, uint64(0), events[0].Seq)
	assert.Equal(t, uint64(1), events[1].Seq)

	created, err := DecodeEventData[TokenTypeCreatedData](events[1])
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, uint64(3), created.InitialAmount)

	mints, err := l.Events(creator, LogMint, 0, 10)
	require.NoError(t, err)
	require.Len(t, mints, 1)
	assert.Equal(t, EventMintNotification, mints[0].Kind)
	minted, err := DecodeEventData[AmountData](mints[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(2), minted.Amount)

	deposits, err := l.Events(holder, LogDeposit, 0, 10)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	withdraws, err := l.Events(holder, LogWithdraw, 0, 10)
	require.NoError(t, err)
	require.Len(t, withdraws, 1)

	// paging
	page, err := l.Events(creator, LogCreate, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(1), page[0].Seq)
	page, err = l.Events(creator, LogCreate, 0, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(0), page[0].Seq)
}

func TestListQueries(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.CreateUnlimitedCollection(creator, "Sets", "", ""))
	require.NoError(t, l.CreateUnlimitedCollection(creator, "Art", "", ""))
	mustCreateToken(t, l, "B", 10, 0)
	mustCreateToken(t, l, "A", 10, 0)

	colls, err := l.ListCollections(creator)
	require.NoError(t, err)
	require.Len(t, colls, 2)
	assert.Equal(t, "Art", colls[0].Name)
	assert.Equal(t, "Sets", colls[1].Name)

	tokens, err := l.ListTokenTypes(creator)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "A", tokens[0].ID.Name)
	assert.Equal(t, "B", tokens[1].ID.Name)
}

func TestPersistenceReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	kv := openTestDB(t, path)
	l := NewLedger(kv, true)
	require.NoError(t, l.CreateLimitedCollection(creator, "Sets", "desc", "uri", 3))
	id := mustCreateToken(t, l, "A", 100, 10)
	require.NoError(t, l.Mint(creator, holder, id, 5))
	require.NoError(t, kv.Close())

	kv = openTestDB(t, path)
	defer kv.Close()
	l = NewLedger(kv, true)

	assert.Equal(t, uint64(10), l.BalanceOf(creator, id))
	assert.Equal(t, uint64(5), l.BalanceOf(holder, id))
	supply, monitored, err := l.Supply(id)
	require.NoError(t, err)
	assert.True(t, monitored)
	assert.Equal(t, uint64(15), supply)

	coll, err := l.GetCollection(creator, "Sets")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), coll.Count)
	assert.Equal(t, "desc", coll.Description)

	// reloaded registry still holds the capabilities and event counters
	require.NoError(t, l.Mint(creator, holder, id, 1))
	_, err = l.CreateUnlimitedToken(creator, &TokenTypeParams{Collection: "Sets", Name: "A"}, 0)
	assert.ErrorIs(t, err, ErrTokenAlreadyExists)

	events, err := l.Events(creator, LogCreate, 0, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	mints, err := l.Events(creator, LogMint, 0, 10)
	require.NoError(t, err)
	require.Len(t, mints, 2)
	assert.Equal(t, uint64(1), mints[1].Seq)

	l.CheckSelf()
}
