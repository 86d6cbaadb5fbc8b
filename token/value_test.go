package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity(name string) AssetIdentity {
	return NewAssetIdentity("creator1", "Sets", name)
}

func TestSplitMergeRoundTrip(t *testing.T) {
	id := testIdentity("A")
	unit := newValueUnit(id, 100)

	part, err := unit.Split(30)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), unit.Amount())
	assert.Equal(t, uint64(30), part.Amount())
	assert.Equal(t, id, part.Identity())

	require.NoError(t, unit.Merge(part))
	assert.Equal(t, uint64(100), unit.Amount())
	assert.Equal(t, id, unit.Identity())
}

func TestSplitWholeAndZero(t *testing.T) {
	unit := newValueUnit(testIdentity("A"), 10)

	zero, err := unit.Split(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), zero.Amount())
	assert.Equal(t, uint64(10), unit.Amount())

	all, err := unit.Split(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), all.Amount())
	assert.Equal(t, uint64(0), unit.Amount())
}

func TestSplitExceedsBalance(t *testing.T) {
	unit := newValueUnit(testIdentity("A"), 10)
	_, err := unit.Split(11)
	assert.ErrorIs(t, err, ErrSplitAmountExceedsBalance)
	assert.Equal(t, uint64(10), unit.Amount())
}

func TestMergeDifferentIdentities(t *testing.T) {
	a := newValueUnit(testIdentity("A"), 5)
	b := newValueUnit(testIdentity("B"), 5)
	assert.ErrorIs(t, a.Merge(b), ErrInvalidMerge)
	assert.Equal(t, uint64(5), a.Amount())
	assert.Equal(t, uint64(5), b.Amount())
}

func TestMergeOverflow(t *testing.T) {
	a := newValueUnit(testIdentity("A"), ^uint64(0))
	b := newValueUnit(testIdentity("A"), 1)
	assert.ErrorIs(t, a.Merge(b), ErrAmountOverflow)
	assert.Equal(t, uint64(1), b.Amount())
}

func TestUseAfterConsumePanics(t *testing.T) {
	a := newValueUnit(testIdentity("A"), 5)
	b := newValueUnit(testIdentity("A"), 5)
	require.NoError(t, a.Merge(b))
	assert.Equal(t, uint64(10), a.Amount())

	assert.Panics(t, func() { b.Amount() })
	assert.Panics(t, func() { _, _ = b.Split(1) })
	assert.Panics(t, func() { _ = a.Merge(b) })
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, CategoryNotFound, ErrBalanceNotPublished.Category)
	assert.Equal(t, CategoryAlreadyExists, ErrTokenAlreadyExists.Category)
	assert.Equal(t, CategoryLimitExceeded, ErrMintLimitExceeded.Category)
	assert.Equal(t, CategoryAuthorization, ErrNoMintCapability.Category)
	assert.Equal(t, CategoryValueIntegrity, ErrInsufficientBalance.Category)
	assert.Equal(t, "value-integrity", CategoryValueIntegrity.String())
}

func TestIdentityKeyRoundTrip(t *testing.T) {
	id := NewAssetIdentity("creator1", "Sets", "Token A")
	parsed, err := ParseIdentityKey(id.Key())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	assert.Error(t, NewAssetIdentity("", "Sets", "A").validate())
	assert.Error(t, NewAssetIdentity("creator1", "", "A").validate())
	assert.Error(t, NewAssetIdentity("creator1", "Sets", "bad\x1fname").validate())
}
