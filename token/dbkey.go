package token

import (
	"fmt"
	"strings"
)

const (
	DB_PREFIX_REGISTRY   = "r-"  // r-<creator> -> RegistryState
	DB_PREFIX_COLLECTION = "c-"  // c-<creator>|<collection> -> CollectionMeta
	DB_PREFIX_TOKENTYPE  = "t-"  // t-<creator>|<collection>|<name> -> TokenTypeMeta
	DB_PREFIX_MINTCAP    = "mc-" // mc-<owner>|<idkey> -> MintCapability
	DB_PREFIX_BURNCAP    = "bc-" // bc-<owner>|<idkey> -> BurnCapability
	DB_PREFIX_INVENTORY  = "i-"  // i-<owner> -> InventoryState
	DB_PREFIX_BALANCE    = "b-"  // b-<owner>|<idkey> -> amount
	DB_PREFIX_EVENT      = "e-"  // e-<owner>|<log>|<seq> -> Event
)

// Per-resource log names used in event keys.
const (
	LogCreate   = "create"
	LogMint     = "mint"
	LogDeposit  = "deposit"
	LogWithdraw = "withdraw"
)

func GetRegistryKey(creator string) string {
	return DB_PREFIX_REGISTRY + creator
}

func GetCollectionKey(creator, name string) string {
	return DB_PREFIX_COLLECTION + creator + KeySep + name
}

func GetCollectionPrefix(creator string) string {
	return DB_PREFIX_COLLECTION + creator + KeySep
}

func GetTokenTypeKey(id AssetIdentity) string {
	return DB_PREFIX_TOKENTYPE + id.Key()
}

func GetTokenTypePrefix(creator string) string {
	return DB_PREFIX_TOKENTYPE + creator + KeySep
}

func GetMintCapKey(owner string, id AssetIdentity) string {
	return DB_PREFIX_MINTCAP + owner + KeySep + id.Key()
}

func GetMintCapPrefix(owner string) string {
	return DB_PREFIX_MINTCAP + owner + KeySep
}

func GetBurnCapKey(owner string, id AssetIdentity) string {
	return DB_PREFIX_BURNCAP + owner + KeySep + id.Key()
}

func GetBurnCapPrefix(owner string) string {
	return DB_PREFIX_BURNCAP + owner + KeySep
}

func GetInventoryKey(owner string) string {
	return DB_PREFIX_INVENTORY + owner
}

func GetBalanceKey(owner string, id AssetIdentity) string {
	return DB_PREFIX_BALANCE + owner + KeySep + id.Key()
}

func GetBalancePrefix(owner string) string {
	return DB_PREFIX_BALANCE + owner + KeySep
}

func GetEventKey(owner, logName string, seq uint64) string {
	return fmt.Sprintf("%s%s%s%s%s%016x", DB_PREFIX_EVENT, owner, KeySep, logName, KeySep, seq)
}

func GetEventPrefix(owner, logName string) string {
	return DB_PREFIX_EVENT + owner + KeySep + logName + KeySep
}

func ParseBalanceKey(key string) (owner string, id AssetIdentity, err error) {
	body, ok := strings.CutPrefix(key, DB_PREFIX_BALANCE)
	if !ok {
		return "", AssetIdentity{}, fmt.Errorf("not a balance key %q", key)
	}
	parts := strings.SplitN(body, KeySep, 2)
	if len(parts) != 2 {
		return "", AssetIdentity{}, fmt.Errorf("malformed balance key %q", key)
	}
	id, err = ParseIdentityKey(parts[1])
	if err != nil {
		return "", AssetIdentity{}, err
	}
	return parts[0], id, nil
}

func ParseCollectionKey(key string) (creator, name string, err error) {
	body, ok := strings.CutPrefix(key, DB_PREFIX_COLLECTION)
	if !ok {
		return "", "", fmt.Errorf("not a collection key %q", key)
	}
	parts := strings.SplitN(body, KeySep, 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed collection key %q", key)
	}
	return parts[0], parts[1], nil
}
