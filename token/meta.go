package token

// CollectionMeta describes one named collection. Count only ever grows; it is
// bounded by Maximum when HasMaximum is set.
type CollectionMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URI         string `json:"uri"`
	Count       uint64 `json:"count"`
	HasMaximum  bool   `json:"hasMaximum"`
	Maximum     uint64 `json:"maximum,omitempty"`
}

// Royalty is recorded per token type; the payee defaults to the creator.
type Royalty struct {
	Payee           string `json:"payee"`
	RateBasisPoints uint64 `json:"rateBasisPoints"`
}

// TokenTypeMeta is created exactly once per identity. Supply is maintained
// only when MonitorSupply is set, and is bounded by Maximum when HasMaximum
// is set.
type TokenTypeMeta struct {
	ID            AssetIdentity `json:"id"`
	Description   string        `json:"description"`
	URI           string        `json:"uri"`
	MonitorSupply bool          `json:"monitorSupply"`
	Supply        uint64        `json:"supply"`
	HasMaximum    bool          `json:"hasMaximum"`
	Maximum       uint64        `json:"maximum,omitempty"`
	Royalty       Royalty       `json:"royalty"`
}

// Capabilities are opaque proof-of-authorization records. They never leave
// the registry that stores them; possession is checked by lookup under the
// caller's own registry, not by passing the object around.
type MintCapability struct {
	TokenID AssetIdentity `json:"tokenId"`
}

type BurnCapability struct {
	TokenID AssetIdentity `json:"tokenId"`
}
