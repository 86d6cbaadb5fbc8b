package token

// CollectionRegistry is the per-creator resource. At most one exists per
// account, created lazily by the first createCollection and never destroyed.
// All maps are keyed so that possession checks are plain lookups.
type CollectionRegistry struct {
	Creator     string
	Collections map[string]*CollectionMeta // collection name -> meta
	TokenTypes  map[string]*TokenTypeMeta  // identity key -> meta
	MintCaps    map[string]*MintCapability // identity key -> capability
	BurnCaps    map[string]*BurnCapability // identity key -> capability

	CreateEvents *EventLog // CollectionCreated, TokenTypeCreated
	MintEvents   *EventLog // MintNotification
}

func newCollectionRegistry(creator string) *CollectionRegistry {
	return &CollectionRegistry{
		Creator:      creator,
		Collections:  make(map[string]*CollectionMeta),
		TokenTypes:   make(map[string]*TokenTypeMeta),
		MintCaps:     make(map[string]*MintCapability),
		BurnCaps:     make(map[string]*BurnCapability),
		CreateEvents: &EventLog{},
		MintEvents:   &EventLog{},
	}
}

func (r *CollectionRegistry) collection(name string) *CollectionMeta {
	return r.Collections[name]
}

func (r *CollectionRegistry) tokenType(id AssetIdentity) *TokenTypeMeta {
	return r.TokenTypes[id.Key()]
}

func (r *CollectionRegistry) hasMintCap(id AssetIdentity) bool {
	return r.MintCaps[id.Key()] != nil
}

func (r *CollectionRegistry) hasBurnCap(id AssetIdentity) bool {
	return r.BurnCaps[id.Key()] != nil
}

// installTokenType registers the meta plus both capabilities for a freshly
// created identity. The caller has already checked for duplicates.
func (r *CollectionRegistry) installTokenType(meta *TokenTypeMeta) {
	key := meta.ID.Key()
	r.TokenTypes[key] = meta
	r.MintCaps[key] = &MintCapability{TokenID: meta.ID}
	r.BurnCaps[key] = &BurnCapability{TokenID: meta.ID}
}

// RegistryState is the persisted existence marker plus event counters.
type RegistryState struct {
	Creator       string `json:"creator"`
	CreateCounter uint64 `json:"createCounter"`
	MintCounter   uint64 `json:"mintCounter"`
}
