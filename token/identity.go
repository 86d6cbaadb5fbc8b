package token

import (
	"fmt"
	"strings"
)

// KeySep joins the components of composite storage keys. Names and addresses
// are rejected if they contain it, so encoded keys stay parseable.
const KeySep = "\x1f"

const MaxNameLen = 128

// AssetIdentity is the global name of a token type: the creator's address plus
// the collection and token names the creator chose. Pure value type, equality
// by value.
type AssetIdentity struct {
	Creator    string `json:"creator"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
}

func NewAssetIdentity(creator, collection, name string) AssetIdentity {
	return AssetIdentity{Creator: creator, Collection: collection, Name: name}
}

// Key returns the canonical storage key of the identity.
func (id AssetIdentity) Key() string {
	return id.Creator + KeySep + id.Collection + KeySep + id.Name
}

func (id AssetIdentity) String() string {
	return fmt.Sprintf("%s::%s::%s", id.Creator, id.Collection, id.Name)
}

func ParseIdentityKey(key string) (AssetIdentity, error) {
	parts := strings.Split(key, KeySep)
	if len(parts) != 3 {
		return AssetIdentity{}, fmt.Errorf("malformed identity key %q", key)
	}
	return AssetIdentity{Creator: parts[0], Collection: parts[1], Name: parts[2]}, nil
}

func (id AssetIdentity) validate() error {
	if err := validateAddress(id.Creator); err != nil {
		return err
	}
	if err := validateName(id.Collection); err != nil {
		return err
	}
	return validateName(id.Name)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("name %q exceeds %d bytes", name, MaxNameLen)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("name %q contains control characters", name)
		}
	}
	return nil
}

func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	for _, r := range addr {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("address %q contains control characters", addr)
		}
	}
	return nil
}
