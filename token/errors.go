package token

// Every failure aborts the whole operation; nothing is committed and the
// categorized code is surfaced to the caller.

type ErrorCategory int

const (
	CategoryNotFound ErrorCategory = iota
	CategoryAlreadyExists
	CategoryLimitExceeded
	CategoryAuthorization
	CategoryValueIntegrity
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryNotFound:
		return "not-found"
	case CategoryAlreadyExists:
		return "already-exists"
	case CategoryLimitExceeded:
		return "limit-exceeded"
	case CategoryAuthorization:
		return "authorization"
	case CategoryValueIntegrity:
		return "value-integrity"
	}
	return "unknown"
}

type Error struct {
	Code     string
	Category ErrorCategory
	msg      string
}

func (e *Error) Error() string {
	return e.msg
}

func newError(category ErrorCategory, code, msg string) *Error {
	return &Error{Code: code, Category: category, msg: msg}
}

var (
	// not-found
	ErrRegistryNotPublished   = newError(CategoryNotFound, "RegistryNotPublished", "collection registry not published for this account")
	ErrStoreNotPublished      = newError(CategoryNotFound, "StoreNotPublished", "holder inventory not published for this account")
	ErrCollectionNotPublished = newError(CategoryNotFound, "CollectionNotPublished", "collection not published under this creator")
	ErrTokenNotPublished      = newError(CategoryNotFound, "TokenNotPublished", "token type not published under this identity")
	ErrBalanceNotPublished    = newError(CategoryNotFound, "BalanceNotPublished", "no balance slot for this identity")

	// already-exists
	ErrAlreadyHasBalance       = newError(CategoryAlreadyExists, "AlreadyHasBalance", "balance slot already exists for this identity")
	ErrCollectionAlreadyExists = newError(CategoryAlreadyExists, "CollectionAlreadyExists", "collection with this name already registered")
	ErrTokenAlreadyExists      = newError(CategoryAlreadyExists, "TokenAlreadyExists", "token type with this identity already registered")

	// limit-exceeded
	ErrCollectionLimitExceeded = newError(CategoryLimitExceeded, "CollectionLimitExceeded", "collection maximum token type count exceeded")
	ErrMintLimitExceeded       = newError(CategoryLimitExceeded, "MintLimitExceeded", "token maximum supply exceeded")

	// authorization
	ErrNoMintCapability = newError(CategoryAuthorization, "NoMintCapability", "no mint capability for this identity")
	ErrNoBurnCapability = newError(CategoryAuthorization, "NoBurnCapability", "no burn capability for this identity")

	// value-integrity
	ErrInvalidMerge              = newError(CategoryValueIntegrity, "InvalidMerge", "cannot merge value units of different identities")
	ErrSplitAmountExceedsBalance = newError(CategoryValueIntegrity, "SplitAmountExceedsBalance", "split amount exceeds unit balance")
	ErrInsufficientBalance       = newError(CategoryValueIntegrity, "InsufficientBalance", "withdraw amount exceeds balance")
	ErrAmountOverflow            = newError(CategoryValueIntegrity, "AmountOverflow", "amount arithmetic overflow")
)
