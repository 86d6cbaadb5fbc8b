package common

import "errors"

var (
	ErrKeyNotFound = errors.New("Key not found")
)

type ReadBatch interface {
	Get(key []byte) ([]byte, error)    // returns a fresh copy of the value
	GetRef(key []byte) ([]byte, error) // reference into the backend, do not retain
}

type WriteBatch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Flush() error
	Close()
}

// Every call is a complete transaction.
type KVDB interface {
	DropAll() error
	DropPrefix([]byte) error

	Read(key []byte) ([]byte, error)
	Write(key, value []byte) error
	Delete(key []byte) error
	Close() error

	NewWriteBatch() WriteBatch

	// iterate keys under prefix
	BatchRead(prefix []byte, reverse bool, r func(k, v []byte) error) error
	BatchReadV2(prefix, seekKey []byte, reverse bool, r func(k, v []byte) error) error

	// multiple reads against one snapshot
	View(func(ReadBatch) error) error
}
