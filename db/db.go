package db

import (
	"bytes"
	"fmt"

	"github.com/sat20-labs/tokenledger/common"
)

// Open creates a KVDB with the given engine. Engine "pebble" is the default.
func Open(engine, path string) (common.KVDB, error) {
	switch engine {
	case "", "pebble":
		if kv := NewPebbleDB(path); kv != nil {
			return kv, nil
		}
	case "leveldb":
		if kv := NewLevelDB(path); kv != nil {
			return kv, nil
		}
	case "bbolt", "bolt":
		if kv := NewBoltDB(path); kv != nil {
			return kv, nil
		}
	default:
		return nil, fmt.Errorf("unknown db engine %s", engine)
	}
	return nil, fmt.Errorf("open %s db on %s failed", engine, path)
}

func IterateRangeInDB(db common.KVDB, prefix, startKey, endKey []byte,
	processFunc func(key, value []byte) error) error {
	return db.BatchReadV2(prefix, startKey, false, func(k, v []byte) error {
		if len(endKey) > 0 && bytes.Compare(k, endKey) > 0 {
			return fmt.Errorf("reach the endkey") // terminates the iteration
		}
		return processFunc(k, v)
	})
}
