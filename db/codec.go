package db

import (
	"github.com/sat20-labs/tokenledger/common"
	"github.com/vmihailenco/msgpack/v5"
)

// Records are stored msgpack-encoded.

func EncodeBytes(value interface{}) ([]byte, error) {
	return msgpack.Marshal(value)
}

func DecodeBytes(data []byte, target interface{}) error {
	return msgpack.Unmarshal(data, target)
}

func SetDB(key []byte, data interface{}, wb common.WriteBatch) error {
	buf, err := msgpack.Marshal(data)
	if err != nil {
		return err
	}
	return wb.Put(key, buf)
}

func SetRawDB(key []byte, data []byte, wb common.WriteBatch) error {
	return wb.Put(key, data)
}

func GetValueFromDB(key []byte, v interface{}, db common.KVDB) error {
	buf, err := db.Read(key)
	if err != nil {
		return err
	}
	return DecodeBytes(buf, v)
}

func GetValueFromTxn(key []byte, v interface{}, txn common.ReadBatch) error {
	buf, err := txn.Get(key)
	if err != nil {
		return err
	}
	return DecodeBytes(buf, v)
}

func GetValueFromDB2[T any](key []byte, db common.KVDB) (*T, error) {
	var ret T
	buf, err := db.Read(key)
	if err != nil {
		return nil, err
	}
	if err := DecodeBytes(buf, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func GetRawValueFromDB(key []byte, db common.KVDB) ([]byte, error) {
	return db.Read(key)
}

func DeleteInDB(key []byte, db common.KVDB) error {
	return db.Delete(key)
}
