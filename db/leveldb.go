package db

import (
	"bytes"
	"errors"

	"github.com/sat20-labs/tokenledger/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type levelDB struct {
	path string
	db   *leveldb.DB
}

func NewLevelDB(path string) common.KVDB {
	if path == "" {
		path = "./data/db"
	}
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		common.Log.Errorf("leveldb.OpenFile %s failed, %v", path, err)
		return nil
	}
	return &levelDB{path: path, db: db}
}

func (p *levelDB) Read(key []byte) ([]byte, error) {
	val, err := p.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, common.ErrKeyNotFound
		}
		return nil, err
	}
	return append([]byte{}, val...), nil
}

func (p *levelDB) Write(key, value []byte) error {
	return p.db.Put(key, value, nil)
}

func (p *levelDB) Delete(key []byte) error {
	return p.db.Delete(key, nil)
}

func (p *levelDB) DropPrefix(prefix []byte) error {
	wb := p.NewWriteBatch()
	defer wb.Close()

	err := p.iterForwardWithPrefix(prefix, nil, func(k, v []byte) error {
		return wb.Delete(k)
	})
	if err != nil {
		return err
	}
	return wb.Flush()
}

func (p *levelDB) DropAll() error {
	return p.DropPrefix(nil)
}

func (p *levelDB) Close() error {
	return p.db.Close()
}

func (p *levelDB) iterForwardWithPrefix(prefix, start []byte, r func(k, v []byte) error) error {
	var itUtil *util.Range
	if len(prefix) > 0 {
		itUtil = util.BytesPrefix(prefix)
	}
	it := p.db.NewIterator(itUtil, nil)
	defer it.Release()

	if len(start) > 0 {
		it.Seek(start)
	} else if len(prefix) > 0 {
		it.Seek(prefix)
	} else {
		it.First()
	}

	for ; it.Valid(); it.Next() {
		k := it.Key()
		if len(prefix) > 0 && !bytes.HasPrefix(k, prefix) {
			break
		}
		if err := r(append([]byte{}, k...), append([]byte{}, it.Value()...)); err != nil {
			return err
		}
	}
	return it.Error()
}

func (p *levelDB) BatchRead(prefix []byte, reverse bool, r func(k, v []byte) error) error {
	return p.BatchReadV2(prefix, nil, reverse, r)
}

func (p *levelDB) BatchReadV2(prefix, seekKey []byte, reverse bool, r func(k, v []byte) error) error {
	start := seekKey
	if len(start) == 0 && len(prefix) > 0 {
		start = prefix
	}
	if !reverse {
		return p.iterForwardWithPrefix(prefix, start, r)
	}

	// goleveldb has no native reverse iteration under a prefix; buffer and replay.
	var kvs [][2][]byte
	if err := p.iterForwardWithPrefix(prefix, nil, func(k, v []byte) error {
		kvs = append(kvs, [2][]byte{k, v})
		return nil
	}); err != nil {
		return err
	}
	for i := len(kvs) - 1; i >= 0; i-- {
		if len(seekKey) > 0 && bytes.Compare(kvs[i][0], seekKey) > 0 {
			continue
		}
		if err := r(kvs[i][0], kvs[i][1]); err != nil {
			return err
		}
	}
	return nil
}

type levelReadBatch struct {
	snap *leveldb.Snapshot
}

func (p *levelReadBatch) Get(key []byte) ([]byte, error) {
	val, err := p.snap.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, common.ErrKeyNotFound
		}
		return nil, err
	}
	return append([]byte{}, val...), nil
}

func (p *levelReadBatch) GetRef(key []byte) ([]byte, error) {
	return p.Get(key)
}

func (p *levelDB) View(fn func(txn common.ReadBatch) error) error {
	snap, err := p.db.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return fn(&levelReadBatch{snap: snap})
}

type levelWriteBatch struct {
	db     *leveldb.DB
	batch  *leveldb.Batch
	closed bool
}

func (p *levelWriteBatch) Put(key, value []byte) error {
	if p.closed {
		return errors.New("writebatch closed")
	}
	p.batch.Put(key, value)
	return nil
}

func (p *levelWriteBatch) Delete(key []byte) error {
	if p.closed {
		return errors.New("writebatch closed")
	}
	p.batch.Delete(key)
	return nil
}

func (p *levelWriteBatch) Flush() error {
	if p.closed {
		return errors.New("writebatch closed")
	}
	return p.db.Write(p.batch, nil)
}

func (p *levelWriteBatch) Close() {
	p.closed = true
	p.batch = nil
}

func (p *levelDB) NewWriteBatch() common.WriteBatch {
	return &levelWriteBatch{db: p.db, batch: &leveldb.Batch{}}
}
