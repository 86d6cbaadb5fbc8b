package db

import (
	"bytes"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/sat20-labs/tokenledger/common"
)

const (
	maxBatchSize = 256 << 20 // flush threshold for a single write batch
	maxItemSize  = 64 << 20  // oversized records are committed on their own
)

type pebbleDB struct {
	path string
	db   *pebble.DB
}

func defaultOptions() *pebble.Options {
	cache := pebble.NewCache(512 << 20)

	return &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: 50000,

		MemTableSize:                64 << 20,
		MemTableStopWritesThreshold: 3,

		L0CompactionThreshold: 6,
		L0StopWritesThreshold: 12,

		LBaseMaxBytes: 1 << 30,

		MaxConcurrentCompactions: func() int { return 2 },

		Levels: func() []pebble.LevelOptions {
			lvls := make([]pebble.LevelOptions, 7)
			for i := range lvls {
				lvls[i] = pebble.LevelOptions{
					TargetFileSize: 128 << 20,
					BlockSize:      8 << 10, // point lookups dominate
					FilterPolicy:   bloom.FilterPolicy(10),
					FilterType:     pebble.TableFilter,
				}
			}
			return lvls
		}(),
	}
}

func openPebbleDB(filepath string, o *pebble.Options) (*pebble.DB, error) {
	if o == nil {
		o = defaultOptions()
	}
	return pebble.Open(filepath, o)
}

func NewPebbleDB(path string) common.KVDB {
	db, err := initPebbleDB(path)
	if err != nil {
		common.Log.Errorf("initPebbleDB failed, %v", err)
		return nil
	}
	kvdb := pebbleDB{path: path, db: db}
	return &kvdb
}

func initPebbleDB(path string) (*pebble.DB, error) {
	if path == "" {
		path = "./data/db"
	}
	return openPebbleDB(path, nil)
}

func (p *pebbleDB) get(key []byte) ([]byte, error) {
	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, common.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()
	return append([]byte{}, val...), nil
}

func (p *pebbleDB) Read(key []byte) ([]byte, error) {
	return p.get(key)
}

func (p *pebbleDB) Write(key, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *pebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

func (p *pebbleDB) DropPrefix(prefix []byte) error {
	wb := p.NewWriteBatch()
	defer wb.Close()

	err := p.BatchRead(prefix, false, func(k, v []byte) error {
		wb.Delete(k)
		return nil
	})
	if err != nil {
		return err
	}
	return wb.Flush()
}

func (p *pebbleDB) DropAll() error {
	wb := p.NewWriteBatch()
	defer wb.Close()

	err := p.BatchRead(nil, false, func(k, v []byte) error {
		wb.Delete(k)
		return nil
	})
	if err != nil {
		return err
	}
	return wb.Flush()
}

func (p *pebbleDB) Close() error {
	return p.db.Close()
}

// nextPrefix returns the smallest key lexicographically greater than every key
// with the given prefix, usable as an exclusive upper bound. A prefix of all
// 0xFF bytes has no upper bound; callers must re-check HasPrefix in that case.
func nextPrefix(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	out := append([]byte{}, prefix...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

func (p *pebbleDB) iter(prefix, start []byte, reverse bool, r func(k, v []byte) error) error {
	var lower, upper []byte
	if len(prefix) > 0 {
		lower = prefix
		upper = nextPrefix(prefix)
	}

	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return err
	}
	defer it.Close()

	if reverse {
		var ok bool
		if len(start) > 0 {
			if len(lower) > 0 && bytes.Compare(start, lower) < 0 {
				start = lower
			}
			if upper != nil && bytes.Compare(start, upper) >= 0 {
				start = upper
			}
			ok = it.SeekLT(start)
			if !ok {
				ok = it.Last()
			}
		} else {
			ok = it.Last()
		}

		for ; ok; ok = it.Prev() {
			k := it.Key()
			if len(prefix) > 0 && upper == nil && !bytes.HasPrefix(k, prefix) {
				break
			}
			if err := r(append([]byte{}, k...), append([]byte{}, it.Value()...)); err != nil {
				return err
			}
		}
		return it.Error()
	}

	var ok bool
	if len(start) > 0 {
		ok = it.SeekGE(start)
	} else if len(prefix) > 0 {
		ok = it.SeekGE(prefix)
	} else {
		ok = it.First()
	}
	for ; ok; ok = it.Next() {
		k := it.Key()
		if len(prefix) > 0 && upper == nil && !bytes.HasPrefix(k, prefix) {
			break
		}
		if err := r(append([]byte{}, k...), append([]byte{}, it.Value()...)); err != nil {
			return err
		}
	}
	return it.Error()
}

func (p *pebbleDB) BatchRead(prefix []byte, reverse bool, r func(k, v []byte) error) error {
	return p.iter(prefix, nil, reverse, r)
}

func (p *pebbleDB) BatchReadV2(prefix, seekKey []byte, reverse bool, r func(k, v []byte) error) error {
	return p.iter(prefix, seekKey, reverse, r)
}

type pebbleReadBatch struct {
	snap *pebble.Snapshot
	it   *pebble.Iterator
}

func (p *pebbleReadBatch) Get(key []byte) ([]byte, error) {
	if p.it.SeekGE(key) && bytes.Equal(p.it.Key(), key) {
		return append([]byte{}, p.it.Value()...), nil
	}
	return nil, common.ErrKeyNotFound
}

func (p *pebbleReadBatch) GetRef(key []byte) ([]byte, error) {
	if p.it.SeekGE(key) && bytes.Equal(p.it.Key(), key) {
		return p.it.Value(), nil
	}
	return nil, common.ErrKeyNotFound
}

func (p *pebbleDB) View(fn func(txn common.ReadBatch) error) error {
	snap := p.db.NewSnapshot()
	defer snap.Close()

	it, err := snap.NewIter(nil)
	if err != nil {
		return err
	}
	defer it.Close()

	rb := pebbleReadBatch{
		snap: snap,
		it:   it,
	}
	return fn(&rb)
}

type pebbleWriteBatch struct {
	db     *pebble.DB
	batch  *pebble.Batch
	closed bool
}

func (p *pebbleWriteBatch) Put(key, value []byte) error {
	if p.closed {
		return errors.New("writebatch closed")
	}

	itemSize := len(key) + len(value)
	if itemSize >= maxItemSize {
		b := p.db.NewBatch()
		defer b.Close()
		if err := b.Set(key, value, nil); err != nil {
			return err
		}
		return b.Commit(pebble.Sync)
	}

	if err := p.ensureCapacity(itemSize); err != nil {
		return err
	}
	return p.batch.Set(key, value, nil)
}

func (p *pebbleWriteBatch) Delete(key []byte) error {
	if p.closed {
		return errors.New("writebatch closed")
	}

	if err := p.ensureCapacity(len(key)); err != nil {
		return err
	}
	return p.batch.Delete(key, nil)
}

func (p *pebbleWriteBatch) Flush() error {
	if p.closed {
		return errors.New("writebatch closed")
	}
	return p.batch.Commit(pebble.Sync)
}

func (p *pebbleWriteBatch) Close() {
	if p.closed {
		return
	}
	p.closed = true
	_ = p.batch.Close()
}

func (p *pebbleWriteBatch) ensureCapacity(extra int) error {
	if p.closed {
		return errors.New("writebatch closed")
	}

	batchSize := p.batch.Len()
	if batchSize+extra >= maxBatchSize {
		if err := p.batch.Commit(pebble.Sync); err != nil {
			return err
		}
		p.batch.Close()
		p.batch = p.db.NewBatch()
	}
	return nil
}

func (p *pebbleDB) NewWriteBatch() common.WriteBatch {
	return &pebbleWriteBatch{db: p.db, batch: p.db.NewBatch()}
}
