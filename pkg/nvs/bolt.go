package nvs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	bolt "go.etcd.io/bbolt"
)

var metaBucket = []byte("_nvs")
var versionKey = []byte("version")

// BoltPartition stores entries in a bbolt file, one bucket per namespace.
// Each write is its own fsynced transaction.
type BoltPartition struct {
	Path string
	// MaxEntries limits the number of entries, 0 for unlimited.
	MaxEntries int

	lock sync.Mutex
	db   *bolt.DB
}

// NewBoltPartition creates a partition backed by the file at path.
func NewBoltPartition(path string) *BoltPartition {
	return &BoltPartition{Path: path}
}

// Init implements Partition. The file stays open when the format check
// fails so that Erase can reformat it.
func (p *BoltPartition) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.db == nil {
		db, err := bolt.Open(p.Path, 0600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return fmt.Errorf("open %s: %w", p.Path, err)
		}
		p.db = db
	}
	return p.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if v := meta.Get(versionKey); len(v) == 4 {
			if binary.LittleEndian.Uint32(v) > FormatVersion {
				return ErrNewVersionFound
			}
		} else if err = putVersion(meta); err != nil {
			return err
		}
		if p.MaxEntries > 0 && countBolt(tx) > p.MaxEntries {
			return ErrNoFreePages
		}
		return nil
	})
}

// Erase implements Partition. A file which cannot be opened is removed.
func (p *BoltPartition) Erase() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.db == nil {
		glog.Warningf("nvs: removing %s", p.Path)
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return p.db.Update(func(tx *bolt.Tx) error {
		var names [][]byte
		tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, append([]byte(nil), name...))
			return nil
		})
		for _, name := range names {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		meta, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return err
		}
		return putVersion(meta)
	})
}

// Open implements Partition.
func (p *BoltPartition) Open(namespace string) (Handle, error) {
	if p.database() == nil {
		return nil, ErrNotInitialized
	}
	return newHandle(namespace, p)
}

// Close implements Partition.
func (p *BoltPartition) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *BoltPartition) database() *bolt.DB {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.db
}

func (p *BoltPartition) get(ns, key string) (e Entry, err error) {
	db := p.database()
	if db == nil {
		return e, ErrNotInitialized
	}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		e.Key = key
		return e.UnmarshalBinary(v)
	})
	return
}

func (p *BoltPartition) put(ns string, e Entry) error {
	db := p.database()
	if db == nil {
		return ErrNotInitialized
	}
	val, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(ns))
		if err != nil {
			return err
		}
		if p.MaxEntries > 0 && b.Get([]byte(e.Key)) == nil && countBolt(tx) >= p.MaxEntries {
			return ErrNoFreePages
		}
		return b.Put([]byte(e.Key), val)
	})
}

func (p *BoltPartition) delete(ns, key string) error {
	db := p.database()
	if db == nil {
		return ErrNotInitialized
	}
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		if b == nil || b.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(key))
	})
}

func (p *BoltPartition) list(ns string) (entries []Entry, err error) {
	db := p.database()
	if db == nil {
		return nil, ErrNotInitialized
	}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ns))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			e := Entry{Key: string(k)}
			if err := e.UnmarshalBinary(v); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	return
}

func (p *BoltPartition) sync() error {
	db := p.database()
	if db == nil {
		return ErrNotInitialized
	}
	return db.Sync()
}

func putVersion(meta *bolt.Bucket) error {
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], FormatVersion)
	return meta.Put(versionKey, v[:])
}

func countBolt(tx *bolt.Tx) (n int) {
	tx.ForEach(func(name []byte, b *bolt.Bucket) error {
		if string(name) == string(metaBucket) {
			return nil
		}
		return b.ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	return
}
