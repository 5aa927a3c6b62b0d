package autounlock

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/verdantlabs/walletgate/internal/util"
)

const (
	bucketName = "autounlock"
	// sealInfo namespaces the hkdf derivation so the same device secret
	// can safely serve other stores later.
	sealInfo = "walletgate:autounlock:v1"
)

// BoltStore keeps session-key records in a local bbolt database, sealed
// at rest with ChaCha20-Poly1305. The sealing key is derived from an
// externally provided device secret — the database file alone is not
// enough to recover session keys.
type BoltStore struct {
	db  *bbolt.DB
	key []byte
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore wraps an open bbolt database. deviceSecret seeds the
// sealing key and must be at least 16 bytes.
func NewBoltStore(db *bbolt.DB, deviceSecret []byte) (*BoltStore, error) {
	if len(deviceSecret) < 16 {
		return nil, fmt.Errorf("device secret must be at least 16 bytes, got %d", len(deviceSecret))
	}
	key, err := util.HKDF(deviceSecret, nil, []byte(sealInfo))
	if err != nil {
		return nil, fmt.Errorf("deriving seal key: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltStore{db: db, key: key}, nil
}

// NewBoltStoreFromFile opens (or creates) a bbolt database at path.
func NewBoltStoreFromFile(path string, deviceSecret []byte) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewBoltStore(db, deviceSecret)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database and wipes the sealing key.
func (s *BoltStore) Close() error {
	util.WipeBytes(s.key)
	return s.db.Close()
}

func (s *BoltStore) Put(walletID string, rec SessionKeyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	sealed, err := util.Seal(data, s.key, []byte(walletID))
	if err != nil {
		return fmt.Errorf("sealing record: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(walletID), sealed)
	})
}

func (s *BoltStore) Get(walletID string, now time.Time) (*SessionKeyRecord, error) {
	var sealed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket([]byte(bucketName)).Get([]byte(walletID)); data != nil {
			sealed = util.CopyBytes(data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sealed == nil {
		return nil, nil
	}

	rec, ok := s.open(walletID, sealed)
	if !ok || !rec.valid() || rec.expired(now) {
		// Fail closed: anything unreadable, incomplete, or past its
		// expiry is purged rather than returned or retried.
		if err := s.Delete(walletID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return rec, nil
}

func (s *BoltStore) Delete(walletID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(walletID))
	})
}

func (s *BoltStore) DeleteAll() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

func (s *BoltStore) SweepExpired(now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		c := b.Cursor()
		var stale [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rec, ok := s.open(string(k), v)
			if !ok || !rec.valid() || rec.expired(now) {
				stale = append(stale, util.CopyBytes(k))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *BoltStore) open(walletID string, sealed []byte) (*SessionKeyRecord, bool) {
	data, err := util.Open(sealed, s.key, []byte(walletID))
	if err != nil {
		return nil, false
	}
	var rec SessionKeyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}
