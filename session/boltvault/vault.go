// Package boltvault persists the two session slots in a local BoltDB file,
// the durable storage that survives client restarts.
package boltvault

import (
	"time"

	"github.com/boltdb/bolt"
	interrors "github.com/caloriediary/go-diary-client/internal/errors"
	"github.com/caloriediary/go-diary-client/session"
	"github.com/pkg/errors"
)

const (
	bucketName = "session"
	tokenKey   = "token"
	userKey    = "user"
)

var _ session.Vault = (*Vault)(nil)

type Vault struct {
	db *bolt.DB
}

// Open creates or opens the vault file at path.
func Open(path string) (*Vault, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "[boltvault.Open] bolt.Open")
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[boltvault.Open] create bucket")
	}

	return &Vault{db: db}, nil
}

func (v *Vault) Close() error {
	return v.db.Close()
}

func (v *Vault) ReadToken() (string, error) {
	raw, err := v.read(tokenKey)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (v *Vault) WriteToken(token string) error {
	return v.write(tokenKey, []byte(token))
}

func (v *Vault) DeleteToken() error {
	return v.delete(tokenKey)
}

func (v *Vault) ReadUser() ([]byte, error) {
	return v.read(userKey)
}

func (v *Vault) WriteUser(raw []byte) error {
	return v.write(userKey, raw)
}

func (v *Vault) DeleteUser() error {
	return v.delete(userKey)
}

func (v *Vault) read(key string) ([]byte, error) {
	var value []byte
	err := v.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if raw == nil {
			return interrors.ErrSlotNotFound
		}
		// Bolt values are only valid inside the transaction.
		value = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (v *Vault) write(key string, value []byte) error {
	return v.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), value)
	})
}

func (v *Vault) delete(key string) error {
	return v.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}
