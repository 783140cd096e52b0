package vaultfake

import (
	"sync"

	interrors "github.com/caloriediary/go-diary-client/internal/errors"
	"github.com/caloriediary/go-diary-client/session"
)

var _ session.Vault = (*FakeVault)(nil)

type FakeVault struct {
	slots map[string][]byte
	lock  sync.RWMutex
}

func NewFakeVault() *FakeVault {
	return &FakeVault{
		slots: make(map[string][]byte),
	}
}

func (v *FakeVault) ReadToken() (string, error) {
	raw, err := v.read("token")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (v *FakeVault) WriteToken(token string) error {
	return v.write("token", []byte(token))
}

func (v *FakeVault) DeleteToken() error {
	return v.delete("token")
}

func (v *FakeVault) ReadUser() ([]byte, error) {
	return v.read("user")
}

func (v *FakeVault) WriteUser(raw []byte) error {
	return v.write("user", raw)
}

func (v *FakeVault) DeleteUser() error {
	return v.delete("user")
}

func (v *FakeVault) read(key string) ([]byte, error) {
	v.lock.RLock()
	defer v.lock.RUnlock()

	raw, ok := v.slots[key]
	if !ok {
		return nil, interrors.ErrSlotNotFound
	}
	return raw, nil
}

func (v *FakeVault) write(key string, value []byte) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.slots[key] = append([]byte(nil), value...)
	return nil
}

func (v *FakeVault) delete(key string) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	delete(v.slots, key)
	return nil
}
