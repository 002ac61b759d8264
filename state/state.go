// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/stackedmap"
	"github.com/vechain/stakeledger/thor"
)

const (
	storagePrefix = 's'
	codePrefix    = 'c'

	committedCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

type codeKey thor.Address

// State manages the ledger world state: contract storage slots and deployed code.
// All writes are journaled in memory until Commit, and can be reverted to any
// checkpoint taken with NewCheckpoint.
type State struct {
	db    kv.Store
	cache *lru.Cache             // committed values, keyed by kv key
	sm    *stackedmap.StackedMap // keeps revisions of uncommitted changes
}

// New create state object over the given kv store.
func New(db kv.Store) *State {
	cache, _ := lru.New(committedCacheSize)
	s := &State{
		db:    db,
		cache: cache,
	}
	s.sm = stackedmap.New(s.committedGetter)
	return s
}

func makeStorageKey(addr thor.Address, key thor.Bytes32) []byte {
	k := make([]byte, 0, 1+thor.AddressLength+32)
	k = append(k, storagePrefix)
	k = append(k, addr.Bytes()...)
	return append(k, key.Bytes()...)
}

func makeCodeKey(addr thor.Address) []byte {
	return append([]byte{codePrefix}, addr.Bytes()...)
}

// committedGetter implements stackedmap.MapGetter.
func (s *State) committedGetter(key any) (any, bool, error) {
	switch k := key.(type) {
	case storageKey:
		v, err := s.readCommitted(makeStorageKey(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(v), true, nil
	case codeKey:
		v, err := s.readCommitted(makeCodeKey(thor.Address(k)))
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) readCommitted(key []byte) ([]byte, error) {
	if v, ok := s.cache.Get(string(key)); ok {
		return v.([]byte), nil
	}
	v, err := s.db.Get(key)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, err
		}
		v = nil
	}
	s.cache.Add(string(key), v)
	return v, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	var content []byte
	if err := rlp.DecodeBytes(raw, &content); err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// GetCode returns code for the given address.
func (s *State) GetCode(addr thor.Address) ([]byte, error) {
	v, _, err := s.sm.Get(codeKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// SetCode set code for the given address.
func (s *State) SetCode(addr thor.Address, code []byte) {
	s.sm.Put(codeKey(addr), append([]byte(nil), code...))
}

// Exists returns whether code is deployed at the given address.
func (s *State) Exists(addr thor.Address) (bool, error) {
	code, err := s.GetCode(addr)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Commit writes all journaled changes into the kv store atomically and starts a fresh journal.
func (s *State) Commit() error {
	changes := make(map[string][]byte)
	var order []string
	s.sm.Journal(func(k, v any) bool {
		var key []byte
		switch kk := k.(type) {
		case storageKey:
			key = makeStorageKey(kk.addr, kk.key)
		case codeKey:
			key = makeCodeKey(thor.Address(kk))
		}
		sk := string(key)
		if _, ok := changes[sk]; !ok {
			order = append(order, sk)
		}
		switch val := v.(type) {
		case rlp.RawValue:
			changes[sk] = val
		case []byte:
			changes[sk] = val
		}
		return true
	})

	batch := s.db.NewBatch()
	for _, k := range order {
		v := changes[k]
		var err error
		if len(v) == 0 {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	for _, k := range order {
		s.cache.Remove(k)
	}
	s.sm = stackedmap.New(s.committedGetter)
	return nil
}
