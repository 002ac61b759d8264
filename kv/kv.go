// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter reads values by key.
type Getter interface {
	// Get fails for a missing key with an error IsNotFound accepts.
	Get(key []byte) ([]byte, error)
	IsNotFound(err error) bool
}

// Putter writes or removes values by key.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Batch buffers writes until Write applies them in one step.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// Store is the persistence the ledger state and runtime checkpoints sit on.
type Store interface {
	Getter
	Putter
	NewBatch() Batch
	Close() error
}
