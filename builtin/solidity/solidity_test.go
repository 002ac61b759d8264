// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

type record struct {
	Owner   thor.Address
	Balance *big.Int
	Active  bool
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(thor.BytesToAddress([]byte("contract")), state.New(db))
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[Uint64Key, *record](ctx, thor.BytesToBytes32([]byte("records")))

	empty, err := m.Get(1)
	assert.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Nil(t, empty.Balance)

	exists, err := m.Exists(1)
	assert.NoError(t, err)
	assert.False(t, exists)

	rec := &record{Owner: thor.BytesToAddress([]byte("owner")), Balance: big.NewInt(42), Active: true}
	assert.NoError(t, m.Set(1, rec))

	got, err := m.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, rec.Owner, got.Owner)
	assert.Equal(t, int64(42), got.Balance.Int64())
	assert.True(t, got.Active)

	exists, err = m.Exists(1)
	assert.NoError(t, err)
	assert.True(t, exists)

	other, err := m.Get(2)
	assert.NoError(t, err)
	assert.Nil(t, other.Balance)

	m.Delete(1)
	exists, err = m.Exists(1)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestMappingValueTypes(t *testing.T) {
	ctx := newTestContext(t)
	flags := NewMapping[thor.Address, bool](ctx, thor.BytesToBytes32([]byte("flags")))
	pairs := NewMapping[AddressPair, *big.Int](ctx, thor.BytesToBytes32([]byte("pairs")))

	a := thor.BytesToAddress([]byte("a"))
	b := thor.BytesToAddress([]byte("b"))

	assert.NoError(t, flags.Set(a, true))
	ok, err := flags.Get(a)
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = flags.Get(b)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, pairs.Set(AddressPair{a, b}, big.NewInt(7)))
	v, err := pairs.Get(AddressPair{a, b})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())

	v, err = pairs.Get(AddressPair{b, a})
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}

func TestMappingCorruptValue(t *testing.T) {
	ctx := newTestContext(t)
	pos := thor.BytesToBytes32([]byte("records"))
	m := NewMapping[Uint64Key, *record](ctx, pos)

	ctx.State().SetRawStorage(ctx.Address(), thor.Blake2b(Uint64Key(3).Bytes(), pos.Bytes()), rlp.RawValue{0xFF})
	_, err := m.Get(3)
	assert.Error(t, err)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	assert.NoError(t, u.Add(big.NewInt(100)))
	assert.NoError(t, u.Sub(big.NewInt(40)))
	v, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, int64(60), v.Int64())

	assert.ErrorIs(t, u.Sub(big.NewInt(61)), ErrUint256Underflow)
	v, _ = u.Get()
	assert.Equal(t, int64(60), v.Int64())

	assert.NoError(t, u.Set(thor.MaxUint256))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), ErrUint256Overflow)
	v, _ = u.Get()
	assert.Equal(t, thor.MaxUint256, v)

	assert.NoError(t, u.Set(big.NewInt(0)))
	raw, err := ctx.State().GetRawStorage(ctx.Address(), thor.BytesToBytes32([]byte("total")))
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestAddressAndRaw(t *testing.T) {
	ctx := newTestContext(t)
	addr := NewAddress(ctx, thor.BytesToBytes32([]byte("admin")))
	raw := NewRaw[uint64](ctx, thor.BytesToBytes32([]byte("counter")))

	got, err := addr.Get()
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	admin := thor.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	addr.Set(admin)
	got, err = addr.Get()
	assert.NoError(t, err)
	assert.Equal(t, admin, got)

	n, err := raw.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), n)
	assert.NoError(t, raw.Set(9))
	n, err = raw.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), n)
}

func TestRevertRestoresSlots(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	assert.NoError(t, u.Set(big.NewInt(5)))
	rev := ctx.State().NewCheckpoint()
	assert.NoError(t, u.Set(big.NewInt(10)))
	ctx.State().RevertTo(rev)

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v.Int64())
}
