// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(ErrUnauthorized, "caller is not admin")
	assert.Equal(t, "unauthorized: caller is not admin", revert.Error())
	assert.Equal(t, ErrUnauthorized, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))

	wrapped := errors.WithMessage(revert, "notify")
	assert.True(t, IsRevertErr(wrapped))
	assert.ErrorIs(t, wrapped, ErrUnauthorized)
	assert.NotErrorIs(t, wrapped, ErrInvalidAmount)

	assert.Equal(t, "invalid amount", New(ErrInvalidAmount, "").Error())
	assert.Equal(t, "too early: 5s left", Newf(ErrTooEarly, "%ds left", 5).Error())
}
