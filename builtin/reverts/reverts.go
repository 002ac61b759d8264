// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Revert kinds. Every rejected precondition maps to exactly one of them.
var (
	ErrUnauthorized              = errors.New("unauthorized")
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrInvalidAddress            = errors.New("invalid address")
	ErrInvalidNotifier           = errors.New("invalid notifier")
	ErrUnqualified               = errors.New("unqualified")
	ErrTipExceedsBound           = errors.New("tip exceeds bound")
	ErrFeeExceedsMax             = errors.New("fee exceeds max")
	ErrUnknownDeposit            = errors.New("unknown deposit")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrInsufficientRewardBalance = errors.New("insufficient reward balance")
	ErrTooEarly                  = errors.New("too early")
	ErrOraclePaused              = errors.New("oracle paused")
	ErrDelegateeScoreLocked      = errors.New("delegatee score locked")
)

// ErrRevert aborts the running clause. All state changes of the clause are discarded.
type ErrRevert struct {
	kind    error
	message string
}

func New(kind error, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// Newf is New with a formatted message.
func Newf(kind error, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.kind
}

// Kind returns the sentinel kind of the revert.
func (e *ErrRevert) Kind() error {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
