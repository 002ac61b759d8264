// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

// Format selects how a handler renders records.
type Format uint8

const (
	// FormatTerminal is aligned, optionally colored output meant for a human at a tty.
	FormatTerminal Format = iota
	// FormatLogfmt is key=value output.
	FormatLogfmt
	// FormatJSON is one JSON object per record.
	FormatJSON
)

// NewHandler returns a handler writing records at or above lvl to w.
// The color flag is only honored by FormatTerminal.
func NewHandler(w io.Writer, f Format, lvl *slog.LevelVar, color bool) slog.Handler {
	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceAttr(false)})
	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceAttr(true)})
	default:
		return &termHandler{out: w, lvl: lvl, color: color, padding: make(map[string]int)}
	}
}

// termHandler writes
//
//	LEVEL[MM-DD|hh:mm:ss.000] message                key=value key=value
//
// padding remembers the widest value seen per key so that columns line up
// across consecutive records.
type termHandler struct {
	mu      sync.Mutex
	out     io.Writer
	lvl     *slog.LevelVar
	color   bool
	attrs   []slog.Attr
	padding map[string]int
	buf     []byte
}

func (h *termHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *termHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := h.format(h.buf, r, h.color)
	_, err := h.out.Write(line)
	h.buf = line[:0]
	return err
}

func (h *termHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(append(merged, h.attrs...), attrs...)
	return &termHandler{
		out:     h.out,
		lvl:     h.lvl,
		color:   h.color,
		attrs:   merged,
		padding: make(map[string]int),
	}
}

// WithGroup is not supported; stakeledger loggers never open groups.
func (h *termHandler) WithGroup(_ string) slog.Handler {
	panic("log: groups are not supported by the terminal handler")
}

// replaceAttr renames the time and level keys to t and lvl and renders
// amounts and stringers as plain strings.
func replaceAttr(logfmt bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey:
			a.Key = "t"
		case slog.LevelKey:
			if l, ok := a.Value.Any().(slog.Level); ok {
				return slog.String("lvl", LevelString(l))
			}
		}
		if s, ok := attrString(a.Value.Any(), logfmt); ok {
			a.Value = slog.StringValue(s)
		}
		return a
	}
}

// attrString returns the textual form of v for the kinds of value slog
// would otherwise render unhelpfully. JSON keeps native times.
func attrString(v any, logfmt bool) (string, bool) {
	switch v := v.(type) {
	case time.Time:
		if logfmt {
			return v.Format(timeFormat), true
		}
	case *big.Int:
		if v == nil {
			return "<nil>", true
		}
		return v.String(), true
	case *uint256.Int:
		if v == nil {
			return "<nil>", true
		}
		return v.Dec(), true
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "<nil>", true
		}
		return v.String(), true
	}
	return "", false
}
