// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
)

// Beat announces committed batches.
type Beat interface {
	NewCommitWaiter() co.Waiter
}

// Subscriptions streams ledger events to websocket clients as batches are committed.
type Subscriptions struct {
	db             *logdb.LogDB
	beat           Beat
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	done           chan struct{}
	closeOnce      sync.Once
	wg             sync.WaitGroup
}

func New(db *logdb.LogDB, beat Beat, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		db:             db,
		beat:           beat,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == strings.ToLower(origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	select {
	case <-s.done:
		return restutil.HTTPError(errors.New("service closed"), http.StatusServiceUnavailable)
	default:
	}
	s.wg.Add(1)
	defer s.wg.Done()

	reader, err := s.parseEventReader(req.Context(), req.URL.Query())
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	if err := s.pipe(req.Context(), conn, reader); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) parseEventReader(ctx context.Context, q url.Values) (*eventReader, error) {
	newest, err := s.db.NewestBatchNumber(ctx)
	if err != nil {
		return nil, err
	}
	pos := newest + 1
	if v := q.Get("pos"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "pos"))
		}
		if uint32(n) > newest+1 {
			return nil, restutil.BadRequest(errors.New("pos: beyond the next batch"))
		}
		if newest+1-uint32(n) > s.backtraceLimit {
			return nil, restutil.Forbidden(errors.New("pos: backtrace limit exceeded"))
		}
		pos = uint32(n)
	}

	var criteria logdb.EventCriteria
	if criteria.Address, err = parseAddress(q, "address"); err != nil {
		return nil, restutil.BadRequest(err)
	}
	if criteria.Account, err = parseAddress(q, "account"); err != nil {
		return nil, restutil.BadRequest(err)
	}
	if v := q.Get("depositId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "depositId"))
		}
		criteria.DepositID = &id
	}
	if v := q.Get("name"); v != "" {
		criteria.Name = &v
	}
	return newEventReader(s.db, pos, &criteria), nil
}

func parseAddress(q url.Values, key string) (*thor.Address, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(v)
	if err != nil {
		return nil, errors.WithMessage(err, key)
	}
	return &addr, nil
}

// pipe sends matching events until the client leaves or the service is closed.
func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader *eventReader) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	waiter := s.beat.NewCommitWaiter()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		msgs, more, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if more {
			continue
		}

	wait:
		for {
			select {
			case <-s.done:
				return conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "service closed"),
					time.Now().Add(writeWait))
			case <-closed:
				return nil
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return err
				}
			case <-waiter.C():
				break wait
			}
		}
	}
}

// Close ends all open subscriptions and waits for their handlers to return.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectEvent))
}
