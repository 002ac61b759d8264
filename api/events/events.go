// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

func (e *Events) filter(ctx context.Context, ef *EventFilter) ([]*FilteredEvent, error) {
	events, err := e.db.FilterEvents(ctx, convertFilter(ef))
	if err != nil {
		return nil, err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = ConvertEvent(ev)
	}
	return fes, nil
}

func (e *Events) serve(w http.ResponseWriter, req *http.Request, filter *EventFilter) error {
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Range != nil && filter.Range.From != nil && filter.Range.To != nil && *filter.Range.From > *filter.Range.To {
		return restutil.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
	}
	if filter.Order != "" && filter.Order != logdb.ASC && filter.Order != logdb.DESC {
		return restutil.BadRequest(fmt.Errorf("order: invalid value %q", filter.Order))
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return restutil.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// one more than the limit to detect an oversized result
		filter.Options = &Options{Limit: e.limit + 1}
	}

	fes, err := e.filter(req.Context(), filter)
	if err != nil {
		return err
	}
	if len(fes) > int(e.limit) {
		return restutil.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return restutil.WriteJSON(w, fes)
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	return e.serve(w, req, &filter)
}

func (e *Events) handleQuery(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseQuery(req.URL.Query())
	if err != nil {
		return restutil.BadRequest(err)
	}
	return e.serve(w, req, filter)
}

func parseUint(q url.Values, key string) (*uint64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.WithMessage(err, key)
	}
	return &v, nil
}

func parseAddress(q url.Values, key string) (*thor.Address, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return nil, errors.WithMessage(err, key)
	}
	return &addr, nil
}

// parseQuery builds a single criteria filter from query parameters.
func parseQuery(q url.Values) (*EventFilter, error) {
	var (
		c   EventCriteria
		err error
	)
	if c.Address, err = parseAddress(q, "address"); err != nil {
		return nil, err
	}
	if c.Account, err = parseAddress(q, "account"); err != nil {
		return nil, err
	}
	if c.DepositID, err = parseUint(q, "depositId"); err != nil {
		return nil, err
	}
	if name := q.Get("name"); name != "" {
		c.Name = &name
	}
	filter := &EventFilter{
		CriteriaSet: []*EventCriteria{&c},
		Order:       logdb.Order(q.Get("order")),
	}

	from, err := parseUint(q, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseUint(q, "to")
	if err != nil {
		return nil, err
	}
	if from != nil || to != nil {
		if to == nil {
			end := uint64(math.MaxInt64)
			to = &end
		}
		if from == nil {
			from = new(uint64)
		}
		filter.Range = &Range{From: from, To: to}
	}

	offset, err := parseUint(q, "offset")
	if err != nil {
		return nil, err
	}
	limit, err := parseUint(q, "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil {
		filter.Options = &Options{Limit: *limit}
		if offset != nil {
			filter.Options.Offset = *offset
		}
	} else if offset != nil {
		return nil, errors.New("offset requires limit")
	}
	return filter, nil
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleQuery))
}
