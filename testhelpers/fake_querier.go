// Package testhelpers provides shared utilities for testing nowmeta
package testhelpers

import (
	"context"
	"strings"
	"sync"

	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

// QueryHandler answers one fake table read
type QueryHandler func(req remote.Request) ([]normalize.Record, error)

// FakeQuerier is an in-memory remote.Querier that records every request.
// Tables without a handler return no rows.
//
// Usage:
//
//	q := testhelpers.NewFakeQuerier().
//		Returns("sys_scope", testhelpers.Rec("sys_id", "abc", "scope", "x_app")).
//		Fails("sys_script", errors.New("boom"))
type FakeQuerier struct {
	mu       sync.Mutex
	handlers map[string]QueryHandler
	calls    []remote.Request
}

// NewFakeQuerier creates an empty fake
func NewFakeQuerier() *FakeQuerier {
	return &FakeQuerier{handlers: make(map[string]QueryHandler)}
}

// On installs a handler for table, replacing any previous one
func (f *FakeQuerier) On(table string, h QueryHandler) *FakeQuerier {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[table] = h
	return f
}

// Returns makes table answer with records, truncated to the request limit
func (f *FakeQuerier) Returns(table string, records ...normalize.Record) *FakeQuerier {
	return f.On(table, func(req remote.Request) ([]normalize.Record, error) {
		return Limit(records, req.Limit), nil
	})
}

// Fails makes every read of table return err
func (f *FakeQuerier) Fails(table string, err error) *FakeQuerier {
	return f.On(table, func(remote.Request) ([]normalize.Record, error) {
		return nil, err
	})
}

// Query implements remote.Querier
func (f *FakeQuerier) Query(ctx context.Context, req remote.Request) ([]normalize.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	h := f.handlers[req.Table]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return []normalize.Record{}, nil
	}
	return h(req)
}

// Calls returns a copy of every request seen so far
func (f *FakeQuerier) Calls() []remote.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns the requests made against table
func (f *FakeQuerier) CallsFor(table string) []remote.Request {
	var out []remote.Request
	for _, c := range f.Calls() {
		if c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

// Tables lists the tables queried, in call order
func (f *FakeQuerier) Tables() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Table
	}
	return out
}

// Rec builds a raw-mode record from alternating column/value pairs
func Rec(kv ...string) normalize.Record {
	r := make(normalize.Record, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i]] = normalize.Raw(kv[i+1])
	}
	return r
}

// DisplayRec builds a display=all record. Values of the form "raw|Display"
// are split into both halves; plain values use the same text for each.
func DisplayRec(kv ...string) normalize.Record {
	r := make(normalize.Record, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		value, display := kv[i+1], kv[i+1]
		if idx := strings.Index(kv[i+1], "|"); idx >= 0 {
			value, display = kv[i+1][:idx], kv[i+1][idx+1:]
		}
		r[kv[i]] = normalize.Pair(value, display)
	}
	return r
}

// Limit truncates records the way sysparm_limit does. A non-positive limit
// returns everything.
func Limit(records []normalize.Record, limit int) []normalize.Record {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	out := make([]normalize.Record, len(records))
	copy(out, records)
	return out
}
