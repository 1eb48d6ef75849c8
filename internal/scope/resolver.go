// Package scope turns a user-supplied application scope token into the
// scope record's sys_id.
package scope

import (
	"context"

	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

// Table holds application scope records
const Table = "sys_scope"

var (
	colSysID = normalize.Text("sys_id", normalize.ValueOnly)
	colScope = normalize.Text("scope", normalize.ValueFirst)
	colName  = normalize.Text("name", normalize.DisplayFirst)
)

// Logger is the subset of the diagnostic logger the resolver uses
type Logger interface {
	Printf(format string, args ...interface{})
}

// Resolution is the outcome of one lookup. Found is false both when no
// scope matched and when the lookup itself failed; Err tells them apart.
type Resolution struct {
	Token string
	SysID string
	Scope string
	Name  string
	Found bool
	Err   error
}

// Resolver looks scopes up by technical identifier or display name
type Resolver struct {
	querier remote.Querier
	logger  Logger
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(q remote.Querier, logger Logger) *Resolver {
	return &Resolver{querier: q, logger: logger}
}

// Filter returns the sys_scope filter for token: scope=token^ORname=token
func Filter(token string) string {
	q, _ := query.New().
		Where(query.Or(query.Equals("scope", token), query.Equals("name", token))).
		Build()
	return q
}

// Resolve never returns an error. A failed lookup is reported as not found
// so callers can degrade to an unscoped search.
func (r *Resolver) Resolve(ctx context.Context, token string) Resolution {
	res := Resolution{Token: token}
	if token == "" {
		return res
	}

	records, err := r.querier.Query(ctx, remote.Request{
		Table:   Table,
		Query:   Filter(token),
		Fields:  normalize.Names(colSysID, colScope, colName),
		Limit:   1,
		Display: remote.DisplayRaw,
	})
	if err != nil {
		res.Err = err
		r.printf("scope lookup for %q failed, continuing unscoped: %v", token, err)
		return res
	}
	if len(records) == 0 {
		r.printf("scope %q not found", token)
		return res
	}

	rec := records[0]
	res.SysID = colSysID.Read(rec)
	res.Scope = colScope.Read(rec)
	res.Name = colName.Read(rec)
	res.Found = res.SysID != ""
	return res
}

func (r *Resolver) printf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
