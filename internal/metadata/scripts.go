package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/nowmeta/internal/debug"
	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

// scriptSource is one member of the fixed table-type map. Affinity is the
// column that ties a script to a table; empty means the source has none.
type scriptSource struct {
	Type     ScriptType
	Table    string
	Affinity string
}

var scriptSources = map[ScriptType]scriptSource{
	BusinessRule:  {Type: BusinessRule, Table: "sys_script", Affinity: "collection"},
	ScriptInclude: {Type: ScriptInclude, Table: "sys_script_include"},
	ClientScript:  {Type: ClientScript, Table: "sys_script_client", Affinity: "table"},
}

var (
	scrName      = normalize.Text("name", normalize.ValueFirst)
	scrSysID     = normalize.Text("sys_id", normalize.ValueOnly)
	scrUpdatedOn = normalize.Text("sys_updated_on", normalize.ValueFirst)
	scrScope     = normalize.Scope("sys_scope")
)

// SourceTable returns the remote table backing a script type
func SourceTable(t ScriptType) string {
	return scriptSources[t].Table
}

type sourceOutcome struct {
	source  scriptSource
	records []ScriptRecord
	err     error
}

// FindRelevantScripts searches business rules, script includes and client
// scripts for a table, keyword and/or application scope and returns the
// merged hits newest first.
//
// A scope that cannot be resolved is dropped when other criteria remain and
// yields an empty result when it was the only criterion. A source whose
// query fails is skipped and reported in SkippedSources.
func (s *Service) FindRelevantScripts(ctx context.Context, search ScriptSearch) (*ScriptSearchResult, error) {
	types, err := ResolveScriptTypes(search.ScriptType)
	if err != nil {
		return nil, err
	}
	if search.TableName == "" && search.Keyword == "" && search.ScopeName == "" {
		return nil, nmerrors.NewMissingFieldError("table_name, keyword or scope_name")
	}
	s.warnSeparators(search.TableName, search.Keyword)

	result := &ScriptSearchResult{Scripts: []ScriptRecord{}, Criteria: []string{}}

	var scopeClause query.Clause
	scopeLabel := ""
	if search.ScopeName != "" {
		res := s.scopes.Resolve(ctx, search.ScopeName)
		switch {
		case res.Found:
			scopeClause = query.Equals("sys_scope", res.SysID)
			scopeLabel = res.Scope
			if scopeLabel == "" {
				scopeLabel = search.ScopeName
			}
			result.Criteria = append(result.Criteria, "scope="+scopeLabel)
		case search.TableName == "" && search.Keyword == "":
			debug.LogScripts("scope %q unresolved and no other criteria, returning empty\n", search.ScopeName)
			return result, nil
		default:
			s.logger.Printf("scope %q not resolved, searching without scope filter", search.ScopeName)
		}
	}
	if search.TableName != "" {
		result.Criteria = append(result.Criteria, "table="+search.TableName)
	}
	if search.Keyword != "" {
		result.Criteria = append(result.Criteria, "keyword="+search.Keyword)
	}

	limit := clampLimit(search.Limit, s.limits.ScriptsPerSource)
	outcomes := make([]sourceOutcome, len(types))
	run := func(ctx context.Context, i int) {
		src := scriptSources[types[i]]
		outcomes[i] = s.searchSource(ctx, src, search, scopeClause, scopeLabel, limit)
	}

	if s.concurrent && len(types) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i := range types {
			g.Go(func() error {
				run(gctx, i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range types {
			run(ctx, i)
		}
	}

	for _, out := range outcomes {
		if out.err != nil {
			skipped := SkippedSource{Type: out.source.Type, Table: out.source.Table, Error: out.err.Error()}
			result.SkippedSources = append(result.SkippedSources, skipped)
			s.logger.Printf("skipping %s (%s): %v", out.source.Type, out.source.Table, out.err)
			if s.onSkip != nil {
				s.onSkip(skipped)
			}
			continue
		}
		result.Scripts = append(result.Scripts, out.records...)
	}

	sort.SliceStable(result.Scripts, func(i, j int) bool {
		return result.Scripts[i].UpdatedOn > result.Scripts[j].UpdatedOn
	})
	debug.LogScripts("%d scripts from %d sources (%d skipped)\n",
		len(result.Scripts), len(types), len(result.SkippedSources))
	return result, nil
}

// sourceFilter builds the per-table filter and the reason trail that goes
// with it. Only criteria that made it into the filter are named.
func sourceFilter(src scriptSource, search ScriptSearch, scopeClause query.Clause, scopeLabel string) (string, string, bool) {
	b := query.New()
	var reasons []string

	if search.TableName != "" {
		switch {
		case src.Affinity != "":
			b.Where(query.Equals(src.Affinity, search.TableName))
			reasons = append(reasons, fmt.Sprintf("%s=%s", src.Affinity, search.TableName))
		case search.Keyword == "":
			b.Where(query.Or(query.Like("name", search.TableName), query.Like("script", search.TableName)))
			reasons = append(reasons, fmt.Sprintf("name or script mentions %q", search.TableName))
		}
	}
	if search.Keyword != "" {
		b.Where(query.Or(query.Like("name", search.Keyword), query.Like("script", search.Keyword)))
		reasons = append(reasons, fmt.Sprintf("name or script contains %q", search.Keyword))
	}
	if !scopeClause.IsZero() {
		b.Where(scopeClause)
		reasons = append(reasons, "scope="+scopeLabel)
	}

	q, ok := b.OrderByDesc("sys_updated_on").Build()
	return q, "matched " + strings.Join(reasons, " and "), ok
}

func (s *Service) searchSource(ctx context.Context, src scriptSource, search ScriptSearch, scopeClause query.Clause, scopeLabel string, limit int) sourceOutcome {
	out := sourceOutcome{source: src}

	q, reason, ok := sourceFilter(src, search, scopeClause, scopeLabel)
	if !ok {
		return out
	}

	cols := []normalize.Column{scrName, scrSysID, scrUpdatedOn, scrScope}
	var affinity normalize.TextColumn
	if src.Affinity != "" {
		affinity = normalize.Text(src.Affinity, normalize.ValueFirst)
		cols = append(cols, affinity)
	}

	records, err := s.fetch(ctx, remote.Request{
		Table:   src.Table,
		Query:   q,
		Fields:  normalize.Names(cols...),
		Limit:   limit,
		Display: remote.DisplayBoth,
	})
	if err != nil {
		out.err = err
		return out
	}

	out.records = make([]ScriptRecord, 0, len(records))
	for _, rec := range records {
		sr := ScriptRecord{
			Name:      scrName.Read(rec),
			Type:      src.Type,
			SysID:     scrSysID.Read(rec),
			UpdatedOn: scrUpdatedOn.Read(rec),
			Scope:     scrScope.Read(rec),
			Reason:    reason,
		}
		if src.Affinity != "" {
			table := affinity.Read(rec)
			sr.Table = &table
		}
		out.records = append(out.records, sr)
	}
	return out
}

func (s *Service) warnSeparators(values ...string) {
	for _, v := range values {
		if query.HasSeparator(v) {
			s.logger.Printf("filter value %q contains a query separator and will change the filter's meaning", v)
		}
	}
}
