package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

const (
	systemProperties = "sys_properties"

	// globOverfetch widens the remote page when a glob is filtered locally
	globOverfetch    = 5
	maxPropertyFetch = 1000
)

var (
	propName        = normalize.Text("name", normalize.ValueFirst)
	propValue       = normalize.Text("value", normalize.ValueFirst)
	propDescription = normalize.Text("description", normalize.DisplayFirst)
	propScope       = normalize.Scope("sys_scope")
	propUpdatedOn   = normalize.Text("sys_updated_on", normalize.ValueFirst)
)

// globMeta are the characters that make a property name a pattern
const globMeta = "*?[{"

// literalPrefix returns the part of pattern before its first glob
// metacharacter and whether any metacharacter was found
func literalPrefix(pattern string) (string, bool) {
	if i := strings.IndexAny(pattern, globMeta); i >= 0 {
		return pattern[:i], true
	}
	return pattern, false
}

// GetSystemProperties lists properties whose name starts with Name or, when
// Name is a glob such as "glide.ui.*", matches it. The glob's literal prefix
// narrows the remote query and the full pattern is applied locally.
func (s *Service) GetSystemProperties(ctx context.Context, search PropertySearch) (*PropertyResult, error) {
	if search.Name == "" {
		return nil, nmerrors.NewMissingFieldError("name")
	}
	prefix, isGlob := literalPrefix(search.Name)
	if isGlob && !doublestar.ValidatePattern(search.Name) {
		return nil, nmerrors.NewInvalidValueError("name", search.Name, "is not a valid glob pattern")
	}
	s.warnSeparators(search.Name)

	result := &PropertyResult{Properties: []SystemProperty{}}
	b := query.New().Where(query.StartsWith("name", prefix))

	if search.ScopeName != "" {
		res := s.scopes.Resolve(ctx, search.ScopeName)
		if res.Found {
			b.Where(query.Equals("sys_scope", res.SysID))
		} else if b.Len() == 0 {
			// the scope was the only criterion
			result.Warnings = append(result.Warnings, fmt.Sprintf("scope %q not found", search.ScopeName))
			return result, nil
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("scope %q not found; showing properties from all scopes", search.ScopeName))
		}
	}

	q, ok := b.OrderBy("name").Build()
	if !ok {
		return nil, nmerrors.NewInvalidValueError("name", search.Name, "needs a literal prefix before the first wildcard, or a scope_name")
	}

	limit := clampLimit(search.Limit, s.limits.Properties)
	fetch := limit
	if isGlob {
		fetch = limit * globOverfetch
		if fetch > maxPropertyFetch {
			fetch = maxPropertyFetch
		}
	}

	records, err := s.fetch(ctx, remote.Request{
		Table:   systemProperties,
		Query:   q,
		Fields:  normalize.Names(propName, propValue, propDescription, propScope, propUpdatedOn),
		Limit:   fetch,
		Display: remote.DisplayBoth,
	})
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		name := propName.Read(rec)
		if isGlob {
			if matched, _ := doublestar.Match(search.Name, name); !matched {
				continue
			}
		}
		result.Properties = append(result.Properties, SystemProperty{
			Name:        name,
			Value:       propValue.Read(rec),
			Description: propDescription.Read(rec),
			Scope:       propScope.Read(rec),
			UpdatedOn:   propUpdatedOn.Read(rec),
		})
		if len(result.Properties) == limit {
			break
		}
	}
	return result, nil
}
