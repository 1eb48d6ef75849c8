// Package metadata implements the instance introspection operations: table
// schemas, choice lists, script search, business rules, ACLs, system
// properties and script include APIs.
package metadata

import (
	"context"
	"time"

	"github.com/standardbeagle/nowmeta/internal/config"
	"github.com/standardbeagle/nowmeta/internal/debug"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/remote"
	"github.com/standardbeagle/nowmeta/internal/scope"
	"github.com/standardbeagle/nowmeta/internal/signature"
)

// Logger is the subset of the diagnostic logger the service writes to
type Logger interface {
	Printf(format string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// SkipHook observes sources the aggregator dropped after a failed query
type SkipHook func(skipped SkippedSource)

// Options configures a Service
type Options struct {
	Limits     config.Limits
	Concurrent bool
	Logger     Logger
	OnSkip     SkipHook
	Extractor  *signature.Extractor
}

// Service answers metadata questions against one remote instance. It holds
// no per-call state and is safe for concurrent use.
type Service struct {
	querier    remote.Querier
	scopes     *scope.Resolver
	extractor  *signature.Extractor
	limits     config.Limits
	concurrent bool
	logger     Logger
	onSkip     SkipHook
}

// NewService wires a Service around q. Zero limits fall back to the
// configured defaults.
func NewService(q remote.Querier, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger{}
	}

	extractor := opts.Extractor
	if extractor == nil {
		var err error
		extractor, err = signature.NewExtractor()
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		querier:    q,
		scopes:     scope.NewResolver(q, logger),
		extractor:  extractor,
		limits:     withDefaultLimits(opts.Limits),
		concurrent: opts.Concurrent,
		logger:     logger,
		onSkip:     opts.OnSkip,
	}, nil
}

// Close releases parser resources
func (s *Service) Close() {
	if s.extractor != nil {
		s.extractor.Close()
	}
}

// Limits reports the effective limits
func (s *Service) Limits() config.Limits {
	return s.limits
}

func withDefaultLimits(l config.Limits) config.Limits {
	if l.ScriptsPerSource <= 0 {
		l.ScriptsPerSource = config.DefaultScriptsPerSource
	}
	if l.Dictionary <= 0 {
		l.Dictionary = config.DefaultDictionaryLimit
	}
	if l.Choices <= 0 {
		l.Choices = config.DefaultChoicesLimit
	}
	if l.Acls <= 0 {
		l.Acls = config.DefaultAclLimit
	}
	if l.Properties <= 0 {
		l.Properties = config.DefaultPropertyLimit
	}
	if l.InheritanceDepth <= 0 {
		l.InheritanceDepth = config.DefaultInheritanceDepth
	}
	return l
}

// fetch runs one table read and traces it
func (s *Service) fetch(ctx context.Context, req remote.Request) ([]normalize.Record, error) {
	start := time.Now()
	records, err := s.querier.Query(ctx, req)
	if err != nil {
		debug.LogQuery("%s %q failed after %v: %v\n", req.Table, req.Query, time.Since(start), err)
		return nil, err
	}
	debug.LogQuery("%s %q limit=%d -> %d rows in %v\n", req.Table, req.Query, req.Limit, len(records), time.Since(start))
	return records, nil
}

// clampLimit applies a caller-supplied limit bounded by max
func clampLimit(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}
