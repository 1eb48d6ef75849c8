package metrics

import (
	"sort"
	"sync"
	"time"
)

// Outcome classifies how a tool call ended
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeInvalid
	OutcomeAmbiguous
	OutcomeRemoteError
	OutcomeInternal
)

// ToolStats represents the counters kept for one tool
type ToolStats struct {
	Calls        int64         `json:"calls"`
	NotFound     int64         `json:"not_found"`
	Invalid      int64         `json:"invalid"`
	Ambiguous    int64         `json:"ambiguous"`
	RemoteErrors int64         `json:"remote_errors"`
	Internal     int64         `json:"internal"`
	TotalTime    time.Duration `json:"total_time_ns"`
	MaxTime      time.Duration `json:"max_time_ns"`
}

// UsageStats tracks tool calls and skipped script sources for the life of
// the process. Safe for concurrent use.
type UsageStats struct {
	mu        sync.Mutex
	started   time.Time
	tools     map[string]*ToolStats
	skipped   map[string]int64
	lastSkips map[string]string
}

// NewUsageStats creates an empty stats collector
func NewUsageStats() *UsageStats {
	return &UsageStats{
		started:   time.Now(),
		tools:     make(map[string]*ToolStats),
		skipped:   make(map[string]int64),
		lastSkips: make(map[string]string),
	}
}

// RecordCall counts one finished tool call
func (us *UsageStats) RecordCall(tool string, elapsed time.Duration, outcome Outcome) {
	us.mu.Lock()
	defer us.mu.Unlock()

	st, ok := us.tools[tool]
	if !ok {
		st = &ToolStats{}
		us.tools[tool] = st
	}
	st.Calls++
	st.TotalTime += elapsed
	if elapsed > st.MaxTime {
		st.MaxTime = elapsed
	}
	switch outcome {
	case OutcomeNotFound:
		st.NotFound++
	case OutcomeInvalid:
		st.Invalid++
	case OutcomeAmbiguous:
		st.Ambiguous++
	case OutcomeRemoteError:
		st.RemoteErrors++
	case OutcomeInternal:
		st.Internal++
	}
}

// RecordSkippedSource counts a script table dropped from an aggregated
// search and keeps the most recent reason
func (us *UsageStats) RecordSkippedSource(table, reason string) {
	us.mu.Lock()
	defer us.mu.Unlock()
	us.skipped[table]++
	us.lastSkips[table] = reason
}

// Tool returns a copy of one tool's counters
func (us *UsageStats) Tool(name string) ToolStats {
	us.mu.Lock()
	defer us.mu.Unlock()
	if st, ok := us.tools[name]; ok {
		return *st
	}
	return ToolStats{}
}

// SkippedSources returns the skip count per table
func (us *UsageStats) SkippedSources() map[string]int64 {
	us.mu.Lock()
	defer us.mu.Unlock()
	out := make(map[string]int64, len(us.skipped))
	for k, v := range us.skipped {
		out[k] = v
	}
	return out
}

// FormatAsJSON returns stats formatted as JSON-serializable map
func (us *UsageStats) FormatAsJSON() map[string]interface{} {
	us.mu.Lock()
	defer us.mu.Unlock()

	tools := make([]map[string]interface{}, 0, len(us.tools))
	var totalCalls int64
	for name, st := range us.tools {
		totalCalls += st.Calls
		avg := time.Duration(0)
		if st.Calls > 0 {
			avg = st.TotalTime / time.Duration(st.Calls)
		}
		tools = append(tools, map[string]interface{}{
			"tool":          name,
			"calls":         st.Calls,
			"not_found":     st.NotFound,
			"invalid":       st.Invalid,
			"ambiguous":     st.Ambiguous,
			"remote_errors": st.RemoteErrors,
			"internal":      st.Internal,
			"avg_ms":        avg.Milliseconds(),
			"max_ms":        st.MaxTime.Milliseconds(),
		})
	}

	// Sort for consistent output
	sort.Slice(tools, func(i, j int) bool {
		return tools[i]["tool"].(string) < tools[j]["tool"].(string)
	})

	skipped := make([]map[string]interface{}, 0, len(us.skipped))
	for table, n := range us.skipped {
		skipped = append(skipped, map[string]interface{}{
			"table":       table,
			"count":       n,
			"last_reason": us.lastSkips[table],
		})
	}
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i]["table"].(string) < skipped[j]["table"].(string)
	})

	return map[string]interface{}{
		"summary": map[string]interface{}{
			"total_calls":    totalCalls,
			"uptime_seconds": int64(time.Since(us.started).Seconds()),
		},
		"tools":           tools,
		"skipped_sources": skipped,
	}
}
