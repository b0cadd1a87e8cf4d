package history

import "time"

const SchemaVersion = 1

// Run is the persisted summary of one pipeline invocation. Source text is
// not stored; SourceHash identifies identical inputs.
type Run struct {
	SchemaVersion       int       `json:"schema_version"`
	RunID               string    `json:"run_id"`
	Path                string    `json:"path,omitempty"`
	SourceHash          string    `json:"source_hash"`
	Timestamp           time.Time `json:"timestamp"`
	TokenCount          int       `json:"token_count"`
	DistinctTokens      int       `json:"distinct_tokens"`
	InvalidTokenCount   int       `json:"invalid_token_count"`
	Verdict             string    `json:"verdict"`
	StructureErrorCount int       `json:"structure_error_count"`
	NodeCount           int       `json:"node_count"`
	LoopCount           int       `json:"loop_count"`
	Complexity          string    `json:"complexity"`
	ExecutionStatus     string    `json:"execution_status"`
	Visualization       string    `json:"visualization,omitempty"`
	DurationMS          float64   `json:"duration_ms"`
}

// Stats aggregates a slice of runs for history listings.
type Stats struct {
	Runs           int            `json:"runs"`
	Correct        int            `json:"correct"`
	Incorrect      int            `json:"incorrect"`
	AvgInvalid     float64        `json:"avg_invalid_tokens"`
	AvgDurationMS  float64        `json:"avg_duration_ms"`
	ByComplexity   map[string]int `json:"by_complexity"`
	ByExecution    map[string]int `json:"by_execution"`
	DistinctInputs int            `json:"distinct_inputs"`
}

func BuildStats(runs []Run) Stats {
	stats := Stats{
		Runs:         len(runs),
		ByComplexity: make(map[string]int),
		ByExecution:  make(map[string]int),
	}
	if len(runs) == 0 {
		return stats
	}

	hashes := make(map[string]bool, len(runs))
	var invalid, duration float64
	for _, r := range runs {
		if r.Verdict == "Correct" {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
		invalid += float64(r.InvalidTokenCount)
		duration += r.DurationMS
		stats.ByComplexity[r.Complexity]++
		if r.ExecutionStatus != "" {
			stats.ByExecution[r.ExecutionStatus]++
		}
		hashes[r.SourceHash] = true
	}
	stats.AvgInvalid = invalid / float64(len(runs))
	stats.AvgDurationMS = duration / float64(len(runs))
	stats.DistinctInputs = len(hashes)
	return stats
}
