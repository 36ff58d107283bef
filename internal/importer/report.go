package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// Skip records one rejected source record.
type Skip struct {
	Location string     `json:"location"`
	Reason   SkipReason `json:"reason"`
	Detail   string     `json:"detail,omitempty"`
}

// PassResult is the outcome of one pass. Err is nil when the pass committed
// (or had nothing to commit); otherwise nothing from the pass was persisted.
type PassResult struct {
	Pass       Pass
	Source     string
	Read       int
	Created    int
	Duplicates int
	Skipped    []Skip
	Err        error
	Duration   time.Duration
}

// SourceMissing reports whether the pass did not run because its file is absent.
func (r PassResult) SourceMissing() bool {
	return errors.Is(r.Err, lmsseed.ErrSourceMissing)
}

// Failed reports whether the pass aborted for any reason other than a missing source.
func (r PassResult) Failed() bool {
	return r.Err != nil && !r.SourceMissing()
}

// SkipCounts groups skipped records by reason.
func (r PassResult) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

func (r PassResult) MarshalJSON() ([]byte, error) {
	type alias struct {
		Pass       Pass   `json:"pass"`
		Source     string `json:"source"`
		Read       int    `json:"read"`
		Created    int    `json:"created"`
		Duplicates int    `json:"duplicates"`
		Skipped    []Skip `json:"skipped"`
		Missing    bool   `json:"source_missing,omitempty"`
		Error      string `json:"error,omitempty"`
		DurationMS int64  `json:"duration_ms"`
	}
	a := alias{
		Pass:       r.Pass,
		Source:     r.Source,
		Read:       r.Read,
		Created:    r.Created,
		Duplicates: r.Duplicates,
		Skipped:    r.Skipped,
		Missing:    r.SourceMissing(),
		DurationMS: r.Duration.Milliseconds(),
	}
	if a.Skipped == nil {
		a.Skipped = []Skip{}
	}
	if r.Err != nil {
		a.Error = r.Err.Error()
	}
	return json.Marshal(a)
}

// Report is the outcome of a full run.
type Report struct {
	RunID   uuid.UUID     `json:"run_id"`
	DataDir string        `json:"data_dir"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Passes  []PassResult  `json:"passes"`
}

// Result returns the outcome of pass p, if it ran.
func (r *Report) Result(p Pass) (PassResult, bool) {
	for _, res := range r.Passes {
		if res.Pass == p {
			return res, true
		}
	}
	return PassResult{}, false
}

// Created sums the records committed by all passes.
func (r *Report) Created() int {
	n := 0
	for _, res := range r.Passes {
		n += res.Created
	}
	return n
}

// Skipped sums the records rejected by all passes, duplicates excluded.
func (r *Report) Skipped() int {
	n := 0
	for _, res := range r.Passes {
		n += len(res.Skipped)
	}
	return n
}

// Err returns nil when every pass either succeeded or had no source file.
// Otherwise it joins ErrImportIncomplete with each failed pass's error.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Passes {
		if res.Failed() {
			errs = append(errs, fmt.Errorf("%s: %w", res.Pass, res.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{lmsseed.ErrImportIncomplete}, errs...)...)
}

// sortedReasons returns the reasons of counts ordered by frequency, then name.
func sortedReasons(counts map[SkipReason]int) []SkipReason {
	reasons := make([]SkipReason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if counts[reasons[i]] != counts[reasons[j]] {
			return counts[reasons[i]] > counts[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	return reasons
}
