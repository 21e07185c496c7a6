package trace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Entry kinds recorded by the form and session packages.
const (
	KindInput     = "input"
	KindBlur      = "blur"
	KindReset     = "reset"
	KindRecompute = "recompute"
	KindSubmit    = "submit"
	KindRestore   = "restore"
	KindLogin     = "login"
	KindLogout    = "logout"
	KindTeardown  = "teardown"
)

// Sequencer hands out monotonically increasing sequence numbers.
type Sequencer interface {
	Next() int64
}

// Entry is one recorded step.
type Entry struct {
	Seq  int64          `json:"seq"`
	Flow string         `json:"flow,omitempty"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
}

// Recorder is an append-only, goroutine-safe list of entries.
// A nil *Recorder discards everything, so components can record unconditionally.
type Recorder struct {
	mu      sync.Mutex
	seq     Sequencer
	entries []Entry
}

// NewRecorder creates a recorder that stamps entries with seq.
func NewRecorder(seq Sequencer) *Recorder {
	return &Recorder{seq: seq}
}

// Record appends an entry.
func (r *Recorder) Record(flow, kind string, data map[string]any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Seq: r.seq.Next(), Flow: flow, Kind: kind, Data: data})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many entries of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Canonical returns the canonical JSON array of entries.
func (r *Recorder) Canonical() ([]byte, error) {
	entries := r.Entries()
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = e.Map()
	}
	return MarshalCanonical(list)
}

// Map returns the entry as a map suitable for MarshalCanonical.
func (e Entry) Map() map[string]any {
	m := map[string]any{
		"seq":  e.Seq,
		"kind": e.Kind,
	}
	if e.Flow != "" {
		m["flow"] = e.Flow
	}
	if len(e.Data) > 0 {
		m["data"] = e.Data
	}
	return m
}

// String renders the entry as a single human-readable line.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d %-9s", e.Seq, e.Kind)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}
