// Package stat collects per operation statistics of a run.
package stat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/peak/remotecp/strutil"
)

var (
	enabled bool

	mu    sync.Mutex
	stats map[string]*Stat
)

// InitStat starts collecting statistics.
func InitStat() {
	mu.Lock()
	defer mu.Unlock()

	enabled = true
	stats = map[string]*Stat{}
}

// Stat is the statistics of one operation. It implements the log.Message
// interface.
type Stat struct {
	Operation string `json:"operation"`
	Success   int64  `json:"success"`
	Error     int64  `json:"error"`
	Bytes     int64  `json:"bytes"`
}

// String is the string representation of Stat.
func (s Stat) String() string {
	return fmt.Sprintf("%v: %d files transferred with %d errors, %v bytes",
		s.Operation, s.Success, s.Error, strutil.HumanizeBytes(s.Bytes))
}

// JSON is the JSON representation of Stat.
func (s Stat) JSON() string {
	return strutil.JSON(s)
}

// Stats is a list of Stat ordered by operation.
type Stats []Stat

// Collect adds the outcome of one batch to the statistics of op.
func Collect(op string, success, failure int, bytes int64) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}

	s, ok := stats[op]
	if !ok {
		s = &Stat{Operation: op}
		stats[op] = s
	}
	s.Success += int64(success)
	s.Error += int64(failure)
	s.Bytes += bytes
}

// Statistics returns the statistics collected so far.
func Statistics() Stats {
	mu.Lock()
	defer mu.Unlock()

	result := make(Stats, 0, len(stats))
	for _, s := range stats {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Operation < result[j].Operation
	})
	return result
}
