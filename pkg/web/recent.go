package web

import (
	"sync"

	"github.com/dbehnke/dmr-lc/pkg/decoder"
)

// RecentRecords keeps the last few decoded records in memory
type RecentRecords struct {
	mu      sync.RWMutex
	records []decoder.Record
	next    int
	full    bool
}

// NewRecentRecords creates a buffer holding up to size records
func NewRecentRecords(size int) *RecentRecords {
	if size <= 0 {
		size = 1
	}
	return &RecentRecords{records: make([]decoder.Record, size)}
}

// Add stores rec, evicting the oldest record when full
func (r *RecentRecords) Add(rec decoder.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.next] = rec
	r.next = (r.next + 1) % len(r.records)
	if r.next == 0 {
		r.full = true
	}
}

// Last returns up to n records, newest first. n <= 0 returns all of them.
func (r *RecentRecords) Last(n int) []decoder.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.full {
		count = len(r.records)
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]decoder.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, r.records[(r.next-i+len(r.records))%len(r.records)])
	}
	return out
}
