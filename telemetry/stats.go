package telemetry

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/brunoscheufler/pim/store"
	"github.com/dustin/go-humanize"
)

// StatsCollector counts store operations issued by the front end.
type StatsCollector struct {
	contactStore store.ContactStore
	noteStore    store.NoteStore

	contactReads  atomic.Int64
	contactWrites atomic.Int64
	noteReads     atomic.Int64
	noteWrites    atomic.Int64
	failures      atomic.Int64

	lastOperation atomic.Int64 // unix nanoseconds
	startTime     time.Time
}

type Stats struct {
	ContactCount  int
	NoteCount     int
	ContactReads  int64
	ContactWrites int64
	NoteReads     int64
	NoteWrites    int64
	Failures      int64
	LastOperation string
	Uptime        time.Duration
	GoRoutines    int
	MemoryUsage   string
	LastUpdated   time.Time
}

func NewStatsCollector(contactStore store.ContactStore, noteStore store.NoteStore) *StatsCollector {
	return &StatsCollector{
		contactStore: contactStore,
		noteStore:    noteStore,
		startTime:    time.Now(),
	}
}

func (sc *StatsCollector) IncrementContactRead() {
	sc.contactReads.Add(1)
	sc.touch()
}

func (sc *StatsCollector) IncrementContactWrite() {
	sc.contactWrites.Add(1)
	sc.touch()
}

func (sc *StatsCollector) IncrementNoteRead() {
	sc.noteReads.Add(1)
	sc.touch()
}

func (sc *StatsCollector) IncrementNoteWrite() {
	sc.noteWrites.Add(1)
	sc.touch()
}

func (sc *StatsCollector) IncrementFailure() {
	sc.failures.Add(1)
}

func (sc *StatsCollector) touch() {
	sc.lastOperation.Store(time.Now().UnixNano())
}

func (sc *StatsCollector) CollectStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		LastUpdated:   time.Now(),
		Uptime:        time.Since(sc.startTime),
		GoRoutines:    runtime.NumGoroutine(),
		ContactReads:  sc.contactReads.Load(),
		ContactWrites: sc.contactWrites.Load(),
		NoteReads:     sc.noteReads.Load(),
		NoteWrites:    sc.noteWrites.Load(),
		Failures:      sc.failures.Load(),
		LastOperation: "never",
	}

	if sc.contactStore != nil {
		count, err := sc.contactStore.CountContacts(ctx)
		if err == nil {
			stats.ContactCount = count
		}
	}

	if sc.noteStore != nil {
		count, err := sc.noteStore.CountNotes(ctx)
		if err == nil {
			stats.NoteCount = count
		}
	}

	if last := sc.lastOperation.Load(); last != 0 {
		stats.LastOperation = humanize.Time(time.Unix(0, last))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryUsage = humanize.Bytes(m.Alloc)

	return stats, nil
}
