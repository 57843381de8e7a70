package tracker

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"request-rate-service/domain"
)

const (
	DefaultWindow = 1000 * time.Millisecond
)

type NameResolver interface {
	Resolve(sourceAddress string) string
}

type addressPeak struct {
	address string
	peak    int
}

// Tracker counts requests per source address over a trailing window and
// remembers the highest count ever observed, globally and per address.
//
// Record is lock-free. Snapshot calls are serialized with each other only.
// Per address peaks are never forgotten, so memory grows with the number of
// distinct addresses seen during the process lifetime.
type Tracker struct {
	windowMs int64
	names    NameResolver
	log      *EventLog

	peakGlobal atomic.Int64

	lock sync.Mutex
	// first seen order, used as tie-break for equal peaks
	peaks        []addressPeak
	peakPosition map[string]int
}

func New(window time.Duration, names NameResolver) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		windowMs:     window.Milliseconds(),
		names:        names,
		log:          NewEventLog(),
		peakPosition: make(map[string]int),
	}
}

func (t *Tracker) Record(sourceAddress string, now int64) {
	t.log.Append(domain.RequestEvent{
		Timestamp:     now,
		SourceAddress: sourceAddress,
	})
}

func (t *Tracker) Snapshot(now int64) domain.Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.evict(now)

	current := 0
	currentByAddress := make(map[string]int)
	var activeOrder []string
	t.log.Range(func(event domain.RequestEvent) bool {
		// appends are not ordered by timestamp, eviction stops at the first fresh head
		if event.Timestamp > now || now-event.Timestamp > t.windowMs {
			return true
		}
		current++
		count, ok := currentByAddress[event.SourceAddress]
		if !ok {
			activeOrder = append(activeOrder, event.SourceAddress)
		}
		currentByAddress[event.SourceAddress] = count + 1
		return true
	})

	peak := t.updateGlobalPeak(current)
	for _, address := range activeOrder {
		t.updateAddressPeak(address, currentByAddress[address])
	}

	return domain.Stats{
		Current: current,
		Peak:    peak,
		Ranking: t.ranking(currentByAddress),
	}
}

func (t *Tracker) Peak() int {
	return int(t.peakGlobal.Load())
}

// Pending returns an approximate number of events retained since the last eviction.
func (t *Tracker) Pending() int {
	return t.log.Len()
}

func (t *Tracker) evict(now int64) {
	for {
		event, ok := t.log.Peek()
		if !ok || now-event.Timestamp <= t.windowMs {
			return
		}
		t.log.RemoveHead()
	}
}

func (t *Tracker) updateGlobalPeak(current int) int {
	value := int64(current)
	for {
		peak := t.peakGlobal.Load()
		if value <= peak {
			return int(peak)
		}
		if t.peakGlobal.CompareAndSwap(peak, value) {
			return current
		}
	}
}

func (t *Tracker) updateAddressPeak(address string, current int) {
	position, ok := t.peakPosition[address]
	if !ok {
		t.peakPosition[address] = len(t.peaks)
		t.peaks = append(t.peaks, addressPeak{address: address, peak: current})
		return
	}
	if current > t.peaks[position].peak {
		t.peaks[position].peak = current
	}
}

func (t *Tracker) ranking(currentByAddress map[string]int) []domain.RankingEntry {
	if len(t.peaks) == 0 {
		return nil
	}

	ordered := slices.Clone(t.peaks)
	slices.SortStableFunc(ordered, func(a, b addressPeak) int {
		return b.peak - a.peak
	})

	result := make([]domain.RankingEntry, 0, len(ordered))
	for i, item := range ordered {
		result = append(result, domain.RankingEntry{
			Rank:        i + 1,
			Address:     item.address,
			DisplayName: t.displayName(item.address),
			Current:     currentByAddress[item.address],
			Peak:        item.peak,
		})
	}
	return result
}

func (t *Tracker) displayName(address string) string {
	if t.names == nil {
		return address
	}
	return t.names.Resolve(address)
}
