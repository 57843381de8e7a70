package tracker

import (
	"sync/atomic"

	"request-rate-service/domain"
)

type node struct {
	event domain.RequestEvent
	next  atomic.Pointer[node]
}

// EventLog is an unbounded lock-free FIFO of request events.
// Append may be called from any number of goroutines.
// Peek, RemoveHead and Range must be called by a single consumer at a time.
type EventLog struct {
	head atomic.Pointer[node] // sentinel, its event is never read
	tail atomic.Pointer[node]
	size atomic.Int64
}

func NewEventLog() *EventLog {
	sentinel := &node{}
	l := &EventLog{}
	l.head.Store(sentinel)
	l.tail.Store(sentinel)
	return l
}

func (l *EventLog) Append(event domain.RequestEvent) {
	n := &node{event: event}
	for {
		tail := l.tail.Load()
		next := tail.next.Load()
		if tail != l.tail.Load() {
			continue
		}
		if next != nil {
			l.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			l.tail.CompareAndSwap(tail, n)
			l.size.Add(1)
			return
		}
	}
}

func (l *EventLog) Peek() (domain.RequestEvent, bool) {
	first := l.head.Load().next.Load()
	if first == nil {
		return domain.RequestEvent{}, false
	}
	return first.event, true
}

func (l *EventLog) RemoveHead() bool {
	head := l.head.Load()
	first := head.next.Load()
	if first == nil {
		return false
	}
	tail := l.tail.Load()
	if head == tail {
		l.tail.CompareAndSwap(tail, first)
	}
	l.head.Store(first)
	l.size.Add(-1)
	return true
}

// Range visits events from oldest to newest until visit returns false.
// Events appended while ranging may or may not be visited.
func (l *EventLog) Range(visit func(event domain.RequestEvent) bool) {
	for n := l.head.Load().next.Load(); n != nil; n = n.next.Load() {
		if !visit(n.event) {
			return
		}
	}
}

// Len is approximate while appends are in flight.
func (l *EventLog) Len() int {
	size := l.size.Load()
	if size < 0 {
		return 0
	}
	return int(size)
}
