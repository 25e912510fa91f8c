// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package schedule

import (
	"container/heap"
	"sync"
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
)

// EventKind identifies what a scheduled event does when it fires
type EventKind string

const (
	KindStrategy   EventKind = "strategy"
	KindPublish    EventKind = "publish"
	KindSample     EventKind = "sample"
	KindDailySweep EventKind = "daily_sweep"
	KindLiveness   EventKind = "liveness"
)

// Event is one pending timed action. CampaignID is empty for
// process-wide events (daily sweep, liveness).
type Event struct {
	FireAt     time.Time
	Kind       EventKind
	CampaignID ids.ID
	ContentID  ids.ID
	Platform   string
	SweepIndex int

	seq       uint64
	index     int
	cancelled bool
}

// Handler receives events as they fire. The scheduler invokes it from a
// single dispatcher goroutine (or inline under a manual clock), which
// preserves single-writer semantics for the coordinator state.
type Handler func(ev Event)

// Scheduler is a priority queue of timed events driven by a Clock.
// It replaces chained timers: one queue, one dispatch path.
type Scheduler struct {
	mu      sync.Mutex
	events  eventHeap
	seq     uint64
	clock   Clock
	handler Handler
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	running bool
	log     log.Logger
}

// New creates a scheduler on the given clock
func New(clock Clock, logger log.Logger) *Scheduler {
	return &Scheduler{
		events: make(eventHeap, 0),
		clock:  clock,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    logger,
	}
}

// SetHandler registers the event handler. Must be called before Start
// or the first Advance.
func (s *Scheduler) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Schedule enqueues an event. Events with equal fire times dispatch in
// submission order.
func (s *Scheduler) Schedule(ev Event) {
	s.mu.Lock()
	s.seq++
	ev.seq = s.seq
	heap.Push(&s.events, &ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Cancel marks pending events for a campaign as cancelled and returns
// how many were affected. With no kinds given, all kinds match.
func (s *Scheduler) Cancel(campaignID ids.ID, kinds ...EventKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := func(k EventKind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}

	n := 0
	for _, ev := range s.events {
		if !ev.cancelled && ev.CampaignID == campaignID && match(ev.Kind) {
			ev.cancelled = true
			n++
		}
	}
	return n
}

// Pending returns the number of live queued events
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if !ev.cancelled {
			n++
		}
	}
	return n
}

// Start launches the real-time dispatch loop
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.run()
}

// Stop terminates the dispatch loop and waits for it to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.quit)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		ev := s.popDue()
		if ev != nil {
			s.dispatch(*ev)
			continue
		}

		wait := s.untilNext()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.quit:
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// Advance moves a manual clock forward by d, firing due events in
// order and stepping the clock to each event's fire time. Returns the
// number of events dispatched. No-op on a real clock.
func (s *Scheduler) Advance(d time.Duration) int {
	mc, ok := s.clock.(*ManualClock)
	if !ok {
		return 0
	}

	target := mc.Now().Add(d)
	fired := 0
	for {
		ev := s.popDueBefore(target)
		if ev == nil {
			break
		}
		if ev.FireAt.After(mc.Now()) {
			mc.Set(ev.FireAt)
		}
		s.dispatch(*ev)
		fired++
	}
	mc.Set(target)
	return fired
}

func (s *Scheduler) dispatch(ev Event) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		s.log.Warn("event dropped, no handler registered", "kind", ev.Kind)
		return
	}
	h(ev)
}

// popDue removes the next live event that is due at the clock's now
func (s *Scheduler) popDue() *Event {
	return s.popDueBefore(s.clock.Now())
}

func (s *Scheduler) popDueBefore(t time.Time) *Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.events.Len() > 0 {
		next := s.events[0]
		if next.cancelled {
			heap.Pop(&s.events)
			continue
		}
		if next.FireAt.After(t) {
			return nil
		}
		return heap.Pop(&s.events).(*Event)
	}
	return nil
}

func (s *Scheduler) untilNext() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.events.Len() > 0 {
		next := s.events[0]
		if next.cancelled {
			heap.Pop(&s.events)
			continue
		}
		wait := next.FireAt.Sub(s.clock.Now())
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		return wait
	}
	return time.Hour
}

// eventHeap orders events by fire time, then submission order
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].FireAt.Equal(h[j].FireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].FireAt.Before(h[j].FireAt)
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	ev := x.(*Event)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}
