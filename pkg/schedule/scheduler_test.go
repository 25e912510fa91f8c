// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
)

func TestAdvanceFiresInOrder(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	s := New(clock, log.NoOp())

	var fired []EventKind
	s.SetHandler(func(ev Event) {
		fired = append(fired, ev.Kind)
		// The clock must sit exactly at the event's fire time
		require.Equal(ev.FireAt, clock.Now())
	})

	s.Schedule(Event{FireAt: start.Add(30 * time.Minute), Kind: KindSample})
	s.Schedule(Event{FireAt: start.Add(10 * time.Minute), Kind: KindStrategy})
	s.Schedule(Event{FireAt: start.Add(20 * time.Minute), Kind: KindPublish})

	n := s.Advance(time.Hour)
	require.Equal(3, n)
	require.Equal([]EventKind{KindStrategy, KindPublish, KindSample}, fired)
	require.Equal(start.Add(time.Hour), clock.Now())
	require.Zero(s.Pending())
}

func TestAdvanceStopsAtTarget(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	s := New(clock, log.NoOp())
	s.SetHandler(func(Event) {})

	s.Schedule(Event{FireAt: start.Add(10 * time.Minute), Kind: KindSample})
	s.Schedule(Event{FireAt: start.Add(2 * time.Hour), Kind: KindSample})

	require.Equal(1, s.Advance(time.Hour))
	require.Equal(1, s.Pending())

	require.Equal(1, s.Advance(2*time.Hour))
	require.Zero(s.Pending())
}

func TestEqualFireTimesKeepSubmissionOrder(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	s := New(clock, log.NoOp())

	var order []string
	s.SetHandler(func(ev Event) { order = append(order, ev.Platform) })

	at := start.Add(time.Minute)
	s.Schedule(Event{FireAt: at, Kind: KindPublish, Platform: "first"})
	s.Schedule(Event{FireAt: at, Kind: KindPublish, Platform: "second"})
	s.Schedule(Event{FireAt: at, Kind: KindPublish, Platform: "third"})

	s.Advance(time.Minute)
	require.Equal([]string{"first", "second", "third"}, order)
}

func TestCancelByKind(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	s := New(clock, log.NoOp())

	var fired []EventKind
	s.SetHandler(func(ev Event) { fired = append(fired, ev.Kind) })

	target := ids.New()
	other := ids.New()
	s.Schedule(Event{FireAt: start.Add(time.Minute), Kind: KindPublish, CampaignID: target})
	s.Schedule(Event{FireAt: start.Add(time.Minute), Kind: KindSample, CampaignID: target})
	s.Schedule(Event{FireAt: start.Add(time.Minute), Kind: KindPublish, CampaignID: other})

	n := s.Cancel(target, KindPublish)
	require.Equal(1, n)

	s.Advance(time.Hour)
	// The target's sample and the other campaign's publish still fire
	require.ElementsMatch([]EventKind{KindSample, KindPublish}, fired)
}

func TestCancelAllKinds(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	s := New(clock, log.NoOp())
	s.SetHandler(func(Event) { t.Fatal("cancelled event fired") })

	id := ids.New()
	s.Schedule(Event{FireAt: start.Add(time.Minute), Kind: KindPublish, CampaignID: id})
	s.Schedule(Event{FireAt: start.Add(time.Minute), Kind: KindSample, CampaignID: id})

	require.Equal(2, s.Cancel(id))
	s.Advance(time.Hour)
}

func TestHandlerCanReschedule(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	s := New(clock, log.NoOp())

	count := 0
	s.SetHandler(func(ev Event) {
		count++
		if count < 3 {
			s.Schedule(Event{FireAt: clock.Now().Add(10 * time.Minute), Kind: KindSample})
		}
	})

	s.Schedule(Event{FireAt: start.Add(10 * time.Minute), Kind: KindSample})
	require.Equal(3, s.Advance(time.Hour))
	require.Equal(3, count)
}

func TestRealTimeLoop(t *testing.T) {
	defer goleak.VerifyNone(t)
	require := require.New(t)

	s := New(RealClock{}, log.NoOp())

	var mu sync.Mutex
	fired := 0
	s.SetHandler(func(Event) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	s.Start()
	s.Schedule(Event{FireAt: time.Now().Add(5 * time.Millisecond), Kind: KindSample})
	s.Schedule(Event{FireAt: time.Now().Add(10 * time.Millisecond), Kind: KindSample})

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		done := fired == 2
		mu.Unlock()
		if done {
			break
		}
		require.True(time.Now().Before(deadline), "events did not fire in time")
		time.Sleep(5 * time.Millisecond)
	}

	s.Stop()
}

func TestManualClockNeverMovesBackwards(t *testing.T) {
	require := require.New(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	clock.Set(start.Add(-time.Hour))
	require.Equal(start, clock.Now())

	clock.Set(start.Add(time.Hour))
	require.Equal(start.Add(time.Hour), clock.Now())
}
