package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/agentkit/internal/capability"
)

func TestBufferAppendOnly(t *testing.T) {
	var b Buffer
	now := time.Now()
	b.Append(Turn{Role: RoleUser, Text: "hi", At: now})
	b.Append(Turn{Role: RoleAssistant, Text: "hello", At: now})

	turns := b.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[1].Text)

	turns[0].Text = "mutated"
	assert.Equal(t, "hi", b.Turns()[0].Text)
}

func TestBufferConcurrentAppend(t *testing.T) {
	var b Buffer
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Append(Turn{Role: RoleUser, Text: "q"}, Turn{Role: RoleAssistant, Text: "a"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, b.Len())

	turns := b.Turns()
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, RoleUser, turns[i].Role)
		assert.Equal(t, RoleAssistant, turns[i+1].Role)
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	s := NewStore()
	s.Buffer("a").Append(Turn{Role: RoleUser, Text: "one"})
	assert.Equal(t, 1, s.Buffer("a").Len())
	assert.Equal(t, 0, s.Buffer("b").Len())
	assert.Same(t, s.Buffer("a"), s.Buffer("a"))
	assert.Equal(t, 2, s.Len())
}

func TestStoreTranscript(t *testing.T) {
	s := NewStore()
	_, ok := s.Transcript("x")
	assert.False(t, ok)

	s.SetTranscript("x", capability.Structured(map[string]any{"transcription": "hello"}))
	res, ok := s.Transcript("x")
	require.True(t, ok)
	assert.Equal(t, "hello", res.Fields["transcription"])

	_, ok = s.Transcript("y")
	assert.False(t, ok)
}

func TestSessionID(t *testing.T) {
	id := NewSessionID()
	assert.True(t, ValidSessionID(id))
	assert.NotEqual(t, id, NewSessionID())
	assert.False(t, ValidSessionID("not-a-uuid"))
}

func TestStoreLastTool(t *testing.T) {
	s := NewStore()
	assert.Equal(t, "", s.LastTool("x"))
	s.SetLastTool("x", "translation")
	s.SetLastTool("x", "summarization")
	assert.Equal(t, "summarization", s.LastTool("x"))
	assert.Equal(t, "", s.LastTool("y"))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStoreSweepDropsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(WithIdleTTL(10*time.Minute), WithClock(clock.Now))

	s.Append("old", Turn{Role: RoleUser, Text: "hi"})
	clock.Advance(8 * time.Minute)
	s.SetLastTool("fresh", "translation")
	clock.Advance(3 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.History("old"))
	assert.Equal(t, "translation", s.LastTool("fresh"))
}

func TestStoreReadsKeepSessionAlive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(WithIdleTTL(10*time.Minute), WithClock(clock.Now))

	s.SetTranscript("a", capability.Text("hello"))
	clock.Advance(9 * time.Minute)
	_, ok := s.Transcript("a")
	require.True(t, ok)
	clock.Advance(9 * time.Minute)

	assert.Zero(t, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStoreMissingSessionReadsDoNotCreate(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.History("x"))
	_, _ = s.Transcript("x")
	_ = s.LastTool("x")
	assert.Zero(t, s.Len())
}

func TestStoreCapEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(WithMaxSessions(3), WithClock(clock.Now))

	for _, id := range []string{"a", "b", "c"} {
		s.Append(id, Turn{Role: RoleUser, Text: id})
		clock.Advance(time.Second)
	}
	s.LastTool("a")
	clock.Advance(time.Second)

	s.Append("d", Turn{Role: RoleUser, Text: "d"})
	assert.Equal(t, 3, s.Len())
	assert.Nil(t, s.History("b"))
	assert.Len(t, s.History("a"), 1)
	assert.Len(t, s.History("d"), 1)

	for i := 0; i < 1000; i++ {
		s.Append(NewSessionID(), Turn{Role: RoleUser, Text: "x"})
	}
	assert.Equal(t, 3, s.Len())
}

func TestStoreLockedSessionIsNotEvicted(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(WithIdleTTL(time.Minute), WithMaxSessions(1), WithClock(clock.Now))

	unlock := s.Lock("busy")
	clock.Advance(time.Hour)
	assert.Zero(t, s.Sweep())

	s.Append("other", Turn{Role: RoleUser, Text: "x"})
	assert.Equal(t, 2, s.Len())

	unlock()
	clock.Advance(time.Hour)
	assert.Equal(t, 2, s.Sweep())
}

func TestStoreLockSerializes(t *testing.T) {
	s := NewStore()
	unlock := s.Lock("a")

	acquired := make(chan struct{})
	go func() {
		release := s.Lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	<-acquired
}

func TestStoreRunStopsOnCancel(t *testing.T) {
	s := NewStore(WithIdleTTL(time.Nanosecond))
	s.Append("a", Turn{Role: RoleUser, Text: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
