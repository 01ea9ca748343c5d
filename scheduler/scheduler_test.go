package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddTicker_RunsTask(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs int32
	s.AddTicker("tick", 10*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"tick"}, s.ListTickers())
}

func TestAddTicker_ReplacesSameName(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var first, second int32
	s.AddTicker("job", 10*time.Millisecond, func() { atomic.AddInt32(&first, 1) })
	s.AddTicker("job", 10*time.Millisecond, func() { atomic.AddInt32(&second, 1) })

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&second) >= 2
	}, time.Second, 5*time.Millisecond)

	stale := atomic.LoadInt32(&first)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stale, atomic.LoadInt32(&first), "replaced task must stop running")
	assert.Len(t, s.ListTickers(), 1)
}

func TestRemove_StopsTask(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs int32
	s.AddTicker("job", 10*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	s.Remove("job")

	stale := atomic.LoadInt32(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stale, atomic.LoadInt32(&runs))
	assert.Empty(t, s.ListTickers())
}

func TestTaskPanicDoesNotKillScheduler(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs int32
	s.AddTicker("explosive", 10*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		panic("boom")
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	s := New(zap.NewNop())
	s.AddTicker("job", 10*time.Millisecond, func() {})
	s.Stop()
	s.Stop()
}
