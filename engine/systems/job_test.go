package systems

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunAll(t *testing.T) {
	js, err := NewJobSystem(4, 1)
	require.NoError(t, err)
	defer js.Shutdown()

	var ran, completed, callbacks atomic.Int32
	tasks := make([]JobTask, 32)
	for i := range tasks {
		tasks[i] = JobTask{
			Name:                 "count",
			Run:                  func() error { ran.Add(1); return nil },
			OnComplete:           func() { completed.Add(1) },
			OnCompletionCallback: func() { callbacks.Add(1) },
		}
	}
	require.NoError(t, js.RunAll(tasks))
	assert.Equal(t, int32(32), ran.Load())
	assert.Equal(t, int32(32), completed.Load())
	assert.Equal(t, int32(32), callbacks.Load())
}

func TestJobSystemRunAllReturnsFirstError(t *testing.T) {
	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	first := errors.New("first")
	second := errors.New("second")
	var failures atomic.Int32
	tasks := []JobTask{
		{Name: "ok", Run: func() error { return nil }},
		{Name: "a", Run: func() error { return first }, OnFailure: func(error) { failures.Add(1) }},
		{Name: "b", Run: func() error { return second }},
	}
	assert.ErrorIs(t, js.RunAll(tasks), first)
	assert.Equal(t, int32(1), failures.Load())
	assert.NoError(t, js.RunAll(nil))
}

func TestJobSystemShutdownDrainsQueue(t *testing.T) {
	js, err := NewJobSystem(1, 8)
	require.NoError(t, err)

	var ran atomic.Int32
	for i := 0; i < 8; i++ {
		js.Submit(JobTask{Name: "queued", Run: func() error { ran.Add(1); return nil }})
	}
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	assert.Equal(t, int32(8), ran.Load())
}
