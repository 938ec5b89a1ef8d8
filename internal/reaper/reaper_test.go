package reaper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	sweeps atomic.Int64
	err    error
}

func (s *fakeStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.sweeps.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return 1, nil
}

func TestReaperSweepsImmediatelyOnStart(t *testing.T) {
	store := &fakeStore{}
	r := New(store, time.Hour)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		return store.sweeps.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestReaperSweepsOnInterval(t *testing.T) {
	store := &fakeStore{}
	r := New(store, 20*time.Millisecond)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		return store.sweeps.Load() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestReaperStopHaltsSweeping(t *testing.T) {
	store := &fakeStore{}
	r := New(store, 10*time.Millisecond)
	r.Start()
	require.Eventually(t, func() bool {
		return store.sweeps.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	after := store.sweeps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, store.sweeps.Load())
}

func TestReaperKeepsRunningAfterStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection lost")}
	r := New(store, 15*time.Millisecond)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool {
		return store.sweeps.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestReaperStopBeforeStartIsSafe(t *testing.T) {
	r := New(&fakeStore{}, time.Minute)
	assert.NotPanics(t, func() { r.Stop() })
}

func TestNewDefaultsNonPositiveInterval(t *testing.T) {
	r := New(&fakeStore{}, 0)
	assert.Equal(t, time.Minute, r.interval)
}
