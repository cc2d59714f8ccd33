package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/service"
)

type countingSweeper struct {
	calls atomic.Int32
	block chan struct{}
	err   error
}

func (c *countingSweeper) Sweep(context.Context) ([]service.InboxFile, service.InboxStats, error) {
	c.calls.Add(1)
	if c.block != nil {
		<-c.block
	}
	return []service.InboxFile{{Path: "bad.pdf", Err: "Invalid or corrupted PDF"}}, service.InboxStats{Matched: 1, Failed: 1}, c.err
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, "not a cron spec", nil)
	assert.Error(t, s.Start())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, "*/5 * * * *", nil)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	<-s.Stop().Done()
}

func TestScheduler_SweepInbox(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "@every 1h", nil)

	s.sweepInbox()
	assert.Equal(t, int32(1), sw.calls.Load())

	sw.err = errors.New("read inbox: permission denied")
	s.sweepInbox()
	assert.Equal(t, int32(2), sw.calls.Load())
}

func TestScheduler_SkipsOverlappingSweeps(t *testing.T) {
	sw := &countingSweeper{block: make(chan struct{})}
	s := NewScheduler(sw, "@every 1h", nil)

	s.RunNow()
	require.Eventually(t, func() bool { return sw.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The first sweep holds the lock, so this one returns immediately.
	s.sweepInbox()
	assert.Equal(t, int32(1), sw.calls.Load())

	close(sw.block)
}
