package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestScheduler_RunNowReturnsJobError(t *testing.T) {
	s := New(0, zerolog.Nop())
	boom := errors.New("boom")

	err := s.RunNow(funcJob{name: "failing", run: func(context.Context) error { return boom }})
	assert.ErrorIs(t, err, boom)
}

func TestScheduler_RunNowAppliesTimeout(t *testing.T) {
	s := New(time.Minute, zerolog.Nop())

	err := s.RunNow(funcJob{name: "deadline", run: func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	}})
	assert.NoError(t, err)
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(0, zerolog.Nop())

	err := s.AddJob("not a schedule", funcJob{name: "x", run: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestScheduler_RunsScheduledJob(t *testing.T) {
	s := New(0, zerolog.Nop())
	ran := make(chan struct{}, 1)

	require.NoError(t, s.AddJob("@every 1s", funcJob{name: "tick", run: func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}}))
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	s := New(0, zerolog.Nop())
	s.Stop()

	err := s.RunNow(funcJob{name: "after-stop", run: func(ctx context.Context) error { return ctx.Err() }})
	assert.ErrorIs(t, err, context.Canceled)
}
