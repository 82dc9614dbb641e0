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

type recordingJob struct {
	name        string
	err         error
	ran         bool
	hadDeadline bool
	ctxErr      error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context) error {
	j.ran = true
	_, j.hadDeadline = ctx.Deadline()
	j.ctxErr = ctx.Err()
	return j.err
}

func TestRunNow_BoundsJobWithTimeout(t *testing.T) {
	s := New(zerolog.Nop())
	job := &recordingJob{name: "bounded"}

	err := s.RunNow(context.Background(), time.Minute, job)
	require.NoError(t, err)

	assert.True(t, job.ran)
	assert.True(t, job.hadDeadline, "timeout must reach the job as a context deadline")
	assert.NoError(t, job.ctxErr)
}

func TestRunNow_ZeroTimeoutMeansNoDeadline(t *testing.T) {
	s := New(zerolog.Nop())
	job := &recordingJob{name: "unbounded"}

	require.NoError(t, s.RunNow(context.Background(), 0, job))
	assert.False(t, job.hadDeadline)
}

func TestRunNow_PropagatesJobError(t *testing.T) {
	s := New(zerolog.Nop())
	wantErr := errors.New("refresh failed")
	job := &recordingJob{name: "failing", err: wantErr}

	assert.ErrorIs(t, s.RunNow(context.Background(), time.Minute, job), wantErr)
}

func TestStop_CancelsScheduledJobContext(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", time.Minute, &recordingJob{name: "scheduled"}))

	s.Start()
	s.Stop()

	// Scheduled runs derive from the scheduler context, which Stop cancels.
	job := &recordingJob{name: "after_stop"}
	_ = s.runJob(s.ctx, time.Minute, job)
	assert.ErrorIs(t, job.ctxErr, context.Canceled)
}

func TestAddJob_RejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	assert.Error(t, s.AddJob("not a schedule", time.Minute, &recordingJob{name: "bad"}))
}
