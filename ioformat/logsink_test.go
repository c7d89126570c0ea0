package ioformat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opslab/schedsim/job"
)

func newTestState(t *testing.T) *job.State {
	t.Helper()
	d := job.Descriptor{ID: 1, ArrivalTick: 0, ServiceTicks: 5, Priority: 1, MemBytes: 64}
	return job.NewState(d, 0, job.NewControlSlot())
}

func TestLogSinkWritesHeaderOnConstruction(t *testing.T) {
	var sched, mem bytes.Buffer
	s, err := NewLogSink(&sched, &mem)
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	assert.Equal(t, schedulerLogHeader, sched.String())
	assert.Empty(t, mem.String())
}

func TestLogSinkJobLifecycleLines(t *testing.T) {
	var sched, mem bytes.Buffer
	s, err := NewLogSink(&sched, &mem)
	require.NoError(t, err)

	j := newTestState(t)
	j.WaitingTicks = 0
	s.JobStarted(0, j)

	j.RemainingTicks = 3
	j.WaitingTicks = 2
	s.JobStopped(2, j)

	j.WaitingTicks = 4
	s.JobResumed(4, j)

	j.RemainingTicks = 0
	s.JobFinished(5, j, 5, 1.00)

	require.NoError(t, s.Flush())
	lines := sched.String()
	assert.Contains(t, lines, "At time 0 process 1 started arr 0 total 5 remain 5 wait 0\n")
	assert.Contains(t, lines, "At time 2 process 1 stopped arr 0 total 5 remain 3 wait 2\n")
	assert.Contains(t, lines, "At time 4 process 1 resumed arr 0 total 5 remain 3 wait 4\n")
	assert.Contains(t, lines, "At time 5 process 1 finished arr 0 total 5 remain 0 wait 4 TA 5 WTA 1.00\n")
}

func TestLogSinkMemoryLines(t *testing.T) {
	var sched, mem bytes.Buffer
	s, err := NewLogSink(&sched, &mem)
	require.NoError(t, err)

	s.MemoryAllocated(0, 1, 64, 0, 63)
	s.MemoryFreed(5, 1, 64, 0, 63)

	require.NoError(t, s.Flush())
	assert.Equal(t,
		"At time 0 allocated 64 bytes for process 1 from 0 to 63\n"+
			"At time 5 freed 64 bytes for process 1 from 0 to 63\n",
		mem.String())
}
