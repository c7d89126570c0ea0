package sched

import "math"

// RunStats accumulates the per-finished-job figures the scheduler core
// needs for the §6 .perf record, and derives CPU utilization / mean WTA /
// mean waiting / standard deviation of WTA from them at termination.
// Grounded on the Welford running-stat shape of
// other_examples/39da51d0_Guti2010-Proyecto-SO__internal-sched-sched.go.go's
// stat.add/stat.snapshot, adapted to a simple two-pass batch computation:
// the full set of finished jobs is known once the scheduler terminates,
// so there is no need for an online/concurrent accumulator.
type RunStats struct {
	finishedCount     int
	totalServiceTicks int
	totalWaitingTicks int
	wtaValues         []float64

	finalTick uint64
}

// Record folds one finished job's figures into the running totals. ta is
// the job's turnaround (finish tick - arrival tick), wta its weighted
// turnaround (ta / serviceTicks), waiting its accumulated waiting ticks,
// and serviceTicks its total CPU time requirement.
func (r *RunStats) Record(ta uint64, wta float64, waiting, serviceTicks int) {
	r.finishedCount++
	r.totalServiceTicks += serviceTicks
	r.totalWaitingTicks += waiting
	r.wtaValues = append(r.wtaValues, wta)
}

// SetFinalTick records the tick at which the scheduler terminated, used
// as the denominator of CPU utilization.
func (r *RunStats) SetFinalTick(tick uint64) {
	r.finalTick = tick
}

// CPUUtilization returns the percentage of the run spent executing
// finished jobs' service time.
func (r *RunStats) CPUUtilization() float64 {
	if r.finalTick == 0 {
		return 0
	}
	return float64(r.totalServiceTicks) / float64(r.finalTick) * 100
}

// AvgWTA returns the mean weighted turnaround over finished jobs.
func (r *RunStats) AvgWTA() float64 {
	if r.finishedCount == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range r.wtaValues {
		sum += w
	}
	return sum / float64(r.finishedCount)
}

// AvgWaiting returns the mean waiting ticks over finished jobs.
func (r *RunStats) AvgWaiting() float64 {
	if r.finishedCount == 0 {
		return 0
	}
	return float64(r.totalWaitingTicks) / float64(r.finishedCount)
}

// StdWTA returns the population standard deviation of weighted
// turnaround over finished jobs.
func (r *RunStats) StdWTA() float64 {
	if r.finishedCount == 0 {
		return 0
	}
	mean := r.AvgWTA()
	var sumSq float64
	for _, w := range r.wtaValues {
		d := w - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(r.finishedCount))
}

// FinishedCount returns the number of jobs recorded so far.
func (r *RunStats) FinishedCount() int { return r.finishedCount }
