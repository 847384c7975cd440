/*package metrics collects per-step timings and collision counts over a run
and reduces them to the numbers reported in run summaries.
*/
package metrics

import (
	"math"
	"sort"
	"time"
)

// StepSample is the record of a single step.
type StepSample struct {
	Duration   time.Duration
	Candidates int
}

// Metrics accumulates the samples of one run. Call BeginStep and EndStep
// around every step, then Finalize once the run is over.
type Metrics struct {
	// Computed by Finalize.
	StepsPerSec       float64
	P50, P95          float64 // milliseconds
	CandPerParticle   float64
	EnergyDriftMedian float64
	EnergyDriftMax    float64

	n               int
	samples         []StepSample
	energies        []float64
	totalCandidates int64
	totalCollisions int

	clock                       func() time.Time
	runStart, runEnd, stepStart time.Time
}

// New returns a Metrics instance for a run of n bodies. The run clock starts
// immediately.
func New(n int) *Metrics {
	m := &Metrics{n: n, clock: time.Now}
	m.runStart = m.clock()
	m.runEnd = m.runStart
	return m
}

// BeginStep starts the timer for the current step.
func (m *Metrics) BeginStep() {
	m.stepStart = m.clock()
}

// EndStep stops the step timer and records the number of candidates the
// step examined.
func (m *Metrics) EndStep(candidates int) {
	end := m.clock()
	m.samples = append(m.samples, StepSample{end.Sub(m.stepStart), candidates})
	m.totalCandidates += int64(candidates)
	m.runEnd = end
}

// RecordCollisions adds to the run's collision total.
func (m *Metrics) RecordCollisions(n int) { m.totalCollisions += n }

// RecordEnergy records a kinetic energy sample.
func (m *Metrics) RecordEnergy(e float64) {
	m.energies = append(m.energies, e)
}

// Steps returns the number of steps recorded so far.
func (m *Metrics) Steps() int { return len(m.samples) }

// TotalCollisions returns the number of collisions recorded so far.
func (m *Metrics) TotalCollisions() int { return m.totalCollisions }

// Samples returns every step sample in order.
func (m *Metrics) Samples() []StepSample { return m.samples }

// Energies returns every energy sample in order.
func (m *Metrics) Energies() []float64 { return m.energies }

// Finalize computes the summary fields. e0 is the energy the drift of every
// energy sample is measured against; drifts are left at zero if e0 isn't
// positive. Finalize does nothing if no steps were recorded.
func (m *Metrics) Finalize(e0 float64) {
	if len(m.samples) == 0 {
		return
	}

	wall := m.runEnd.Sub(m.runStart).Seconds()
	if wall > 0 {
		m.StepsPerSec = float64(len(m.samples)) / wall
	}

	ms := make([]float64, len(m.samples))
	for i := range m.samples {
		ms[i] = float64(m.samples[i].Duration) / float64(time.Millisecond)
	}
	sort.Float64s(ms)
	m.P50 = percentile(ms, 0.50)
	m.P95 = percentile(ms, 0.95)

	if m.n > 0 {
		m.CandPerParticle = float64(m.totalCandidates) /
			float64(m.n*len(m.samples))
	}

	if len(m.energies) > 0 && e0 > 0 {
		drifts := make([]float64, len(m.energies))
		for i, e := range m.energies {
			drifts[i] = math.Abs((e - e0) / e0)
		}
		sort.Float64s(drifts)
		m.EnergyDriftMedian = drifts[len(drifts)/2]
		m.EnergyDriftMax = drifts[len(drifts)-1]
	}
}

// percentile returns the element at floor(p * (n - 1)) of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	return sorted[int(math.Floor(p*float64(len(sorted)-1)))]
}
