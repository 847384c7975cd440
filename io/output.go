package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/phil-mansfield/collide/engine"
	"github.com/phil-mansfield/collide/particle"
)

const (
	RunMetaFile = "run_meta.json"
	StepsFile   = "steps.csv"
	PairsFile   = "pairs.csv"
	SummaryFile = "summary.csv"

	metaTimeFormat = "2006-01-02 15:04:05"
)

var (
	stepsHeader   = []string{"step", "id", "x", "y", "vx", "vy", "collided"}
	pairsHeader   = []string{"step", "i", "j", "tested", "collided"}
	summaryHeader = []string{
		"method", "N", "dt", "steps", "steps_per_sec", "cand_per_particle",
		"p50_ms", "p95_ms", "energy_drift_median", "energy_drift_max",
		"seed", "box_w", "box_h", "radius",
	}
)

// RunMeta is the JSON record written at the start of every run.
type RunMeta struct {
	Method    string     `json:"method"`
	N         int        `json:"N"`
	Radius    float64    `json:"radius"`
	Box       [2]float64 `json:"box"`
	Dt        float64    `json:"dt"`
	Steps     int        `json:"steps"`
	Seed      int64      `json:"seed"`
	StartTime string     `json:"start_time"`
}

// NewRunMeta describes a run of n bodies configured by con which starts at
// the given time.
func NewRunMeta(con *RunConfig, n int, start time.Time) *RunMeta {
	return &RunMeta{
		Method:    con.EngineMethod().String(),
		N:         n,
		Radius:    con.Radius,
		Box:       [2]float64{con.BoxWidth, con.BoxHeight},
		Dt:        con.Dt,
		Steps:     con.TotalSteps(),
		Seed:      con.Seed,
		StartTime: start.Format(metaTimeFormat),
	}
}

// WriteRunMeta writes meta to run_meta.json in the directory dir.
func WriteRunMeta(dir string, meta *RunMeta) error {
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path.Join(dir, RunMetaFile), b, 0644)
}

// RunWriter streams per-step body states and tested pairs to disk. Either
// stream may be switched off.
type RunWriter struct {
	stepsFile, pairsFile *os.File
	steps, pairs         *csv.Writer
	row                  []string
}

// NewRunWriter creates the output directory and opens steps.csv and, if
// logPairs is true, pairs.csv inside it. If summaryOnly is true, neither file
// is created.
func NewRunWriter(dir string, summaryOnly, logPairs bool) (*RunWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	w := &RunWriter{row: make([]string, 0, len(stepsHeader))}
	if summaryOnly {
		return w, nil
	}

	var err error
	w.stepsFile, w.steps, err = createCSV(path.Join(dir, StepsFile), stepsHeader)
	if err != nil {
		return nil, err
	}
	if logPairs {
		w.pairsFile, w.pairs, err = createCSV(
			path.Join(dir, PairsFile), pairsHeader,
		)
		if err != nil {
			w.stepsFile.Close()
			return nil, err
		}
	}
	return w, nil
}

func createCSV(fname string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, w, nil
}

// WriteStep writes one row per body for the given step.
func (w *RunWriter) WriteStep(step int, bodies []particle.Body) error {
	if w.steps == nil {
		return nil
	}
	s := strconv.Itoa(step)
	for i := range bodies {
		b := &bodies[i]
		w.row = append(w.row[:0], s, strconv.Itoa(b.ID),
			formatFloat(b.X), formatFloat(b.Y),
			formatFloat(b.VX), formatFloat(b.VY), formatBool(b.Collided),
		)
		if err := w.steps.Write(w.row); err != nil {
			return err
		}
	}
	return nil
}

// WritePairs writes one row per tested pair for the given step.
func (w *RunWriter) WritePairs(step int, pairs []engine.Pair) error {
	if w.pairs == nil {
		return nil
	}
	s := strconv.Itoa(step)
	for _, p := range pairs {
		w.row = append(w.row[:0], s, strconv.Itoa(p.I), strconv.Itoa(p.J),
			"1", formatBool(p.Collided),
		)
		if err := w.pairs.Write(w.row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes every open file.
func (w *RunWriter) Close() error {
	var first error
	if w.steps != nil {
		first = closeCSV(w.stepsFile, w.steps)
	}
	if w.pairs != nil {
		if err := closeCSV(w.pairsFile, w.pairs); first == nil {
			first = err
		}
	}
	return first
}

func closeCSV(f *os.File, w *csv.Writer) error {
	w.Flush()
	err := w.Error()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Summary is the single row appended to summary.csv at the end of a run.
type Summary struct {
	Method                            string
	N                                 int
	Dt                                float64
	Steps                             int
	StepsPerSec, CandPerParticle      float64
	P50, P95                          float64
	EnergyDriftMedian, EnergyDriftMax float64
	// NoEnergy is set if energy wasn't tracked. Drifts are then reported
	// as zero.
	NoEnergy bool

	Seed                        int64
	BoxWidth, BoxHeight, Radius float64
}

func (s *Summary) drifts() (median, max float64) {
	if s.NoEnergy {
		return 0, 0
	}
	return s.EnergyDriftMedian, s.EnergyDriftMax
}

func (s *Summary) record() []string {
	median, max := s.drifts()
	return []string{
		s.Method, strconv.Itoa(s.N), formatFloat(s.Dt), strconv.Itoa(s.Steps),
		formatFloat(s.StepsPerSec), formatFloat(s.CandPerParticle),
		formatFloat(s.P50), formatFloat(s.P95),
		fmt.Sprintf("%.6e", median), fmt.Sprintf("%.6e", max),
		strconv.FormatInt(s.Seed, 10), formatFloat(s.BoxWidth),
		formatFloat(s.BoxHeight), formatFloat(s.Radius),
	}
}

// String returns the one-line console form of s.
func (s *Summary) String() string {
	line := fmt.Sprintf(
		"method=%s N=%d dt=%.3f steps=%d steps_per_sec=%.1f "+
			"cand_per_particle=%.2f p50_ms=%.2f p95_ms=%.2f",
		s.Method, s.N, s.Dt, s.Steps, s.StepsPerSec, s.CandPerParticle,
		s.P50, s.P95,
	)
	if s.NoEnergy {
		return line + " energy_drift_median=0.0 energy_drift_max=0.0"
	}
	return line + fmt.Sprintf(
		" energy_drift_median=%.1e energy_drift_max=%.1e",
		s.EnergyDriftMedian, s.EnergyDriftMax,
	)
}

// AppendSummary appends s to summary.csv in the directory dir, writing a
// header first if the file doesn't exist yet.
func AppendSummary(dir string, s *Summary) error {
	fname := path.Join(dir, SummaryFile)
	_, err := os.Stat(fname)
	isNew := os.IsNotExist(err)

	f, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(summaryHeader); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Write(s.record()); err != nil {
		f.Close()
		return err
	}
	return closeCSV(f, w)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
