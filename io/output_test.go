package io

import (
	"encoding/csv"
	"encoding/json"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/collide/engine"
	"github.com/phil-mansfield/collide/particle"
)

func readCSV(t *testing.T, fname string) [][]string {
	f, err := os.Open(fname)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteRunMeta(t *testing.T) {
	dir, err := ioutil.TempDir("", "collide-io")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	con := &DefaultRunWrapper().Run
	con.Method = "hash"
	start := time.Date(2020, 3, 4, 5, 6, 7, 0, time.Local)
	require.NoError(t, WriteRunMeta(dir, NewRunMeta(con, 42, start)))

	b, err := ioutil.ReadFile(path.Join(dir, RunMetaFile))
	require.NoError(t, err)
	meta := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(b, &meta))

	assert.Equal(t, "hash", meta["method"])
	assert.Equal(t, 42.0, meta["N"])
	assert.Equal(t, 5.0, meta["radius"])
	assert.Equal(t, []interface{}{800.0, 600.0}, meta["box"])
	assert.Equal(t, 0.002, meta["dt"])
	assert.Equal(t, 1000.0, meta["steps"])
	assert.Equal(t, 1337.0, meta["seed"])
	assert.Equal(t, "2020-03-04 05:06:07", meta["start_time"])
}

func TestRunWriter(t *testing.T) {
	dir, err := ioutil.TempDir("", "collide-io")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	out := path.Join(dir, "nested", "out")

	w, err := NewRunWriter(out, false, true)
	require.NoError(t, err)

	s := particle.NewStore(2)
	s.Add(1.5, 2, -3, 4.25, 1)
	s.Add(10, 20, 0, 0, 1)
	s.Bodies[1].Collided = true

	require.NoError(t, w.WriteStep(0, s.Bodies))
	require.NoError(t, w.WritePairs(0, []engine.Pair{{0, 1, true}}))
	require.NoError(t, w.WriteStep(1, s.Bodies[:1]))
	require.NoError(t, w.Close())

	steps := readCSV(t, path.Join(out, StepsFile))
	assert.Equal(t, [][]string{
		stepsHeader,
		{"0", "0", "1.500000", "2.000000", "-3.000000", "4.250000", "0"},
		{"0", "1", "10.000000", "20.000000", "0.000000", "0.000000", "1"},
		{"1", "0", "1.500000", "2.000000", "-3.000000", "4.250000", "0"},
	}, steps)

	pairs := readCSV(t, path.Join(out, PairsFile))
	assert.Equal(t, [][]string{pairsHeader, {"0", "0", "1", "1", "1"}}, pairs)
}

func TestRunWriterOptional(t *testing.T) {
	dir, err := ioutil.TempDir("", "collide-io")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	w, err := NewRunWriter(dir, false, false)
	require.NoError(t, err)
	require.NoError(t, w.WritePairs(0, []engine.Pair{{0, 1, true}}))
	require.NoError(t, w.Close())
	_, err = os.Stat(path.Join(dir, PairsFile))
	assert.True(t, os.IsNotExist(err))

	sub := path.Join(dir, "summary-only")
	w, err = NewRunWriter(sub, true, true)
	require.NoError(t, err)
	require.NoError(t, w.WriteStep(0, []particle.Body{{}}))
	require.NoError(t, w.Close())
	files, err := ioutil.ReadDir(sub)
	require.NoError(t, err)
	assert.Len(t, files, 0)
}

func TestAppendSummary(t *testing.T) {
	dir, err := ioutil.TempDir("", "collide-io")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s := &Summary{
		Method: "quadtree", N: 100, Dt: 0.002, Steps: 1000,
		StepsPerSec: 1234.5, CandPerParticle: 3.25, P50: 0.5, P95: 1.25,
		EnergyDriftMedian: 1.5e-3, EnergyDriftMax: 2.5e-2,
		Seed: 1337, BoxWidth: 800, BoxHeight: 600, Radius: 5,
	}
	require.NoError(t, AppendSummary(dir, s))
	s.Method, s.NoEnergy = "hash", true
	require.NoError(t, AppendSummary(dir, s))

	rows := readCSV(t, path.Join(dir, SummaryFile))
	require.Len(t, rows, 3)
	assert.Equal(t, summaryHeader, rows[0])
	assert.Equal(t, []string{
		"quadtree", "100", "0.002000", "1000", "1234.500000", "3.250000",
		"0.500000", "1.250000", "1.500000e-03", "2.500000e-02",
		"1337", "800.000000", "600.000000", "5.000000",
	}, rows[1])
	assert.Equal(t, "hash", rows[2][0])
	assert.Equal(t, "0.000000e+00", rows[2][8])
	assert.Equal(t, "0.000000e+00", rows[2][9])
}

func TestSummaryString(t *testing.T) {
	s := &Summary{
		Method: "hash", N: 10, Dt: 0.002, Steps: 5,
		StepsPerSec: 99.94, CandPerParticle: 1.5, P50: 0.25, P95: 2,
		EnergyDriftMedian: 1e-12, EnergyDriftMax: 3.5e-9,
	}
	line := s.String()
	assert.Equal(t,
		"method=hash N=10 dt=0.002 steps=5 steps_per_sec=99.9 "+
			"cand_per_particle=1.50 p50_ms=0.25 p95_ms=2.00 "+
			"energy_drift_median=1.0e-12 energy_drift_max=3.5e-09",
		line,
	)
	assert.False(t, strings.Contains(line, "\n"))
}

func TestSummaryStringNoEnergy(t *testing.T) {
	s := &Summary{Method: "quadtree", NoEnergy: true, EnergyDriftMax: 1}
	assert.True(t, strings.HasSuffix(
		s.String(), " energy_drift_median=0.0 energy_drift_max=0.0",
	))
}
