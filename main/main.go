package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/phil-mansfield/collide/engine"
	"github.com/phil-mansfield/collide/io"
	"github.com/phil-mansfield/collide/metrics"
	"github.com/phil-mansfield/collide/particle"
	"github.com/phil-mansfield/collide/physics"
)

// energyInterval is the simulated time between energy samples.
const energyInterval = 1.0

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		run, compare, exampleConfig string
		logFile, profFile, method   string
		steps                       int
		seed                        int64
	)
	vars := map[string]*string{
		"Run":           &run,
		"Compare":       &compare,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&run, "Run", "",
		"Configuration file for [Run] mode. An optional scene file may "+
			"follow the flags.",
	)
	flag.StringVar(
		&compare, "Compare", "",
		"Configuration file for [Compare] mode, which runs both broad-phase "+
			"methods on the same bodies and reports where they disagree.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'Run' and 'Scene'.",
	)
	flag.StringVar(&logFile, "Log", "", "Overrides the config's LogFile.")
	flag.StringVar(&profFile, "PProf", "", "Overrides the config's ProfileFile.")
	flag.StringVar(&method, "Method", "", "Overrides the config's Method.")
	flag.IntVar(&steps, "Steps", 0, "Overrides the config's Steps and TimeLimit.")
	flag.Int64Var(&seed, "Seed", 0, "Overrides the config's Seed.")

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	switch modeName {
	case "Run", "Compare":
		fname := run
		if modeName == "Compare" {
			fname = compare
		}
		con, err := io.ReadRunConfig(fname)
		if err != nil {
			log.Fatal(err.Error())
		}

		if set["Log"] {
			con.LogFile = logFile
		}
		if set["PProf"] {
			con.ProfileFile = profFile
		}
		if set["Method"] {
			con.Method = method
		}
		if set["Steps"] {
			con.Steps, con.TimeLimit = steps, -1
		}
		if set["Seed"] {
			con.Seed = seed
		}
		if err = con.Check(); err != nil {
			log.Fatal(err.Error())
		}

		scene := ""
		if args := flag.Args(); len(args) > 1 {
			log.Fatal("Only one scene file may be given.")
		} else if len(args) == 1 {
			scene = args[0]
		}

		fg := setupIO(con)
		defer fg.Close()

		store, err := initialBodies(con, scene)
		if err != nil {
			log.Fatal(err.Error())
		}

		if modeName == "Run" {
			runMain(con, store)
		} else {
			compareMain(con, store)
		}

	case "ExampleConfig":
		switch exampleConfig {
		case "Run":
			fmt.Println(io.ExampleRunFile)
		case "Scene":
			fmt.Println(io.ExampleSceneFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Run' and 'Scene'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but collide "+
				"only accepts one mode flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func setupIO(con *io.RunConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

// initialBodies builds the starting bodies from a scene file, an initial
// conditions table, or the random generator, in that order of preference.
func initialBodies(con *io.RunConfig, scene string) (*particle.Store, error) {
	switch {
	case scene != "":
		bodies, err := io.ReadSceneConfig(scene, con)
		if err != nil {
			return nil, err
		}
		store := particle.NewStore(len(bodies))
		for _, b := range bodies {
			store.Add(b.X, b.Y, b.VX, b.VY, con.Radius)
		}
		log.Printf("Read %d bodies from %s.", store.Len(), scene)
		return store, nil

	case con.ValidInitialBodies():
		store, err := particle.ReadTable(con.InitialBodies, con.Radius)
		if err != nil {
			return nil, err
		}
		log.Printf("Read %d bodies from %s.", store.Len(), con.InitialBodies)
		return store, nil
	}

	store, overlaps := particle.Random(
		con.N, con.BoxWidth, con.BoxHeight, con.Radius, con.Seed,
	)
	if overlaps > 0 {
		log.Printf(
			"Could not place %d of %d bodies without overlap.",
			overlaps, con.N,
		)
	}
	return store, nil
}

// runResult is the record of a finished run that the plots are made from.
type runResult struct {
	times, energies []float64
	collisions      []float64
	final           []particle.Body
}

func runMain(con *io.RunConfig, store *particle.Store) {
	log.Printf("Running %s on %d bodies.", con.Method, store.Len())

	w, err := io.NewRunWriter(con.Output, con.SummaryOnly, con.LogPairs)
	if err != nil {
		log.Fatal(err.Error())
	}

	meta := io.NewRunMeta(con, store.Len(), time.Now())
	if err = io.WriteRunMeta(con.Output, meta); err != nil {
		log.Fatal(err.Error())
	}

	eng := engine.New(
		con.EngineMethod(), con.BoxWidth, con.BoxHeight, con.Radius,
		con.EngineOptions(),
	)
	bodies := store.Bodies
	totalSteps := con.TotalSteps()

	e0 := 0.0
	if !con.NoEnergy {
		e0 = physics.TotalEnergy(bodies)
	}

	res := &runResult{collisions: make([]float64, 0, totalSteps)}
	m := metrics.New(store.Len())
	simTime, lastEnergyTime := 0.0, 0.0

	for step := 0; step < totalSteps; step++ {
		m.BeginStep()
		stats := eng.Step(bodies, con.Dt)
		m.EndStep(stats.Candidates)
		m.RecordCollisions(stats.Collisions)
		res.collisions = append(res.collisions, float64(stats.Collisions))

		simTime += con.Dt
		if !con.NoEnergy && simTime-lastEnergyTime >= energyInterval {
			e := physics.TotalEnergy(bodies)
			m.RecordEnergy(e)
			res.times = append(res.times, simTime)
			res.energies = append(res.energies, e)
			lastEnergyTime = simTime
		}

		if err = w.WriteStep(step, bodies); err != nil {
			log.Fatal(err.Error())
		}
		if err = w.WritePairs(step, eng.Pairs()); err != nil {
			log.Fatal(err.Error())
		}

		if con.LogEvery > 0 && (step+1)%con.LogEvery == 0 {
			log.Printf(
				"Finished %d/%d steps, %d collisions so far.",
				step+1, totalSteps, m.TotalCollisions(),
			)
		}
	}

	if err = w.Close(); err != nil {
		log.Fatal(err.Error())
	}

	m.Finalize(e0)
	summary := &io.Summary{
		Method:            con.EngineMethod().String(),
		N:                 store.Len(),
		Dt:                con.Dt,
		Steps:             totalSteps,
		StepsPerSec:       m.StepsPerSec,
		CandPerParticle:   m.CandPerParticle,
		P50:               m.P50,
		P95:               m.P95,
		EnergyDriftMedian: m.EnergyDriftMedian,
		EnergyDriftMax:    m.EnergyDriftMax,
		NoEnergy:          con.NoEnergy,
		Seed:              con.Seed,
		BoxWidth:          con.BoxWidth,
		BoxHeight:         con.BoxHeight,
		Radius:            con.Radius,
	}
	if err = io.AppendSummary(con.Output, summary); err != nil {
		log.Fatal(err.Error())
	}
	fmt.Println(summary)

	if con.Plot {
		res.final = bodies
		plotRun(con, res)
	}
}

// compareMain steps one copy of the bodies with each method and reports the
// first step where the resolved pairs or body states differ.
func compareMain(con *io.RunConfig, store *particle.Store) {
	opts := con.EngineOptions()
	opts.LogPairs = false
	tree := engine.NewTree(con.BoxWidth, con.BoxHeight, con.Radius, opts)
	hash := engine.NewHash(con.BoxWidth, con.BoxHeight, con.Radius, opts)
	treeBodies, hashBodies := store.Copy().Bodies, store.Copy().Bodies

	totalSteps := con.TotalSteps()
	var treeTime, hashTime time.Duration
	treeCands, hashCands := 0, 0

	for step := 0; step < totalSteps; step++ {
		t0 := time.Now()
		treeStats := tree.Step(treeBodies, con.Dt)
		t1 := time.Now()
		hashStats := hash.Step(hashBodies, con.Dt)
		t2 := time.Now()

		treeTime += t1.Sub(t0)
		hashTime += t2.Sub(t1)
		treeCands += treeStats.Candidates
		hashCands += hashStats.Candidates

		if msg, ok := compareStep(tree, hash, treeBodies, hashBodies); !ok {
			log.Printf("Methods diverge on step %d: %s", step, msg)
			fmt.Printf("diverged_step=%d %s\n", step, msg)
			return
		}
	}

	n := float64(store.Len() * totalSteps)
	if n == 0 {
		n = 1
	}
	fmt.Printf(
		"steps=%d quadtree_ms=%.2f hash_ms=%.2f "+
			"quadtree_cand_per_particle=%.2f hash_cand_per_particle=%.2f\n",
		totalSteps, msec(treeTime), msec(hashTime),
		float64(treeCands)/n, float64(hashCands)/n,
	)
}

func compareStep(
	tree, hash *engine.Engine, treeBodies, hashBodies []particle.Body,
) (string, bool) {
	tp, hp := tree.Resolved(), hash.Resolved()
	if len(tp) != len(hp) {
		return fmt.Sprintf(
			"quadtree resolved %d pairs, hash resolved %d", len(tp), len(hp),
		), false
	}
	for i := range tp {
		if tp[i] != hp[i] {
			return fmt.Sprintf(
				"pair %d is (%d, %d) for quadtree and (%d, %d) for hash",
				i, tp[i].I, tp[i].J, hp[i].I, hp[i].J,
			), false
		}
	}
	for i := range treeBodies {
		if treeBodies[i] != hashBodies[i] {
			return fmt.Sprintf("body %d differs", treeBodies[i].ID), false
		}
	}
	return "", true
}

func msec(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
