/*package io reads the configuration files which describe a run and writes
the files a run produces.
*/
package io

import (
	"fmt"
	"sort"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/collide/engine"
)

const (
	ExampleRunFile = `[Run]

#######################
# Required Parameters #
#######################

# Broad-phase method used to find colliding pairs. Must be one of
# [ quadtree | hash ].
Method = quadtree

# Directory which output files will be written to. It will be created if it
# doesn't exist.
Output = path/to/output/dir

#######################
# Optional Parameters #
#######################

# Number of bodies and their radius. All bodies share the same radius.
# N = 100
# Radius = 5

# Size of the box the bodies bounce around in.
# BoxWidth = 800
# BoxHeight = 600

# Length of a timestep and the number of steps to run. If TimeLimit is set to
# a positive value, Steps is replaced by TimeLimit / Dt.
# Dt = 0.002
# Steps = 1000
# TimeLimit = 2.5

# Seed for the random initial conditions.
# Seed = 1337

# Read initial positions and velocities from a text table with the columns
# x, y, vx, vy instead of generating them. N is ignored when this is set.
# InitialBodies = path/to/bodies.txt

# Output controls. SummaryOnly suppresses steps.csv and pairs.csv. LogPairs
# writes every tested pair to pairs.csv. NoEnergy skips energy tracking.
# Plot writes diagnostic figures to the output directory.
# SummaryOnly = false
# LogPairs = false
# NoEnergy = false
# Plot = false

# Log progress every LogEvery steps. Zero turns progress logging off.
# LogEvery = 100

# Tuning for the quadtree and for positional correction. It's unlikely that
# you will want to change these.
# TreeCapacity = 8
# TreeMaxDepth = 12
# Epsilon = 0.01

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

	ExampleSceneFile = `[Body "left"]
# A scene file places bodies by hand. It is paired with a Run config file and
# replaces the random initial conditions. Bodies are given IDs in order of
# their names.

# Position of the center:
X = 100
Y = 100

# Velocity:
VX = 50
VY = 0

[Body "right"]
X = 108
Y = 100
VX = -50
VY = 0`
)

// RunConfig describes a single simulation run.
type RunConfig struct {
	// Required
	Method, Output string

	// Optional
	N                   int
	Radius              float64
	BoxWidth, BoxHeight float64
	Dt, TimeLimit       float64
	Steps               int
	Seed                int64
	InitialBodies       string

	SummaryOnly, LogPairs, NoEnergy, Plot bool
	LogEvery                              int

	TreeCapacity, TreeMaxDepth int
	Epsilon                    float64

	LogFile, ProfileFile string
}

type RunWrapper struct {
	Run RunConfig
}

// DefaultRunWrapper returns a RunWrapper with every optional field set to
// its default.
func DefaultRunWrapper() *RunWrapper {
	opts := engine.DefaultOptions()
	con := RunConfig{
		Method:       "quadtree",
		Output:       ".",
		N:            100,
		Radius:       5,
		BoxWidth:     800,
		BoxHeight:    600,
		Dt:           0.002,
		Steps:        1000,
		TimeLimit:    -1,
		Seed:         1337,
		LogEvery:     100,
		TreeCapacity: opts.TreeCapacity,
		TreeMaxDepth: opts.TreeMaxDepth,
		Epsilon:      opts.Epsilon,
	}
	return &RunWrapper{con}
}

// ReadRunConfig reads and validates the [Run] section of the given file.
func ReadRunConfig(fname string) (*RunConfig, error) {
	wrap := DefaultRunWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Run
	if err := con.Check(); err != nil {
		return nil, err
	}
	return con, nil
}

func (con *RunConfig) ValidMethod() bool {
	_, ok := engine.MethodFromString(con.Method)
	return ok
}
func (con *RunConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *RunConfig) ValidN() bool {
	return con.N > 0 || con.ValidInitialBodies()
}
func (con *RunConfig) ValidRadius() bool {
	return con.Radius > 0
}
func (con *RunConfig) ValidBox() bool {
	return con.BoxWidth > 2*con.Radius && con.BoxHeight > 2*con.Radius
}
func (con *RunConfig) ValidDt() bool {
	return con.Dt > 0
}
func (con *RunConfig) ValidSteps() bool {
	return con.Steps >= 0 || con.TimeLimit > 0
}
func (con *RunConfig) ValidInitialBodies() bool {
	return con.InitialBodies != ""
}
func (con *RunConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *RunConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// Check returns an error describing the first invalid field of con.
func (con *RunConfig) Check() error {
	switch {
	case !con.ValidMethod():
		return fmt.Errorf(
			"Method must be one of [quadtree | hash], but is '%s'.",
			con.Method,
		)
	case !con.ValidOutput():
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidN():
		return fmt.Errorf("N must be positive, but is %d.", con.N)
	case !con.ValidRadius():
		return fmt.Errorf("Radius must be positive, but is %g.", con.Radius)
	case !con.ValidBox():
		return fmt.Errorf(
			"Box of size %gx%g is too small for bodies of radius %g.",
			con.BoxWidth, con.BoxHeight, con.Radius,
		)
	case !con.ValidDt():
		return fmt.Errorf("Dt must be positive, but is %g.", con.Dt)
	case !con.ValidSteps():
		return fmt.Errorf(
			"Steps must be non-negative, but is %d.", con.Steps,
		)
	}
	return nil
}

// TotalSteps returns the number of steps the run will take.
func (con *RunConfig) TotalSteps() int {
	if con.TimeLimit > 0 {
		return int(con.TimeLimit / con.Dt)
	}
	return con.Steps
}

// EngineMethod returns the parsed Method. It panics if ValidMethod is false.
func (con *RunConfig) EngineMethod() engine.Method {
	m, ok := engine.MethodFromString(con.Method)
	if !ok {
		panic(fmt.Sprintf("Unrecognized method '%s'.", con.Method))
	}
	return m
}

// EngineOptions returns the engine tuning described by con.
func (con *RunConfig) EngineOptions() engine.Options {
	return engine.Options{
		TreeCapacity: con.TreeCapacity,
		TreeMaxDepth: con.TreeMaxDepth,
		Epsilon:      con.Epsilon,
		LogPairs:     con.LogPairs && !con.SummaryOnly,
	}
}

// BodyConfig places a single body by hand.
type BodyConfig struct {
	// Required
	X, Y float64

	// Optional
	VX, VY float64
	Name   string
}

// CheckInit validates a body of radius r inside a boxW x boxH box and
// records its name.
func (body *BodyConfig) CheckInit(name string, boxW, boxH, r float64) error {
	if body.X < r || body.X > boxW-r {
		return fmt.Errorf(
			"X center of Body '%s' must be in range [%g, %g], but is %g",
			name, r, boxW-r, body.X,
		)
	} else if body.Y < r || body.Y > boxH-r {
		return fmt.Errorf(
			"Y center of Body '%s' must be in range [%g, %g], but is %g",
			name, r, boxH-r, body.Y,
		)
	}

	body.Name = name
	return nil
}

type SceneConfig struct {
	Body map[string]*BodyConfig
}

// ReadSceneConfig reads every [Body] section of the given file and returns
// them sorted by name.
func ReadSceneConfig(fname string, con *RunConfig) ([]BodyConfig, error) {
	sc := SceneConfig{}

	if err := gcfg.ReadFileInto(&sc, fname); err != nil {
		return nil, err
	}

	bodies := []BodyConfig{}
	for name, body := range sc.Body {
		err := body.CheckInit(name, con.BoxWidth, con.BoxHeight, con.Radius)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, *body)
	}
	if len(bodies) == 0 {
		return nil, fmt.Errorf("Scene file '%s' contains no bodies.", fname)
	}

	sort.Slice(bodies, func(i, j int) bool {
		return bodies[i].Name < bodies[j].Name
	})
	return bodies, nil
}
