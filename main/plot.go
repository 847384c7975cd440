package main

import (
	"fmt"
	"log"
	"path"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/collide/io"
)

// plotRun writes the diagnostic figures for a finished run to the output
// directory.
func plotRun(con *io.RunConfig, res *runResult) {
	method := con.EngineMethod().String()
	log.Printf("Writing plots to %s", con.Output)

	if len(res.energies) > 0 {
		plotEnergy(con.Output, method, res.times, res.energies)
	}
	plotCollisions(con.Output, method, con.Dt, res.collisions)
	plotPositions(con, method, res)

	plt.Execute()
}

func plotEnergy(dir, method string, ts, es []float64) {
	fname := path.Join(dir, fmt.Sprintf("energy_%s.png", method))

	plt.Figure()
	plt.Plot(ts, es, "k", plt.LW(2))
	plt.Title(fmt.Sprintf("Kinetic energy, %s", method))
	plt.XLabel(`$t$`, plt.FontSize(16))
	plt.YLabel(`$E$`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

func plotCollisions(dir, method string, dt float64, collisions []float64) {
	fname := path.Join(dir, fmt.Sprintf("collisions_%s.png", method))

	ts := make([]float64, len(collisions))
	for i := range ts {
		ts[i] = float64(i+1) * dt
	}

	plt.Figure()
	plt.Plot(ts, collisions, plt.LW(1), plt.C("r"))
	plt.Title(fmt.Sprintf("Collisions per step, %s", method))
	plt.XLabel(`$t$`, plt.FontSize(16))
	plt.YLabel(`$N_{\rm coll}$`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

func plotPositions(con *io.RunConfig, method string, res *runResult) {
	fname := path.Join(con.Output, fmt.Sprintf("positions_%s.png", method))
	xs := make([]float64, len(res.final))
	ys := make([]float64, len(res.final))
	for i := range res.final {
		xs[i], ys[i] = res.final[i].X, res.final[i].Y
	}

	plt.Figure(plt.FigSize(8, 8))
	plt.Plot(xs, ys, "ow")
	plt.Title(fmt.Sprintf("Final positions, %s", method))
	plt.XLabel(`$x$`, plt.FontSize(16))
	plt.YLabel(`$y$`, plt.FontSize(16))
	plt.XLim(0, con.BoxWidth)
	plt.YLim(0, con.BoxHeight)
	plt.SaveFig(fname)
}
