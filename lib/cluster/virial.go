package cluster

import (
	"math"

	"github.com/phil-mansfield/gravitree"
	"gonum.org/v1/gonum/stat"

	"github.com/mice-ics/mice/lib/particles"
)

// KineticEnergy returns the specific kinetic energy of each particle in
// (km/s)^2, measured relative to the mean velocity of the set.
func KineticEnergy(vel [][3]float32) []float64 {
	n := len(vel)
	vx := make([]float64, n)
	vy := make([]float64, n)
	vz := make([]float64, n)
	for i := range vel {
		vx[i] = float64(vel[i][0])
		vy[i] = float64(vel[i][1])
		vz[i] = float64(vel[i][2])
	}

	mx := stat.Mean(vx, nil)
	my := stat.Mean(vy, nil)
	mz := stat.Mean(vz, nil)

	ke := make([]float64, n)
	for i := range ke {
		dx, dy, dz := vx[i]-mx, vy[i]-my, vz[i]-mz
		ke[i] = 0.5 * (dx*dx + dy*dy + dz*dz)
	}
	return ke
}

// PotentialEnergy returns the specific potential energy of each particle in
// (km/s)^2, computed with a tree code using Plummer softening eps. The tree
// assumes a single particle mass, mp, so mixed-mass sets are treated at
// their mean mass.
func PotentialEnergy(pos [][3]float32, mp, eps float64) []float64 {
	dx := make([][3]float64, len(pos))
	for i := range pos {
		dx[i][0] = float64(pos[i][0])
		dx[i][1] = float64(pos[i][1])
		dx[i][2] = float64(pos[i][2])
	}

	tree := gravitree.NewTree(dx)
	pe := make([]float64, len(pos))
	tree.Potential(eps, pe)

	for i := range pe {
		pe[i] *= G * mp
	}
	return pe
}

// VirialRatio returns 2T/|W| for the set, the standard check that a freshly
// generated cluster starts near equilibrium. Values near 1 indicate the
// velocity dispersions match the mass distribution.
func VirialRatio(set *particles.Set, eps float64) float64 {
	if set.N() == 0 { return 0 }

	mp := meanMass(set.Mass)
	ke := KineticEnergy(set.Vel)
	pe := PotentialEnergy(set.Pos, mp, eps)

	t, w := 0.0, 0.0
	for i := range ke {
		m := float64(set.Mass[i])
		t += m * ke[i]
		// The tree potential counts every pair twice when summed over
		// particles.
		w += 0.5 * m * pe[i]
	}

	if w == 0 { return 0 }
	return 2 * t / math.Abs(w)
}

func meanMass(mass []float32) float64 {
	sum := 0.0
	for i := range mass {
		sum += float64(mass[i])
	}
	return sum / float64(len(mass))
}
