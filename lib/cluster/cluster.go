/*package cluster generates the particle realization of a scenario: positions
sampled from each component's density profile, velocities from the local
dispersion, and the thermodynamic state of the gas. Everything downstream of
this package only sees the typed arrays it produces.*/
package cluster

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mice-ics/mice/lib/config"
	"github.com/mice-ics/mice/lib/logging"
	"github.com/mice-ics/mice/lib/particles"
)

const (
	// G is the gravitational constant in Gadget's default unit system:
	// lengths in kpc/h, masses in 10^10 Msun/h, velocities in km/s.
	G = 43007.1

	// a0 is the MOND acceleration scale, 1.2e-8 cm/s^2, in (km/s)^2/kpc.
	a0 = 3700.0

	// uPerKeV converts a gas temperature in keV to a specific internal
	// energy in (km/s)^2, for an ionized plasma with mean molecular
	// weight 0.6 and gamma = 5/3.
	uPerKeV = 2.395e5

	// etaHsml sets smoothing lengths relative to the local mean
	// inter-particle separation, h = eta (m/rho)^(1/3).
	etaHsml = 1.2
)

// Options controls cluster generation.
type Options struct {
	// MOND switches the collisionless velocity dispersions from the
	// Newtonian sqrt(GM/2r) to the deep-MOND flat-curve limit.
	MOND bool
	// Seed seeds both random number streams, making the generated cluster
	// reproducible.
	Seed uint64
	// Log receives progress reports. nil means no logging.
	Log logging.L
}

// Generate samples every component of the scenario and recombines the
// results into a single particle set, returned together with the per-type
// particle counts.
func Generate(
	sc *config.Scenario, opts Options,
) (*particles.Set, []int32, error) {
	log := logging.Must(opts.Log)

	if len(sc.Components) == 0 {
		return nil, nil, errors.New("the scenario describes no particle " +
			"components, so there is nothing to generate")
	}

	rng := NewRNG(opts.Seed)
	normal := distuv.Normal{
		Mu: 0, Sigma: 1, Src: rand.NewSource(opts.Seed + 1),
	}

	sets := make([]*particles.Set, len(sc.Components))
	for i := range sc.Components {
		comp := &sc.Components[i]
		log.Infof("Generating component '%s': %d %s particles.",
			comp.Name, comp.N, comp.Type)

		set, err := generateComponent(comp, rng, normal, opts.MOND, log)
		if err != nil { return nil, nil, err }
		sets[i] = set
	}

	log.Infof("Recombining %d components.", len(sets))
	out, counts, err := particles.Recombine(sets)
	if err != nil { return nil, nil, err }

	log.Infof("Generated %d particles in total (%d gas).",
		out.N(), counts[particles.Gas])
	return out, counts, nil
}

func generateComponent(
	comp *config.Component, rng *RNG, normal distuv.Normal,
	mond bool, log logging.L,
) (*particles.Set, error) {
	prof, err := NewProfile(comp)
	if err != nil { return nil, err }

	n := comp.N
	mp := comp.Mass / float64(n)

	set := &particles.Set{
		Name: comp.Name, Type: comp.Type,
		Pos: make([][3]float32, n),
		Vel: make([][3]float32, n),
		Mass: make([]float32, n),
	}

	// Positions: radii by inverting the enclosed-mass curve, directions
	// uniform on the sphere.
	log.Debugf("'%s': setting positions.", comp.Name)
	radii := make([]float64, n)
	for i := 0; i < n; i++ {
		r := prof.Radius(rng.Uniform())
		d := rng.Direction()

		radii[i] = r
		set.Pos[i] = [3]float32{
			float32(r * d[0]), float32(r * d[1]), float32(r * d[2]),
		}
		set.Mass[i] = float32(mp)
	}

	// Velocities: gas is held up by pressure, so it starts at rest;
	// collisionless components get isotropic Gaussian velocities with the
	// local dispersion.
	log.Debugf("'%s': setting velocities.", comp.Name)
	if comp.Type != particles.Gas {
		for i := 0; i < n; i++ {
			s := dispersion(prof, radii[i], mond)
			set.Vel[i] = [3]float32{
				float32(s * normal.Rand()),
				float32(s * normal.Rand()),
				float32(s * normal.Rand()),
			}
		}
	}

	// Gas thermodynamics: isothermal internal energy, profile densities,
	// and smoothing lengths from the local mean inter-particle separation.
	if comp.Type == particles.Gas {
		log.Debugf("'%s': setting temperatures.", comp.Name)
		u := float32(comp.KT * uPerKeV)

		set.U = make([]float32, n)
		set.Rho = make([]float32, n)
		set.Hsml = make([]float32, n)
		for i := 0; i < n; i++ {
			rho := prof.Density(radii[i])
			set.U[i] = u
			set.Rho[i] = float32(rho)
			set.Hsml[i] = float32(etaHsml * math.Cbrt(mp/rho))
		}
	}

	return set, nil
}

// dispersion returns the 1D velocity dispersion at radius r. The Newtonian
// estimate is the isotropic sqrt(GM(<r)/2r); in the deep-MOND limit the
// dispersion follows the flat-curve scaling (GM(<r) a0)^(1/4) instead.
func dispersion(prof Profile, r float64, mond bool) float64 {
	m := prof.EnclosedMass(r)
	if m <= 0 || r <= 0 { return 0 }

	if mond { return math.Pow(G*m*a0, 0.25) }
	return math.Sqrt(G * m / (2 * r))
}
