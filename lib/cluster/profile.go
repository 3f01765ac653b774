package cluster

/* profile.go contains the density profiles components can be sampled from.
Hernquist and Plummer profiles have closed-form enclosed-mass curves and are
inverted analytically; the beta model's mass integral has no closed form, so
it gets tabulated with Gaussian quadrature and inverted by interpolation. */

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/mice-ics/mice/lib/config"
)

// Profile is a spherically symmetric, truncated density profile normalized
// to a component's total mass.
type Profile interface {
	// Density returns the local density at radius r.
	Density(r float64) float64
	// EnclosedMass returns the mass inside radius r, capped at the total
	// mass beyond the truncation radius.
	EnclosedMass(r float64) float64
	// Radius inverts the enclosed-mass curve: it maps u in [0, 1) to the
	// radius containing that fraction of the total mass.
	Radius(u float64) float64
}

// NewProfile builds the Profile a component's scenario table asks for.
func NewProfile(comp *config.Component) (Profile, error) {
	switch comp.Profile {
	case "hernquist":
		return &hernquistProfile{comp.Mass, comp.ScaleRadius, comp.RMax}, nil
	case "plummer":
		return &plummerProfile{comp.Mass, comp.ScaleRadius, comp.RMax}, nil
	case "beta":
		return newBetaProfile(comp.Mass, comp.ScaleRadius, comp.Beta,
			comp.RMax), nil
	}
	return nil, errors.Errorf("component '%s' asks for the profile '%s', " +
		"but the only supported profiles are 'hernquist', 'plummer', and " +
		"'beta'", comp.Name, comp.Profile)
}

// hernquistProfile is the Hernquist (1990) profile,
// rho(r) = M a / (2 pi r (r+a)^3), truncated at rMax.
type hernquistProfile struct {
	m, a, rMax float64
}

func (p *hernquistProfile) Density(r float64) float64 {
	if r > p.rMax { return 0 }
	if r == 0 { r = 1e-6 * p.a }
	return p.m * p.a / (2 * math.Pi * r * cube(r + p.a)) / p.fMax()
}

func (p *hernquistProfile) EnclosedMass(r float64) float64 {
	if r > p.rMax { r = p.rMax }
	return p.m * (r * r / sqr(r + p.a)) / p.fMax()
}

// fMax is the untruncated mass fraction inside rMax; dividing by it
// renormalizes the truncated profile back to total mass m.
func (p *hernquistProfile) fMax() float64 {
	return p.rMax * p.rMax / sqr(p.rMax + p.a)
}

func (p *hernquistProfile) Radius(u float64) float64 {
	su := math.Sqrt(u * p.fMax())
	return p.a * su / (1 - su)
}

// plummerProfile is the Plummer sphere,
// rho(r) = 3M / (4 pi a^3) (1 + r^2/a^2)^(-5/2), truncated at rMax.
type plummerProfile struct {
	m, a, rMax float64
}

func (p *plummerProfile) Density(r float64) float64 {
	if r > p.rMax { return 0 }
	x := r / p.a
	return 3 * p.m / (4 * math.Pi * cube(p.a)) *
		math.Pow(1 + x*x, -2.5) / p.fMax()
}

func (p *plummerProfile) EnclosedMass(r float64) float64 {
	if r > p.rMax { r = p.rMax }
	x := r / p.a
	return p.m * cube(x) * math.Pow(1 + x*x, -1.5) / p.fMax()
}

func (p *plummerProfile) fMax() float64 {
	x := p.rMax / p.a
	return cube(x) * math.Pow(1 + x*x, -1.5)
}

func (p *plummerProfile) Radius(u float64) float64 {
	f := u * p.fMax()
	// Invert f = x^3 (1+x^2)^(-3/2) for x.
	f23 := math.Pow(f, 2.0/3.0)
	return p.a * math.Sqrt(f23 / (1 - f23))
}

// betaProfile is the isothermal beta model,
// rho(r) = rho0 (1 + r^2/rc^2)^(-3 beta / 2), truncated at rMax. Its
// enclosed-mass curve is tabulated on a radial grid at construction.
type betaProfile struct {
	m, rc, beta, rMax float64
	rho0 float64
	rGrid, mGrid []float64
}

// betaGridSize is the number of radial grid points the cumulative mass
// curve is tabulated at. The grid is linear in log r over three and a half
// decades, which resolves the core well enough that interpolation errors
// are far below the shot noise of any realistic particle count.
const betaGridSize = 256

func newBetaProfile(m, rc, beta, rMax float64) *betaProfile {
	p := &betaProfile{ m: m, rc: rc, beta: beta, rMax: rMax, rho0: 1 }

	shape := func(s float64) float64 {
		return 4 * math.Pi * s * s *
			math.Pow(1 + sqr(s/p.rc), -1.5*p.beta)
	}

	p.rGrid = make([]float64, betaGridSize)
	p.mGrid = make([]float64, betaGridSize)

	logMin, logMax := math.Log(rMax) - 8, math.Log(rMax)
	dLog := (logMax - logMin) / float64(betaGridSize - 1)

	mPrev, rPrev := 0.0, 0.0
	for i := range p.rGrid {
		r := math.Exp(logMin + dLog*float64(i))
		p.rGrid[i] = r
		p.mGrid[i] = mPrev + quad.Fixed(shape, rPrev, r, 16, nil, 0)
		mPrev, rPrev = p.mGrid[i], r
	}

	// Normalize so the truncated profile integrates to the total mass.
	p.rho0 = m / p.mGrid[betaGridSize - 1]
	for i := range p.mGrid { p.mGrid[i] *= p.rho0 }

	return p
}

func (p *betaProfile) Density(r float64) float64 {
	if r > p.rMax { return 0 }
	return p.rho0 * math.Pow(1 + sqr(r/p.rc), -1.5*p.beta)
}

func (p *betaProfile) EnclosedMass(r float64) float64 {
	if r >= p.rMax { return p.m }
	i := sort.SearchFloat64s(p.rGrid, r)
	if i == 0 { return p.mGrid[0] * cube(r/p.rGrid[0]) }
	// Linear interpolation between grid points.
	t := (r - p.rGrid[i-1]) / (p.rGrid[i] - p.rGrid[i-1])
	return p.mGrid[i-1] + t*(p.mGrid[i] - p.mGrid[i-1])
}

func (p *betaProfile) Radius(u float64) float64 {
	target := u * p.m
	i := sort.SearchFloat64s(p.mGrid, target)
	if i == 0 { return p.rGrid[0] * math.Cbrt(target/p.mGrid[0]) }
	if i >= len(p.mGrid) { return p.rMax }
	t := (target - p.mGrid[i-1]) / (p.mGrid[i] - p.mGrid[i-1])
	return p.rGrid[i-1] + t*(p.rGrid[i] - p.rGrid[i-1])
}

func sqr(x float64) float64 { return x * x }
func cube(x float64) float64 { return x * x * x }
