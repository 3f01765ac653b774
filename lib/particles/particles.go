/*package particles contains the typed per-particle arrays produced by the
cluster-generation stage and the recombination step that concatenates
per-component arrays into the unified arrays the snapshot writer consumes.*/
package particles

import (
	"github.com/pkg/errors"
)

// ErrRecombination means per-component arrays could not be concatenated
// into unified arrays, usually because a component's arrays disagree about
// how many particles it has.
var ErrRecombination = errors.New("cannot recombine component data")

// PType is a Gadget-2 particle type. The order is fixed and semantically
// meaningful: Gas is always type 0 and gates the gas-only snapshot blocks.
type PType int

const (
	Gas PType = iota
	Halo
	Disk
	Bulge
	Stars
	Boundary

	// NTypes is the number of particle types in a Gadget-2 header.
	NTypes = 6
)

var ptypeNames = []string{"gas", "halo", "disk", "bulge", "stars", "boundary"}

func (t PType) String() string {
	if t < 0 || int(t) >= NTypes { return "invalid" }
	return ptypeNames[t]
}

// ParsePType converts a particle-type name from a scenario file into a
// PType.
func ParsePType(s string) (PType, error) {
	for i := range ptypeNames {
		if ptypeNames[i] == s { return PType(i), nil }
	}
	return -1, errors.Errorf("'%s' is not a particle type; the valid " +
		"types are %v", s, ptypeNames)
}

// Set holds the particle arrays of one cluster component, or, after
// recombination, of the whole cluster. Pos, Vel, and Mass always cover
// every particle; U, Rho, and Hsml are only set for gas and Metals is
// optional even then.
type Set struct {
	Name string
	Type PType

	Pos, Vel [][3]float32
	Mass []float32
	U, Rho, Hsml []float32
	Metals []float32
}

// N returns the number of particles in the set.
func (s *Set) N() int { return len(s.Pos) }

// Validate checks that the set's arrays agree in length: Vel and Mass must
// match Pos, and for gas sets U, Rho, and Hsml (and Metals, if present)
// must too.
func (s *Set) Validate() error {
	n := s.N()
	if len(s.Vel) != n || len(s.Mass) != n {
		return errors.Wrapf(ErrRecombination,
			"component '%s' has %d positions, %d velocities, and %d " +
				"masses; these must all agree",
			s.Name, n, len(s.Vel), len(s.Mass))
	}

	if s.Type == Gas {
		if len(s.U) != n || len(s.Rho) != n || len(s.Hsml) != n {
			return errors.Wrapf(ErrRecombination,
				"gas component '%s' has %d particles, but %d internal " +
					"energies, %d densities, and %d smoothing lengths",
				s.Name, n, len(s.U), len(s.Rho), len(s.Hsml))
		}
		if s.Metals != nil && len(s.Metals) != n {
			return errors.Wrapf(ErrRecombination,
				"gas component '%s' has %d particles but %d metallicities",
				s.Name, n, len(s.Metals))
		}
	} else if s.U != nil || s.Rho != nil || s.Hsml != nil ||
		s.Metals != nil {
		return errors.Wrapf(ErrRecombination,
			"component '%s' has type '%s' but carries gas-only arrays",
			s.Name, s.Type)
	}

	return nil
}

// Recombine concatenates per-component sets into a single set ordered by
// particle type (gas first, boundary last; components of the same type stay
// in their given order) and returns it along with the per-type particle
// counts. Components whose arrays disagree in length fail with an
// ErrRecombination error. If any gas component carries metallicities, all
// of them must.
func Recombine(sets []*Set) (*Set, []int32, error) {
	counts := make([]int32, NTypes)
	withZ, withoutZ := 0, 0

	for _, s := range sets {
		if s.Type < 0 || int(s.Type) >= NTypes {
			return nil, nil, errors.Wrapf(ErrRecombination,
				"component '%s' has the invalid particle type %d",
				s.Name, s.Type)
		}
		if err := s.Validate(); err != nil { return nil, nil, err }
		counts[s.Type] += int32(s.N())

		if s.Type == Gas {
			if s.Metals != nil { withZ++ } else { withoutZ++ }
		}
	}

	if withZ > 0 && withoutZ > 0 {
		return nil, nil, errors.Wrapf(ErrRecombination,
			"%d gas components carry metallicities and %d don't; either " +
				"all gas components have a Z array or none do",
			withZ, withoutZ)
	}

	out := &Set{ Name: "recombined", Type: Gas }
	for t := PType(0); t < NTypes; t++ {
		for _, s := range sets {
			if s.Type != t { continue }
			out.Pos = append(out.Pos, s.Pos...)
			out.Vel = append(out.Vel, s.Vel...)
			out.Mass = append(out.Mass, s.Mass...)
			if t == Gas {
				out.U = append(out.U, s.U...)
				out.Rho = append(out.Rho, s.Rho...)
				out.Hsml = append(out.Hsml, s.Hsml...)
				if withZ > 0 {
					out.Metals = append(out.Metals, s.Metals...)
				}
			}
		}
	}

	return out, counts, nil
}

// IDs generates the 1-based particle identifiers for n particles. Gadget-2
// stores IDs as 4-byte signed integers, so particle counts beyond that
// range are rejected.
func IDs(n int) ([]int32, error) {
	if n > 1<<31 - 2 {
		return nil, errors.Errorf("%d particles can't be assigned 4-byte " +
			"IDs", n)
	}
	ids := make([]int32, n)
	for i := range ids { ids[i] = int32(i + 1) }
	return ids, nil
}
