/*package config loads and validates the TOML scenario files that describe a
cluster. A scenario has one required HEADER table, whose keys are coerced
into the snapshot header configuration, and any number of additional tables,
each describing one particle component for the generation stage.*/
package config

import (
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/mice-ics/mice/lib/particles"
	"github.com/mice-ics/mice/lib/snapio"
)

// ErrConfiguration means the scenario document is malformed or incomplete:
// unreadable TOML, a missing HEADER table, a missing required key, or a
// value that can't be coerced to its declared type. It is always reported
// before any output is written.
var ErrConfiguration = errors.New("invalid scenario configuration")

// Scenario is a fully validated scenario document.
type Scenario struct {
	Header snapio.HeaderConfig
	Components []Component
}

// Component describes one particle component of the cluster. Lengths are
// kpc/h, masses are 10^10 Msun/h, and temperatures are keV, matching
// Gadget's default unit system.
type Component struct {
	Name string
	Type particles.PType
	// N is the number of particles the component is sampled with.
	N int
	// Mass is the component's total mass.
	Mass float64
	// Profile selects the density profile: "hernquist", "plummer", or
	// "beta".
	Profile string
	// ScaleRadius is the Hernquist/Plummer scale radius or the beta-model
	// core radius.
	ScaleRadius float64
	// Beta is the beta-model outer slope parameter. Ignored by the other
	// profiles.
	Beta float64
	// KT is the gas temperature. Ignored for collisionless types.
	KT float64
	// RMax is the truncation radius. Zero means 10 scale radii.
	RMax float64
}

type keyKind int

const (
	kindFloat keyKind = iota
	kindInt
	kindFloatList
)

// headerKeys lists the required HEADER keys in a fixed order, with the type
// each value is coerced to. Coercion walks this list and looks each key up
// in the parsed table; a key the table doesn't have is an error, and extra
// keys in the table are ignored.
var headerKeys = []struct {
	name string
	kind keyKind
} {
	{"mass_array", kindFloatList},
	{"time", kindFloat},
	{"redshift", kindFloat},
	{"flag_sfr", kindInt},
	{"flag_cooling", kindInt},
	{"flag_feedback", kindInt},
	{"num_files", kindInt},
	{"boxsize", kindFloat},
	{"omega0", kindFloat},
	{"omega_lambda", kindFloat},
	{"hubble_param", kindFloat},
	{"flag_age", kindInt},
	{"flag_metals", kindInt},
}

// Load reads the scenario file at path, failing fast on syntax errors,
// a missing HEADER table, missing required header keys, or component
// tables that don't describe a valid particle component.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrConfiguration,
			"the scenario file %s can't be read: %s", path, err.Error())
	}
	return Parse(data)
}

// Parse is Load for an in-memory scenario document.
func Parse(data []byte) (*Scenario, error) {
	raw := map[string]interface{}{ }
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrConfiguration,
			"the scenario file is not valid TOML: %s", err.Error())
	}

	rawHeader, ok := raw["HEADER"]
	if !ok {
		return nil, errors.Wrap(ErrConfiguration,
			"the scenario file has no HEADER table")
	}
	header, ok := rawHeader.(map[string]interface{})
	if !ok {
		return nil, errors.Wrap(ErrConfiguration,
			"HEADER is not a table")
	}

	hd, err := coerceHeader(header)
	if err != nil { return nil, err }
	sc := &Scenario{ Header: hd }

	// Component tables come out of the TOML parser as an unordered map, so
	// sort by name to keep the particle layout reproducible between runs.
	names := []string{ }
	for name := range raw {
		if name != "HEADER" { names = append(names, name) }
	}
	sort.Strings(names)

	for _, name := range names {
		table, ok := raw[name].(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrConfiguration,
				"the top-level key '%s' is not a component table", name)
		}
		comp, err := parseComponent(name, table)
		if err != nil { return nil, err }
		sc.Components = append(sc.Components, *comp)
	}

	return sc, nil
}

// coerceHeader converts the HEADER table into a HeaderConfig, coercing each
// required key to its declared type.
func coerceHeader(
	header map[string]interface{},
) (snapio.HeaderConfig, error) {
	cfg := snapio.DefaultHeaderConfig()

	missing := []string{ }
	for i := range headerKeys {
		if _, ok := header[headerKeys[i].name]; !ok {
			missing = append(missing, headerKeys[i].name)
		}
	}
	if len(missing) > 0 {
		return cfg, errors.Wrapf(ErrConfiguration,
			"the HEADER table is missing the required keys %v", missing)
	}

	for i := range headerKeys {
		name := headerKeys[i].name
		value := header[name]

		switch headerKeys[i].kind {
		case kindFloat:
			x, err := cast.ToFloat64E(value)
			if err != nil {
				return cfg, errors.Wrapf(ErrConfiguration,
					"the HEADER key '%s' should be a float, but is %v",
					name, value)
			}
			switch name {
			case "time": cfg.Time = x
			case "redshift": cfg.Redshift = x
			case "boxsize": cfg.BoxSize = x
			case "omega0": cfg.Omega0 = x
			case "omega_lambda": cfg.OmegaLambda = x
			case "hubble_param": cfg.HubbleParam = x
			}
		case kindInt:
			x, err := cast.ToInt32E(value)
			if err != nil {
				return cfg, errors.Wrapf(ErrConfiguration,
					"the HEADER key '%s' should be an integer, but is %v",
					name, value)
			}
			switch name {
			case "flag_sfr": cfg.FlagSFR = x
			case "flag_cooling": cfg.FlagCooling = x
			case "flag_feedback": cfg.FlagFeedback = x
			case "num_files": cfg.NumFiles = x
			case "flag_age": cfg.FlagAge = x
			case "flag_metals": cfg.FlagMetals = x
			}
		case kindFloatList:
			list, err := cast.ToSliceE(value)
			if err != nil {
				return cfg, errors.Wrapf(ErrConfiguration,
					"the HEADER key '%s' should be a list of numbers, " +
						"but is %v", name, value)
			}
			if len(list) != snapio.NTypes {
				return cfg, errors.Wrapf(ErrConfiguration,
					"the HEADER key '%s' should have %d numbers, one per " +
						"particle type, but has %d",
					name, snapio.NTypes, len(list))
			}
			for j := range list {
				x, err := cast.ToFloat64E(list[j])
				if err != nil {
					return cfg, errors.Wrapf(ErrConfiguration,
						"element %d of the HEADER key '%s' should be a " +
							"number, but is %v", j, name, list[j])
				}
				cfg.MassTable[j] = x
			}
		}
	}

	return cfg, nil
}

// parseComponent converts one non-HEADER table into a Component.
func parseComponent(
	name string, table map[string]interface{},
) (*Component, error) {
	comp := &Component{ Name: name, Profile: "hernquist" }

	typeName, err := stringKey(name, table, "type", true, "")
	if err != nil { return nil, err }
	comp.Type, err = particles.ParsePType(typeName)
	if err != nil {
		return nil, errors.Wrapf(ErrConfiguration,
			"component '%s': %s", name, err.Error())
	}

	n, err := intKey(name, table, "n")
	if err != nil { return nil, err }
	if n <= 0 {
		return nil, errors.Wrapf(ErrConfiguration,
			"component '%s' has n = %d, but components need at least one " +
				"particle", name, n)
	}
	comp.N = n

	comp.Mass, err = floatKey(name, table, "mass", true, 0)
	if err != nil { return nil, err }
	if comp.Mass <= 0 {
		return nil, errors.Wrapf(ErrConfiguration,
			"component '%s' has non-positive mass %g", name, comp.Mass)
	}

	comp.ScaleRadius, err = floatKey(name, table, "scale_radius", true, 0)
	if err != nil { return nil, err }
	if comp.ScaleRadius <= 0 {
		return nil, errors.Wrapf(ErrConfiguration,
			"component '%s' has non-positive scale radius %g",
			name, comp.ScaleRadius)
	}

	comp.Profile, err = stringKey(name, table, "profile", false, comp.Profile)
	if err != nil { return nil, err }

	comp.Beta, err = floatKey(name, table, "beta", false, 2.0/3.0)
	if err != nil { return nil, err }

	comp.RMax, err = floatKey(name, table, "rmax", false,
		10*comp.ScaleRadius)
	if err != nil { return nil, err }

	if comp.Type == particles.Gas {
		comp.KT, err = floatKey(name, table, "kT", true, 0)
		if err != nil { return nil, err }
		if comp.KT <= 0 {
			return nil, errors.Wrapf(ErrConfiguration,
				"gas component '%s' has non-positive temperature %g keV",
				name, comp.KT)
		}
	}

	return comp, nil
}

func stringKey(
	comp string, table map[string]interface{},
	key string, required bool, def string,
) (string, error) {
	value, ok := table[key]
	if !ok {
		if required {
			return "", errors.Wrapf(ErrConfiguration,
				"component '%s' is missing the required key '%s'",
				comp, key)
		}
		return def, nil
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return "", errors.Wrapf(ErrConfiguration,
			"component '%s': the key '%s' should be a string, but is %v",
			comp, key, value)
	}
	return s, nil
}

func floatKey(
	comp string, table map[string]interface{},
	key string, required bool, def float64,
) (float64, error) {
	value, ok := table[key]
	if !ok {
		if required {
			return 0, errors.Wrapf(ErrConfiguration,
				"component '%s' is missing the required key '%s'",
				comp, key)
		}
		return def, nil
	}
	x, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, errors.Wrapf(ErrConfiguration,
			"component '%s': the key '%s' should be a number, but is %v",
			comp, key, value)
	}
	return x, nil
}

func intKey(
	comp string, table map[string]interface{}, key string,
) (int, error) {
	value, ok := table[key]
	if !ok {
		return 0, errors.Wrapf(ErrConfiguration,
			"component '%s' is missing the required key '%s'", comp, key)
	}
	x, err := cast.ToIntE(value)
	if err != nil {
		return 0, errors.Wrapf(ErrConfiguration,
			"component '%s': the key '%s' should be an integer, but is %v",
			comp, key, value)
	}
	return x, nil
}
