package physics

import "fmt"

// Config holds the tunable constants for the force simulation. The
// relationships matter more than the values: repulsion is inverse-square,
// attraction vanishes inside MinSpringLength, damping stays below 1, and the
// velocity clamp applies after damping.
type Config struct {
	Repulsion       float64 // inverse-square repulsion strength
	Attraction      float64 // linear spring coefficient
	MinSpringLength float64 // no attraction below this distance
	Gravity         float64 // pull toward the canvas center
	HubGravity      float64 // extra gravity per connection, settles hubs centrally
	Damping         float64 // velocity decay per step, strictly < 1
	MaxVelocity     float64 // clamp applied post-damping, pre-integration
	SettleEpsilon   float64 // velocity components below this are zeroed
}

// ClassicConfig returns the original constant set: plain constant-strength
// centering, moderate repulsion.
func ClassicConfig() Config {
	return Config{
		Repulsion:       2000,
		Attraction:      0.012,
		MinSpringLength: 50,
		Gravity:         0.01,
		HubGravity:      0,
		Damping:         0.75,
		MaxVelocity:     6,
		SettleEpsilon:   0.02,
	}
}

// DenseConfig returns the revised constant set tuned for busier vaults:
// stronger repulsion and hub-weighted centering.
func DenseConfig() Config {
	return Config{
		Repulsion:       3200,
		Attraction:      0.02,
		MinSpringLength: 70,
		Gravity:         0.008,
		HubGravity:      0.002,
		Damping:         0.8,
		MaxVelocity:     8,
		SettleEpsilon:   0.02,
	}
}

// PresetConfig returns the named constant set
func PresetConfig(name string) (Config, error) {
	switch name {
	case "classic":
		return ClassicConfig(), nil
	case "dense":
		return DenseConfig(), nil
	}
	return Config{}, fmt.Errorf("unknown physics preset %q", name)
}
