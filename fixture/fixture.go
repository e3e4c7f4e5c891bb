package fixture

import (
	"github.com/hostbridge/hostbridge/registry"
)

// RegisterAll wires the full demonstration surface into reg.
func RegisterAll(reg *registry.Registry) error {
	hosts := []registry.Host{
		&MathHost{},
		&TextHost{},
		&PersonHost{},
		&ArrayHost{},
		NewCounterHost(),
		&AsyncFixtureHost{},
	}
	for _, h := range hosts {
		if err := reg.RegisterHost(h); err != nil {
			return err
		}
	}
	return nil
}
