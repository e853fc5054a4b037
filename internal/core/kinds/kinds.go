// Package kinds registers every entity kind with the core registry.
// Import it for its side effects.
package kinds

import (
	"github.com/JonMunkholm/shiprec/internal/core"
	"github.com/JonMunkholm/shiprec/internal/exchange"
)

// Reference data sorts before the kinds that refer to it.
func init() {
	core.Register(core.Adapt(exchange.Countries, 10))
	core.Register(core.Adapt(exchange.Ports, 20))
	core.Register(core.Adapt(exchange.Operators, 30))
	core.Register(core.Adapt(exchange.VesselTypes, 40))
	core.Register(core.Adapt(exchange.Locations, 50))
	core.Register(core.Adapt(exchange.Vessels, 60))
	core.Register(core.Adapt(exchange.Voyages, 70))
	core.Register(core.Adapt(exchange.Sightings, 80))
}
