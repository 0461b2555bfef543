package app

import (
	"github.com/vk/sosgridgo/internal/registry"
	"github.com/vk/sosgridgo/modules/energy_demand"
	"github.com/vk/sosgridgo/modules/water_supply"
)

// coreModules is the definitive list of all sector model packages that are
// compiled into the sosgrid binary.
var coreModules = []registry.Module{
	&water_supply.Module{},
	&energy_demand.Module{},
}
